package catalog

import (
	"strings"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/drypanda-ecart/internal/domain/product"
)

const feed = `[
  {"name": "Cashew", "category": "Nuts", "price50": "₹60 / 50g", "price100": "₹110 / 100g", "stock": true, "image": "cashew.png"},
  {"name": "Raisins", "category": "Dried Fruit", "price50": "₹40", "stock": true, "image": "raisins.png", "rating": 4.5},
  {"name": "Walnut", "category": "Nuts", "price50": "soon", "stock": false},
  {"category": "Nuts", "price50": "₹10"},
  {"name": "Pista", "category": "Nuts", "price50": 75.5, "price100": null, "stock": false, "image": null}
]`

func TestDecode(t *testing.T) {
	res, err := Decode(strings.NewReader(feed))
	require.NoError(t, err)

	require.Len(t, res.Products, 3)
	cashew := res.Products[0]
	assert.Equal(t, "Cashew", cashew.Name)
	assert.Equal(t, "Nuts", cashew.Category)
	assert.Equal(t, "60", cashew.Prices.Per50.String())
	require.True(t, cashew.Prices.Per100.Valid)
	assert.Equal(t, "110", cashew.Prices.Per100.Decimal.String())
	assert.True(t, cashew.Stock)
	assert.Equal(t, "cashew.png", cashew.Image)

	raisins := res.Products[1]
	assert.False(t, raisins.Prices.Per100.Valid)
	assert.Equal(t, "80", raisins.Prices.Bulk().String())

	pista := res.Products[2]
	assert.Equal(t, "75.5", pista.Prices.Per50.String())
	assert.False(t, pista.Stock)
	assert.Empty(t, pista.Image)

	require.Len(t, res.Rejected, 2)
	var priceErr *product.MalformedPriceError
	require.ErrorAs(t, res.Rejected[0], &priceErr)
	assert.Equal(t, 2, res.Rejected[0].Index)
	assert.Equal(t, "Walnut", res.Rejected[0].Name)
	assert.Equal(t, "price50", priceErr.Field)

	assert.Equal(t, 3, res.Rejected[1].Index)
	assert.True(t, errors.Is(res.Rejected[1], ErrMissingName))
}

func TestDecode_Invalid(t *testing.T) {
	for _, input := range []string{`{"name":"Cashew"}`, `[1, 2]`, `[{"name": "Cashew"`, ``} {
		_, err := DecodeBytes([]byte(input))
		assert.Error(t, err, input)
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	res, err := DecodeBytes([]byte(feed))
	require.NoError(t, err)

	out := Encode(res.Products)
	assert.Contains(t, string(out), `"price100":null`)

	again, err := DecodeBytes(out)
	require.NoError(t, err)
	assert.Empty(t, again.Rejected)
	require.Len(t, again.Products, len(res.Products))
	for i, p := range res.Products {
		q := again.Products[i]
		assert.Equal(t, p.Name, q.Name)
		assert.Equal(t, p.Stock, q.Stock)
		assert.True(t, p.Prices.Per50.Equal(q.Prices.Per50))
		assert.Equal(t, p.Prices.Per100.Valid, q.Prices.Per100.Valid)
		assert.True(t, p.Prices.Bulk().Equal(q.Prices.Bulk()))
	}
}
