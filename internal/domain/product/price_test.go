package product

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "rupee prefix", input: "₹120", want: "120"},
		{name: "labelled tier", input: "₹120 / 50g", want: "120"},
		{name: "label before amount", input: "50g - ₹85", want: "85"},
		{name: "space after symbol", input: "₹ 99", want: "99"},
		{name: "bare decimal", input: "120.50", want: "120.5"},
		{name: "padded", input: "  42  ", want: "42"},
		{name: "empty", input: "", wantErr: true},
		{name: "text only", input: "call for price", wantErr: true},
		{name: "negative", input: "-10", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePrice("price50", tt.input)
			if tt.wantErr {
				var mpErr *MalformedPriceError
				require.ErrorAs(t, err, &mpErr)
				assert.Equal(t, "price50", mpErr.Field)
				assert.Equal(t, tt.input, mpErr.Value)
				return
			}
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestParsePrices(t *testing.T) {
	t.Run("both tiers", func(t *testing.T) {
		p, err := ParsePrices("₹60", "₹110")
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(60).Equal(p.Per50))
		require.True(t, p.Per100.Valid)
		assert.True(t, decimal.NewFromInt(110).Equal(p.Bulk()))
	})

	t.Run("missing bulk tier doubles the 50g price", func(t *testing.T) {
		p, err := ParsePrices("₹60", "")
		require.NoError(t, err)
		assert.False(t, p.Per100.Valid)
		assert.True(t, decimal.NewFromInt(120).Equal(p.Bulk()))
	})

	t.Run("malformed bulk tier", func(t *testing.T) {
		_, err := ParsePrices("₹60", "soon")
		var mpErr *MalformedPriceError
		require.ErrorAs(t, err, &mpErr)
		assert.Equal(t, "price100", mpErr.Field)
	})
}
