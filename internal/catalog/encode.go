package catalog

import (
	"github.com/go-faster/jx"

	"github.com/xenking/drypanda-ecart/internal/domain/product"
)

// EncodeProduct writes p as a feed object. Prices are plain decimal strings
// and a missing 100g price is null.
func EncodeProduct(e *jx.Encoder, p product.Product) {
	e.ObjStart()
	e.FieldStart("name")
	e.Str(p.Name)
	e.FieldStart("category")
	e.Str(p.Category)
	e.FieldStart("price50")
	e.Str(p.Prices.Per50.String())
	e.FieldStart("price100")
	if p.Prices.Per100.Valid {
		e.Str(p.Prices.Per100.Decimal.String())
	} else {
		e.Null()
	}
	e.FieldStart("stock")
	e.Bool(p.Stock)
	e.FieldStart("image")
	e.Str(p.Image)
	e.ObjEnd()
}

// EncodeProducts writes products as a feed array.
func EncodeProducts(e *jx.Encoder, products []product.Product) {
	e.ArrStart()
	for _, p := range products {
		EncodeProduct(e, p)
	}
	e.ArrEnd()
}

// Encode returns products as a feed document.
func Encode(products []product.Product) []byte {
	var e jx.Encoder
	EncodeProducts(&e, products)
	return e.Bytes()
}
