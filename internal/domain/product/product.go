package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when a requested product does not exist.
	ErrNotFound = errors.New("product not found")
	// ErrOutOfStock is returned when an unavailable product is added to a cart.
	ErrOutOfStock = errors.New("product out of stock")
)

var two = decimal.NewFromInt(2)

// Product represents a catalog item available for purchase. Name is the
// unique display key.
type Product struct {
	Name     string
	Category string
	Prices   Prices
	Stock    bool
	Image    string
}

// Prices holds the tier prices of a product. Per100 is optional.
type Prices struct {
	Per50  decimal.Decimal
	Per100 decimal.NullDecimal
}

// Bulk returns the 100g price, falling back to two 50g units when the
// catalog does not define one.
func (p Prices) Bulk() decimal.Decimal {
	if p.Per100.Valid {
		return p.Per100.Decimal
	}
	return p.Per50.Mul(two)
}

// Repository defines read operations for the product catalog.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByName(ctx context.Context, name string) (*Product, error)
}
