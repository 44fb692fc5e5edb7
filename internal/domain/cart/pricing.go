package cart

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/drypanda-ecart/internal/domain/product"
)

// Tier is a purchasable weight step with its own price.
type Tier struct {
	Grams int
	Price decimal.Decimal
}

// Tiers is a tier list ordered from the largest weight to the smallest.
type Tiers []Tier

// TiersFor builds the 100g/50g tier list of a product. A missing 100g price
// is synthesized as two 50g units.
func TiersFor(p product.Prices) (Tiers, error) {
	if p.Per50.IsNegative() {
		return nil, &product.MalformedPriceError{Field: "price50", Value: p.Per50.String()}
	}
	if p.Per100.Valid && p.Per100.Decimal.IsNegative() {
		return nil, &product.MalformedPriceError{Field: "price100", Value: p.Per100.Decimal.String()}
	}
	return Tiers{
		{Grams: Unit100.Grams(), Price: p.Bulk()},
		{Grams: Unit50.Grams(), Price: p.Per50},
	}, nil
}

// Price decomposes weight greedily, consuming the largest tier first. A
// remainder lighter than the smallest tier is billed as one full smallest
// unit. Tiers without a positive weight are ignored.
func (t Tiers) Price(weight int) decimal.Decimal {
	total := decimal.Zero
	if weight <= 0 {
		return total
	}

	var smallest *Tier
	remaining := weight
	for i := range t {
		tier := &t[i]
		if tier.Grams <= 0 {
			continue
		}
		smallest = tier
		if n := remaining / tier.Grams; n > 0 {
			total = total.Add(tier.Price.Mul(decimal.NewFromInt(int64(n))))
			remaining -= n * tier.Grams
		}
	}
	if remaining > 0 && smallest != nil {
		total = total.Add(smallest.Price)
	}
	return total
}

// ComputePrice returns the price of totalWeight grams of a product.
func ComputePrice(totalWeight int, prices product.Prices) (decimal.Decimal, error) {
	if totalWeight < 0 {
		return decimal.Zero, errors.Wrapf(ErrNegativeWeight, "%dg", totalWeight)
	}
	tiers, err := TiersFor(prices)
	if err != nil {
		return decimal.Zero, err
	}
	return tiers.Price(totalWeight), nil
}
