package product

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// rupeeAmount matches the first currency amount embedded in a catalog price
// label such as "₹120 / 50g".
var rupeeAmount = regexp.MustCompile(`₹\s*(\d+(?:\.\d+)?)`)

// MalformedPriceError indicates a catalog price that is not a non-negative
// numeric amount.
type MalformedPriceError struct {
	Field string
	Value string
}

func (e *MalformedPriceError) Error() string {
	return fmt.Sprintf("malformed %s price %q", e.Field, e.Value)
}

// ParsePrice converts a textual catalog price into an amount. Both labelled
// values ("₹120 / 50g") and bare numbers ("120.50") are accepted.
func ParsePrice(field, s string) (decimal.Decimal, error) {
	raw := strings.TrimSpace(s)
	if m := rupeeAmount.FindStringSubmatch(raw); m != nil {
		raw = m[1]
	}

	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		return decimal.Zero, &MalformedPriceError{Field: field, Value: s}
	}
	return d, nil
}

// ParsePrices parses a 50g price and an optional 100g price. An empty
// price100 means the product has no bulk tier.
func ParsePrices(price50, price100 string) (Prices, error) {
	per50, err := ParsePrice("price50", price50)
	if err != nil {
		return Prices{}, err
	}

	p := Prices{Per50: per50}
	if strings.TrimSpace(price100) != "" {
		per100, err := ParsePrice("price100", price100)
		if err != nil {
			return Prices{}, err
		}
		p.Per100 = decimal.NewNullDecimal(per100)
	}
	return p, nil
}
