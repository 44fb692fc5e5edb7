package cart

import (
	"strconv"
	"strings"

	"github.com/go-faster/errors"
)

// UnitSize is a purchase tier measured in grams.
type UnitSize int

// Catalog tier sizes.
const (
	Unit50  UnitSize = 50
	Unit100 UnitSize = 100
)

// ErrInvalidUnitSize is returned for a unit size the catalog does not sell.
var ErrInvalidUnitSize = errors.New("invalid unit size")

// Units lists the unit sizes the storefront sells, smallest first.
var Units = []UnitSize{Unit50, Unit100}

// Grams returns the weight of one unit.
func (u UnitSize) Grams() int { return int(u) }

func (u UnitSize) String() string { return strconv.Itoa(int(u)) + "g" }

// Valid reports whether u is one of Units.
func (u UnitSize) Valid() bool {
	for _, v := range Units {
		if u == v {
			return true
		}
	}
	return false
}

// ParseUnitSize accepts "50", "50g" or "50G" style values.
func ParseUnitSize(s string) (UnitSize, error) {
	raw := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "g")
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidUnitSize, "parse %q", s)
	}
	u := UnitSize(n)
	if !u.Valid() {
		return 0, errors.Wrapf(ErrInvalidUnitSize, "parse %q", s)
	}
	return u, nil
}
