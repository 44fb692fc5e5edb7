package cart

import (
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/drypanda-ecart/internal/domain/product"
)

// Key identifies a cart line: the same product bought in different unit
// sizes occupies different lines.
type Key struct {
	Name string
	Unit UnitSize
}

func (k Key) String() string {
	return fmt.Sprintf("%s#%s", k.Name, k.Unit)
}

// ParseKey parses the String form of a Key.
func ParseKey(s string) (Key, error) {
	i := strings.LastIndexByte(s, '#')
	if i <= 0 {
		return Key{}, errors.Errorf("malformed cart key %q", s)
	}
	unit, err := ParseUnitSize(s[i+1:])
	if err != nil {
		return Key{}, errors.Wrapf(err, "cart key %q", s)
	}
	return Key{Name: s[:i], Unit: unit}, nil
}

// Entry is a priced cart line. The product fields are a snapshot taken when
// the line was created.
type Entry struct {
	Name     string
	Category string
	Prices   product.Prices
	Image    string
	Unit     UnitSize
	Count    int
	Price    decimal.Decimal
}

// NewEntry creates a line of count units of p and prices it.
func NewEntry(p product.Product, unit UnitSize, count int) (Entry, error) {
	if p.Name == "" {
		return Entry{}, errors.New("product name required")
	}
	if !unit.Valid() {
		return Entry{}, errors.Wrapf(ErrInvalidUnitSize, "%d", int(unit))
	}
	e := Entry{
		Name:     p.Name,
		Category: p.Category,
		Prices:   p.Prices,
		Image:    p.Image,
		Unit:     unit,
	}
	return e.withCount(count)
}

// Key returns the identity of the line.
func (e Entry) Key() Key {
	return Key{Name: e.Name, Unit: e.Unit}
}

// TotalWeight returns the accumulated weight in grams.
func (e Entry) TotalWeight() int {
	return e.Count * e.Unit.Grams()
}

// Equal reports whether two entries describe the same line with equal
// amounts.
func (e Entry) Equal(o Entry) bool {
	return e.Name == o.Name &&
		e.Category == o.Category &&
		e.Image == o.Image &&
		e.Unit == o.Unit &&
		e.Count == o.Count &&
		e.Price.Equal(o.Price) &&
		e.Prices.Per50.Equal(o.Prices.Per50) &&
		e.Prices.Per100.Valid == o.Prices.Per100.Valid &&
		e.Prices.Per100.Decimal.Equal(o.Prices.Per100.Decimal)
}

// withCount returns a copy holding n units, repriced from scratch.
func (e Entry) withCount(n int) (Entry, error) {
	if n < 1 {
		return Entry{}, ErrInvalidCount
	}
	e.Count = n
	price, err := ComputePrice(e.TotalWeight(), e.Prices)
	if err != nil {
		return Entry{}, errors.Wrapf(err, "price %s", e.Key())
	}
	e.Price = price
	return e, nil
}

// Cart is an ordered set of entries unique by Key. The zero value is an
// empty cart. Operations never modify the receiver.
type Cart struct {
	entries []Entry
}

// FromEntries builds a cart from entries in order, rejecting duplicate keys
// and empty lines.
func FromEntries(entries []Entry) (Cart, error) {
	seen := make(map[Key]struct{}, len(entries))
	for _, e := range entries {
		if e.Count < 1 {
			return Cart{}, errors.Wrapf(ErrInvalidCount, "entry %s", e.Key())
		}
		if _, dup := seen[e.Key()]; dup {
			return Cart{}, errors.Errorf("duplicate cart entry %s", e.Key())
		}
		seen[e.Key()] = struct{}{}
	}
	return Cart{entries: append([]Entry(nil), entries...)}, nil
}

// Len returns the number of lines.
func (c Cart) Len() int { return len(c.entries) }

// IsEmpty reports whether the cart has no lines.
func (c Cart) IsEmpty() bool { return len(c.entries) == 0 }

// Entries returns a copy of the lines in insertion order.
func (c Cart) Entries() []Entry {
	return append([]Entry(nil), c.entries...)
}

// Find returns the line stored under key.
func (c Cart) Find(key Key) (Entry, bool) {
	if i := c.index(key); i >= 0 {
		return c.entries[i], true
	}
	return Entry{}, false
}

// Total returns the sum of all line prices.
func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, e := range c.entries {
		total = total.Add(e.Price)
	}
	return total
}

// Equal reports whether both carts hold equal lines in the same order.
func (c Cart) Equal(o Cart) bool {
	if len(c.entries) != len(o.entries) {
		return false
	}
	for i := range c.entries {
		if !c.entries[i].Equal(o.entries[i]) {
			return false
		}
	}
	return true
}

// Add puts one unit of p into the cart, creating the line on first add and
// incrementing it afterwards.
func (c Cart) Add(p product.Product, unit UnitSize) (Cart, error) {
	key := Key{Name: p.Name, Unit: unit}
	if i := c.index(key); i >= 0 {
		updated, err := c.entries[i].withCount(c.entries[i].Count + 1)
		if err != nil {
			return c, err
		}
		return c.replace(i, updated), nil
	}

	e, err := NewEntry(p, unit, 1)
	if err != nil {
		return c, err
	}
	entries := make([]Entry, len(c.entries), len(c.entries)+1)
	copy(entries, c.entries)
	return Cart{entries: append(entries, e)}, nil
}

// Remove takes one unit off the line under key and drops the line when it
// reaches zero.
func (c Cart) Remove(key Key) (Cart, error) {
	i := c.index(key)
	if i < 0 {
		return c, &EntryNotFoundError{Key: key}
	}
	e := c.entries[i]
	if e.Count <= 1 {
		return c.without(i), nil
	}
	updated, err := e.withCount(e.Count - 1)
	if err != nil {
		return c, err
	}
	return c.replace(i, updated), nil
}

// Delete drops the line under key regardless of its count. Deleting an
// absent key returns the cart unchanged.
func (c Cart) Delete(key Key) Cart {
	if i := c.index(key); i >= 0 {
		return c.without(i)
	}
	return c
}

func (c Cart) index(key Key) int {
	for i, e := range c.entries {
		if e.Key() == key {
			return i
		}
	}
	return -1
}

func (c Cart) replace(i int, e Entry) Cart {
	entries := c.Entries()
	entries[i] = e
	return Cart{entries: entries}
}

func (c Cart) without(i int) Cart {
	entries := make([]Entry, 0, len(c.entries)-1)
	entries = append(entries, c.entries[:i]...)
	entries = append(entries, c.entries[i+1:]...)
	return Cart{entries: entries}
}
