package cart

import (
	"bytes"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/drypanda-ecart/internal/domain/product"
)

// ErrCorruptSnapshot is returned for a snapshot that is not a single JSON
// value.
var ErrCorruptSnapshot = errors.New("corrupt cart snapshot")

// Encode serializes the cart as a JSON array in cart order.
func Encode(c Cart) []byte {
	var e jx.Encoder
	e.ArrStart()
	for _, en := range c.entries {
		e.ObjStart()
		e.FieldStart("name")
		e.Str(en.Name)
		e.FieldStart("category")
		e.Str(en.Category)
		e.FieldStart("price50")
		e.Str(en.Prices.Per50.String())
		e.FieldStart("price100")
		if en.Prices.Per100.Valid {
			e.Str(en.Prices.Per100.Decimal.String())
		} else {
			e.Null()
		}
		e.FieldStart("image")
		e.Str(en.Image)
		e.FieldStart("cartKey")
		e.Str(en.Key().String())
		e.FieldStart("unitSize")
		e.Int(en.Unit.Grams())
		e.FieldStart("count")
		e.Int(en.Count)
		e.FieldStart("price")
		e.Str(en.Price.String())
		e.ObjEnd()
	}
	e.ArrEnd()
	return e.Bytes()
}

// Decode parses a snapshot produced by Encode. Empty input yields an empty
// cart. Prices are recomputed rather than trusted. Snapshots written by the
// older single-counter format (totalWeight without count) are migrated to
// 50g lines.
func Decode(data []byte) (Cart, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Cart{}, nil
	}
	// Valid rejects trailing data after the top-level value.
	if !jx.Valid(data) {
		return Cart{}, ErrCorruptSnapshot
	}

	d := jx.DecodeBytes(data)
	if d.Next() == jx.Null {
		return Cart{}, d.Null()
	}

	var entries []Entry
	if err := d.Arr(func(d *jx.Decoder) error {
		var rec record
		if err := d.Obj(rec.decodeField); err != nil {
			return err
		}
		e, err := rec.entry()
		if err != nil {
			return errors.Wrapf(err, "entry %d", len(entries))
		}
		entries = append(entries, e)
		return nil
	}); err != nil {
		return Cart{}, errors.Wrap(err, "decode cart")
	}

	return FromEntries(entries)
}

// record is one snapshot object as read from storage.
type record struct {
	name     string
	category string
	image    string
	cartKey  string
	price50  string
	price100 string
	unitSize int
	count    int
	hasCount bool
	// totalWeight is only present in legacy snapshots.
	totalWeight int
}

func (r *record) decodeField(d *jx.Decoder, key string) error {
	var err error
	switch key {
	case "name":
		r.name, err = d.Str()
	case "category":
		r.category, err = optionalStr(d)
	case "image":
		r.image, err = optionalStr(d)
	case "price50":
		r.price50, err = amount(d)
	case "price100":
		r.price100, err = amount(d)
	case "unitSize":
		r.unitSize, err = d.Int()
	case "count":
		r.count, err = d.Int()
		r.hasCount = true
	case "totalWeight":
		r.totalWeight, err = d.Int()
	case "cartKey":
		r.cartKey, err = optionalStr(d)
	default:
		// price is recomputed from the fields above.
		err = d.Skip()
	}
	if err != nil {
		return errors.Wrapf(err, "field %q", key)
	}
	return nil
}

func (r *record) entry() (Entry, error) {
	prices, err := product.ParsePrices(r.price50, r.price100)
	if err != nil {
		return Entry{}, err
	}
	p := product.Product{
		Name:     r.name,
		Category: r.category,
		Prices:   prices,
		Image:    r.image,
	}

	if !r.hasCount && r.totalWeight > 0 {
		grams := Unit50.Grams()
		return NewEntry(p, Unit50, (r.totalWeight+grams-1)/grams)
	}

	unit := UnitSize(r.unitSize)
	if r.cartKey != "" {
		key, err := ParseKey(r.cartKey)
		if err != nil {
			return Entry{}, err
		}
		if r.unitSize == 0 {
			unit = key.Unit
		}
		if want := (Key{Name: r.name, Unit: unit}); key != want {
			return Entry{}, errors.Errorf("cart key %q does not match %s", r.cartKey, want)
		}
	}
	return NewEntry(p, unit, r.count)
}

// amount reads a price that may be stored as a string, a number or null.
func amount(d *jx.Decoder) (string, error) {
	switch d.Next() {
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return "", err
		}
		return n.String(), nil
	case jx.Null:
		return "", d.Null()
	default:
		return d.Str()
	}
}

func optionalStr(d *jx.Decoder) (string, error) {
	if d.Next() == jx.Null {
		return "", d.Null()
	}
	return d.Str()
}
