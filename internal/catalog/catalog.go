// Package catalog reads and writes product feeds. A feed is a JSON array of
// products whose prices are either labels such as "₹60 / 50g" or plain
// amounts.
package catalog

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/drypanda-ecart/internal/domain/product"
)

// ItemError describes a feed item that was rejected.
type ItemError struct {
	Index int
	Name  string
	Err   error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("item %d (%q): %v", e.Index, e.Name, e.Err)
}

func (e *ItemError) Unwrap() error { return e.Err }

// Result holds the products accepted from a feed and the items rejected.
type Result struct {
	Products []product.Product
	Rejected []*ItemError
}

// Decode reads a feed. Items with a missing name or an unparsable price are
// skipped and reported in Result.Rejected; a feed that is not a JSON array
// of objects fails as a whole.
func Decode(r io.Reader) (Result, error) {
	var (
		res   Result
		index int
	)
	err := jx.Decode(r, 4096).Arr(func(d *jx.Decoder) error {
		defer func() { index++ }()

		var it item
		if err := d.Obj(it.decodeField); err != nil {
			return errors.Wrapf(err, "item %d", index)
		}
		p, err := it.product()
		if err != nil {
			res.Rejected = append(res.Rejected, &ItemError{Index: index, Name: it.name, Err: err})
			return nil
		}
		res.Products = append(res.Products, p)
		return nil
	})
	if err != nil {
		return Result{}, errors.Wrap(err, "decode feed")
	}
	return res, nil
}

// DecodeBytes is Decode over an in-memory feed.
func DecodeBytes(data []byte) (Result, error) {
	return Decode(bytes.NewReader(data))
}

// ErrMissingName is reported for feed items without a name.
var ErrMissingName = errors.New("missing name")

type item struct {
	name     string
	category string
	price50  string
	price100 string
	stock    bool
	image    string
}

func (it *item) decodeField(d *jx.Decoder, key string) error {
	var err error
	switch key {
	case "name":
		it.name, err = optionalStr(d)
	case "category":
		it.category, err = optionalStr(d)
	case "price50":
		it.price50, err = amount(d)
	case "price100":
		it.price100, err = amount(d)
	case "stock":
		it.stock, err = d.Bool()
	case "image":
		it.image, err = optionalStr(d)
	default:
		err = d.Skip()
	}
	if err != nil {
		return errors.Wrapf(err, "field %q", key)
	}
	return nil
}

func (it *item) product() (product.Product, error) {
	if it.name == "" {
		return product.Product{}, ErrMissingName
	}
	prices, err := product.ParsePrices(it.price50, it.price100)
	if err != nil {
		return product.Product{}, err
	}
	return product.Product{
		Name:     it.name,
		Category: it.category,
		Prices:   prices,
		Stock:    it.stock,
		Image:    it.image,
	}, nil
}

// amount reads a price given as a string, a number or null.
func amount(d *jx.Decoder) (string, error) {
	switch d.Next() {
	case jx.String:
		return d.Str()
	case jx.Number:
		n, err := d.Num()
		return n.String(), err
	case jx.Null:
		return "", d.Null()
	default:
		return "", errors.Errorf("unexpected %s", d.Next())
	}
}

func optionalStr(d *jx.Decoder) (string, error) {
	if d.Next() == jx.Null {
		return "", d.Null()
	}
	return d.Str()
}
