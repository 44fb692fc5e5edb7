package catalog

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/drypanda-ecart/internal/domain/product"
)

const (
	bloomCapacity = 100_000
	bloomFPR      = 0.001
)

// Feed is a decoded feed file together with a bloom filter over its product
// names.
type Feed struct {
	Path string
	Result

	names *bloom.BloomFilter
}

// NewFeed indexes the names of res.
func NewFeed(path string, res Result) *Feed {
	f := &Feed{
		Path:   path,
		Result: res,
		names:  bloom.NewWithEstimates(uint(max(len(res.Products), bloomCapacity)), bloomFPR),
	}
	for _, p := range res.Products {
		f.names.AddString(product.NameKey(p.Name))
	}
	return f
}

// MayContain reports whether the feed may hold a product named name. False
// positives are possible, false negatives are not.
func (f *Feed) MayContain(name string) bool {
	return f.names.TestString(product.NameKey(name))
}

// ReadFeed decodes a feed file. Files ending in .gz are decompressed.
func ReadFeed(ctx context.Context, path string) (*Feed, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = file.Close() }()

	var r io.Reader = file
	if filepath.Ext(path) == ".gz" {
		gz, err := pgzip.NewReader(file)
		if err != nil {
			return nil, errors.Wrapf(err, "create gzip reader for %s", path)
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}

	res, err := Decode(ctxReader{ctx: ctx, r: r})
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return NewFeed(path, res), nil
}

// ReadFeeds decodes every file concurrently. Feeds are returned in the order
// of paths.
func ReadFeeds(ctx context.Context, paths []string) ([]*Feed, error) {
	feeds := make([]*Feed, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			f, err := ReadFeed(ctx, path)
			if err != nil {
				return err
			}
			feeds[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return feeds, nil
}

// Duplicate is a product dropped because an earlier feed, or an earlier item
// of the same feed, already named it.
type Duplicate struct {
	Name  string
	Feed  string
	First string
}

// Merged is the outcome of Merge.
type Merged struct {
	Products   []product.Product
	Duplicates []Duplicate
}

// Merge combines feeds in order. The first occurrence of a name wins; later
// occurrences are reported as duplicates. Names are compared with
// product.NameKey.
func Merge(feeds []*Feed) Merged {
	var (
		out   Merged
		owner = make(map[string]string)
	)
	for i, f := range feeds {
		local := make(map[string]struct{}, len(f.Products))
		for _, p := range f.Products {
			key := product.NameKey(p.Name)
			if _, ok := local[key]; ok {
				out.Duplicates = append(out.Duplicates, Duplicate{Name: p.Name, Feed: f.Path, First: f.Path})
				continue
			}
			local[key] = struct{}{}

			// Bloom hits are confirmed against the exact index.
			if seenEarlier(feeds[:i], p.Name) {
				if first, ok := owner[key]; ok {
					out.Duplicates = append(out.Duplicates, Duplicate{Name: p.Name, Feed: f.Path, First: first})
					continue
				}
			}
			owner[key] = f.Path
			out.Products = append(out.Products, p)
		}
	}
	return out
}

func seenEarlier(feeds []*Feed, name string) bool {
	for _, f := range feeds {
		if f.MayContain(name) {
			return true
		}
	}
	return false
}

// ctxReader stops a long decode once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
