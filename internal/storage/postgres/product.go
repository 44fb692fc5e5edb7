package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/drypanda-ecart/internal/domain/product"
)

const (
	listProductsSQL = `SELECT name, category, price50, price100, stock, image
		FROM products ORDER BY seq`

	getProductByNameSQL = `SELECT name, category, price50, price100, stock, image
		FROM products WHERE name = $1`

	upsertProductSQL = `INSERT INTO products (name, category, price50, price100, stock, image)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (name) DO UPDATE SET
			category = EXCLUDED.category,
			price50 = EXCLUDED.price50,
			price100 = EXCLUDED.price100,
			stock = EXCLUDED.stock,
			image = EXCLUDED.image,
			updated_at = now()`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns the catalog in insertion order.
func (r *ProductRepository) List(ctx context.Context) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, errors.Wrap(err, "scan products")
	}
	return products, nil
}

// GetByName returns product.ErrNotFound when no product has the given name.
func (r *ProductRepository) GetByName(ctx context.Context, name string) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductByNameSQL, name)
	if err != nil {
		return nil, errors.Wrapf(err, "get product %q", name)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get product %q", name)
	}
	return &p, nil
}

// Upsert inserts or updates products by name in a single batch.
func (r *ProductRepository) Upsert(ctx context.Context, products []product.Product) error {
	if len(products) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, p := range products {
		batch.Queue(upsertProductSQL,
			p.Name, p.Category, p.Prices.Per50, p.Prices.Per100, p.Stock, p.Image,
		)
	}
	if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return errors.Wrap(err, "upsert products")
	}
	return nil
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var p product.Product
	err := row.Scan(&p.Name, &p.Category, &p.Prices.Per50, &p.Prices.Per100, &p.Stock, &p.Image)
	return p, err
}
