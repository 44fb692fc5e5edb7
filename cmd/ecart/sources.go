package main

import (
	"context"
	"os"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/xenking/drypanda-ecart/internal/catalog"
	"github.com/xenking/drypanda-ecart/internal/client"
	"github.com/xenking/drypanda-ecart/internal/domain/product"
	"github.com/xenking/drypanda-ecart/internal/storefront"
)

var (
	_ storefront.Authenticator = apiAuthenticator{}
	_ storefront.Catalog       = (*client.Client)(nil)
	_ storefront.Catalog       = fileCatalog{}
)

// apiAuthenticator signs in through the account API.
type apiAuthenticator struct {
	api *client.Client
}

func (a apiAuthenticator) Login(ctx context.Context, email, password, role string) (storefront.Account, error) {
	res, err := a.api.Login(ctx, email, password, role)
	if err != nil {
		return storefront.Account{}, err
	}
	return storefront.Account{
		Token:    res.Token,
		Username: res.Username,
		Role:     res.Role,
	}, nil
}

// fileCatalog lists products from a local feed, re-read on every call.
type fileCatalog struct {
	path string
	lg   *zap.Logger
}

func (c fileCatalog) List(context.Context) ([]product.Product, error) {
	f, err := os.Open(c.path)
	if err != nil {
		return nil, errors.Wrap(err, "open catalog")
	}
	defer func() { _ = f.Close() }()

	res, err := catalog.Decode(f)
	if err != nil {
		return nil, err
	}
	for _, rej := range res.Rejected {
		c.lg.Warn("Catalog item rejected", zap.String("path", c.path), zap.Error(rej))
	}
	return res.Products, nil
}
