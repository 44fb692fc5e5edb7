// Command ecart is the terminal storefront: browse the catalog, fill a cart
// that survives restarts, and hand the order off over WhatsApp.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/xenking/drypanda-ecart/internal/client"
	"github.com/xenking/drypanda-ecart/internal/domain/cart"
	"github.com/xenking/drypanda-ecart/internal/storage/localstore"
	"github.com/xenking/drypanda-ecart/internal/storefront"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	lg := newLogger(cfg.Debug)
	defer func() { _ = lg.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, lg, cfg); err != nil {
		lg.Error("Storefront failed", zap.Error(err))
		os.Exit(1)
	}
}

func newLogger(debug bool) *zap.Logger {
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	if debug {
		zcfg = zap.NewDevelopmentConfig()
	}
	return zap.Must(zcfg.Build())
}

func run(ctx context.Context, lg *zap.Logger, cfg *config) error {
	store, err := localstore.Open(cfg.DataDir)
	if err != nil {
		return errors.Wrap(err, "open local storage")
	}

	carts := cart.NewStore(store, lg.Named("cart"))
	if _, err := carts.Hydrate(ctx); err != nil {
		lg.Warn("Saved cart discarded", zap.Error(err))
	}

	api, err := client.New(cfg.APIURL, nil)
	if err != nil {
		return errors.Wrap(err, "create api client")
	}

	var products storefront.Catalog = api
	if cfg.CatalogFile != "" {
		products = fileCatalog{path: cfg.CatalogFile, lg: lg}
	}

	session := storefront.NewSession(store)
	ctrl := storefront.NewController(
		storefront.ControllerConfig{Phone: cfg.Phone},
		session,
		storefront.TerminalNavigator{W: os.Stdout},
		carts,
		storefront.TerminalMessenger{W: os.Stdout},
		lg.Named("controller"),
	)

	shell := storefront.NewShell(os.Stdin, os.Stdout, ctrl, session, apiAuthenticator{api: api}, products, lg.Named("shell"))
	return shell.Run(ctx)
}
