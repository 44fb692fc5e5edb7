package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/xenking/drypanda-ecart/internal/catalog"
	"github.com/xenking/drypanda-ecart/internal/storage/postgres"
)

func main() {
	var (
		dataDir     string
		databaseURL string
		dryRun      bool
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing *.json.gz catalog feeds")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.BoolVar(&dryRun, "dry-run", false, "report what would be ingested without writing")
	flag.Parse()

	lg := zap.Must(zap.NewProduction())
	defer func() { _ = lg.Sync() }()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" && !dryRun {
		lg.Fatal("Database URL is required: set --database-url or DATABASE_URL")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, lg, dataDir, databaseURL, dryRun); err != nil {
		lg.Fatal("Catalog ingest failed", zap.Error(err))
	}
	lg.Info("Catalog ingest completed")
}

func run(ctx context.Context, lg *zap.Logger, dataDir, databaseURL string, dryRun bool) error {
	paths, err := filepath.Glob(filepath.Join(dataDir, "*.json.gz"))
	if err != nil {
		return errors.Wrap(err, "list feeds")
	}
	if len(paths) == 0 {
		return errors.Errorf("no *.json.gz feeds in %s", dataDir)
	}

	lg.Info("Reading feeds", zap.Int("files", len(paths)))
	feeds, err := catalog.ReadFeeds(ctx, paths)
	if err != nil {
		return errors.Wrap(err, "read feeds")
	}
	for _, f := range feeds {
		lg.Info("Feed read",
			zap.String("path", f.Path),
			zap.Int("products", len(f.Products)),
			zap.Int("rejected", len(f.Rejected)),
		)
		for _, rej := range f.Rejected {
			lg.Warn("Item rejected", zap.String("path", f.Path), zap.Error(rej))
		}
	}

	merged := catalog.Merge(feeds)
	for _, d := range merged.Duplicates {
		lg.Warn("Duplicate product dropped",
			zap.String("name", d.Name),
			zap.String("path", d.Feed),
			zap.String("first", d.First),
		)
	}
	lg.Info("Feeds merged",
		zap.Int("products", len(merged.Products)),
		zap.Int("duplicates", len(merged.Duplicates)),
	)

	if dryRun || len(merged.Products) == 0 {
		return nil
	}

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.NewProductRepository(pool).Upsert(ctx, merged.Products); err != nil {
		return errors.Wrap(err, "upsert products")
	}
	lg.Info("Products written", zap.Int("count", len(merged.Products)))
	return nil
}
