package main

import (
	"bytes"
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/xenking/drypanda-ecart/db"
	"github.com/xenking/drypanda-ecart/internal/catalog"
	"github.com/xenking/drypanda-ecart/internal/domain/user"
	"github.com/xenking/drypanda-ecart/internal/storage/postgres"
)

type options struct {
	databaseURL      string
	productsFile     string
	operatorEmail    string
	operatorPassword string
	operatorName     string
	bcryptCost       int
}

func main() {
	var opts options

	flag.StringVar(&opts.databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&opts.productsFile, "products-file", "", "catalog feed to load instead of the embedded one")
	flag.StringVar(&opts.operatorEmail, "operator-email", "", "operator account email (or ECART_SEED_OPERATOR_EMAIL env)")
	flag.StringVar(&opts.operatorPassword, "operator-password", "", "operator account password (or ECART_SEED_OPERATOR_PASSWORD env)")
	flag.StringVar(&opts.operatorName, "operator-name", "operator", "operator account username")
	flag.IntVar(&opts.bcryptCost, "bcrypt-cost", 8, "bcrypt cost for the operator password")
	flag.Parse()

	lg := zap.Must(zap.NewProduction())
	defer func() { _ = lg.Sync() }()

	if opts.databaseURL == "" {
		opts.databaseURL = os.Getenv("DATABASE_URL")
	}
	if opts.databaseURL == "" {
		lg.Fatal("Database URL is required: set --database-url or DATABASE_URL")
	}
	if opts.operatorEmail == "" {
		opts.operatorEmail = os.Getenv("ECART_SEED_OPERATOR_EMAIL")
	}
	if opts.operatorPassword == "" {
		opts.operatorPassword = os.Getenv("ECART_SEED_OPERATOR_PASSWORD")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, lg, opts); err != nil {
		lg.Fatal("Seed failed", zap.Error(err))
	}
	lg.Info("Seed completed")
}

func run(ctx context.Context, lg *zap.Logger, opts options) error {
	lg.Info("Connecting to database")
	pool, err := postgres.NewPool(ctx, opts.databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	lg.Info("Running migrations")
	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedProducts(ctx, lg, postgres.NewProductRepository(pool), opts.productsFile); err != nil {
		return errors.Wrap(err, "seed products")
	}

	if opts.operatorEmail == "" || opts.operatorPassword == "" {
		lg.Info("Operator credentials not set, skipping operator account")
		return nil
	}
	if err := seedOperator(ctx, lg, postgres.NewUserRepository(pool), opts); err != nil {
		return errors.Wrap(err, "seed operator")
	}
	return nil
}

func seedProducts(ctx context.Context, lg *zap.Logger, repo *postgres.ProductRepository, path string) error {
	var r io.Reader = bytes.NewReader(db.SeedProducts)
	if path != "" {
		lg.Info("Reading products file", zap.String("path", path))
		f, err := os.Open(path)
		if err != nil {
			return errors.Wrap(err, "open products file")
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	res, err := catalog.Decode(r)
	if err != nil {
		return errors.Wrap(err, "decode products")
	}
	for _, rej := range res.Rejected {
		lg.Warn("Product rejected", zap.Error(rej))
	}

	lg.Info("Upserting products", zap.Int("count", len(res.Products)))
	return repo.Upsert(ctx, res.Products)
}

func seedOperator(ctx context.Context, lg *zap.Logger, repo *postgres.UserRepository, opts options) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(opts.operatorPassword), opts.bcryptCost)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}

	u := &user.User{
		ID:           uuid.NewString(),
		Role:         user.RoleOperator,
		Username:     opts.operatorName,
		Email:        user.NormalizeEmail(opts.operatorEmail),
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	switch err := repo.Create(ctx, u); {
	case errors.Is(err, user.ErrEmailTaken):
		lg.Info("Operator already exists", zap.String("email", u.Email))
		return nil
	case err != nil:
		return err
	}
	lg.Info("Operator created", zap.String("id", u.ID), zap.String("email", u.Email))
	return nil
}
