// Package handler serves the account and catalog HTTP API.
package handler

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/metric"

	"github.com/xenking/drypanda-ecart/internal/domain/product"
	"github.com/xenking/drypanda-ecart/internal/domain/user"
)

// maxBodySize bounds request bodies.
const maxBodySize = 1 << 20

// Accounts is the account service used by the auth endpoints.
type Accounts interface {
	Register(ctx context.Context, req user.RegisterRequest) (*user.User, error)
	Login(ctx context.Context, req user.LoginRequest) (*user.LoginResult, error)
}

var _ Accounts = (*user.Service)(nil)

// HandlerConfig holds non-dependency configuration for the Handler.
type HandlerConfig struct {
	// ImageBaseURL is prepended to relative image paths in product responses.
	// When empty, image paths are returned as stored in the database.
	ImageBaseURL string
	// LoginRetryAfter is advertised in Retry-After when logins are
	// throttled. Zero selects one minute.
	LoginRetryAfter time.Duration
}

// Handler serves the HTTP API, delegating business logic to the account
// service and product repository.
type Handler struct {
	products     product.Repository
	accounts     Accounts
	imageBaseURL string
	retryAfter   string

	registrations metric.Int64Counter
	logins        metric.Int64Counter
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	cfg HandlerConfig,
	products product.Repository,
	accounts Accounts,
	meter metric.Meter,
) (*Handler, error) {
	registrations, err := meter.Int64Counter("ecart.auth.registrations",
		metric.WithDescription("Registration attempts by result"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create registrations counter")
	}
	logins, err := meter.Int64Counter("ecart.auth.logins",
		metric.WithDescription("Login attempts by result"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create logins counter")
	}

	return &Handler{
		products:      products,
		accounts:      accounts,
		imageBaseURL:  cfg.ImageBaseURL,
		retryAfter:    retryAfterSeconds(cfg.LoginRetryAfter),
		registrations: registrations,
		logins:        logins,
	}, nil
}

// retryAfterSeconds renders d as whole seconds, rounded up.
func retryAfterSeconds(d time.Duration) string {
	if d <= 0 {
		d = time.Minute
	}
	return strconv.FormatInt(int64(math.Ceil(d.Seconds())), 10)
}

// Mount registers the API routes on mux.
func (h *Handler) Mount(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/register", h.Register)
	mux.HandleFunc("POST /api/login", h.Login)
	mux.HandleFunc("GET /api/products", h.ListProducts)
	mux.HandleFunc("GET /api/products/{name}", h.GetProduct)
}
