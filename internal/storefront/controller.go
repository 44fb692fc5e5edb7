// Package storefront hosts the cart behind the login gate and drives it from
// an interactive terminal shell.
package storefront

import (
	"context"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/xenking/drypanda-ecart/internal/checkout"
	"github.com/xenking/drypanda-ecart/internal/domain/cart"
	"github.com/xenking/drypanda-ecart/internal/domain/product"
)

// ErrLoginRequired is returned when a cart action is attempted while signed
// out. The navigator has already been asked to show the login screen.
var ErrLoginRequired = errors.New("login required")

// Gate reports whether the caller is authenticated.
type Gate interface {
	LoggedIn(ctx context.Context) bool
}

// Navigator sends the user to the login screen.
type Navigator interface {
	RedirectToLogin(ctx context.Context)
}

// Messenger hands a checkout deep link to the messaging channel.
type Messenger interface {
	Send(ctx context.Context, link string) error
}

// ControllerConfig holds non-dependency configuration for the Controller.
type ControllerConfig struct {
	// Phone is the number that receives checkout messages.
	Phone string
}

// Controller is the UI-facing entry point of the cart. Every action checks
// the login gate before the store is touched.
type Controller struct {
	gate      Gate
	nav       Navigator
	store     *cart.Store
	messenger Messenger
	phone     string
	lg        *zap.Logger
}

// NewController constructs a Controller.
func NewController(
	cfg ControllerConfig,
	gate Gate,
	nav Navigator,
	store *cart.Store,
	messenger Messenger,
	lg *zap.Logger,
) *Controller {
	return &Controller{
		gate:      gate,
		nav:       nav,
		store:     store,
		messenger: messenger,
		phone:     cfg.Phone,
		lg:        lg,
	}
}

// AddToCart adds one unit of p. Out-of-stock products are refused.
func (c *Controller) AddToCart(ctx context.Context, p product.Product, unit cart.UnitSize) (cart.Cart, error) {
	if !c.authorize(ctx) {
		return cart.Cart{}, ErrLoginRequired
	}
	if !p.Stock {
		return c.store.Snapshot(), errors.Wrap(product.ErrOutOfStock, p.Name)
	}
	c.lg.Debug("Add to cart", zap.String("product", p.Name), zap.Stringer("unit", unit))
	return c.store.Add(ctx, p, unit)
}

// RemoveFromCart takes one unit off the line under key.
func (c *Controller) RemoveFromCart(ctx context.Context, key cart.Key) (cart.Cart, error) {
	if !c.authorize(ctx) {
		return cart.Cart{}, ErrLoginRequired
	}
	c.lg.Debug("Remove from cart", zap.Stringer("key", key))
	return c.store.Remove(ctx, key)
}

// DeleteFromCart drops the line under key.
func (c *Controller) DeleteFromCart(ctx context.Context, key cart.Key) (cart.Cart, error) {
	if !c.authorize(ctx) {
		return cart.Cart{}, ErrLoginRequired
	}
	c.lg.Debug("Delete from cart", zap.Stringer("key", key))
	return c.store.Delete(ctx, key)
}

// OpenCart returns the cart for display.
func (c *Controller) OpenCart(ctx context.Context) (cart.Cart, error) {
	if !c.authorize(ctx) {
		return cart.Cart{}, ErrLoginRequired
	}
	return c.store.Snapshot(), nil
}

// Checkout renders the order message, sends its deep link to the messenger
// and returns the link.
func (c *Controller) Checkout(ctx context.Context) (string, error) {
	if !c.authorize(ctx) {
		return "", ErrLoginRequired
	}
	snapshot := c.store.Snapshot()
	if snapshot.IsEmpty() {
		return "", checkout.ErrEmptyCart
	}

	link := checkout.Link(c.phone, checkout.Message(snapshot))
	if err := c.messenger.Send(ctx, link); err != nil {
		return "", errors.Wrap(err, "send order")
	}
	c.lg.Info("Order handed off",
		zap.Int("entries", snapshot.Len()),
		zap.String("total", snapshot.Total().String()),
	)
	return link, nil
}

func (c *Controller) authorize(ctx context.Context) bool {
	if c.gate.LoggedIn(ctx) {
		return true
	}
	c.nav.RedirectToLogin(ctx)
	return false
}
