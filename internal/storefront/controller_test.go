package storefront

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xenking/drypanda-ecart/internal/checkout"
	"github.com/xenking/drypanda-ecart/internal/domain/cart"
	"github.com/xenking/drypanda-ecart/internal/domain/product"
)

type controllerFixture struct {
	ctrl      *Controller
	gate      *fakeGate
	nav       *recordingNavigator
	messenger *recordingMessenger
	kv        *memKV
}

func newControllerFixture(t *testing.T, loggedIn bool) controllerFixture {
	t.Helper()

	kv := newMemKV()
	f := controllerFixture{
		gate:      &fakeGate{loggedIn: loggedIn},
		nav:       &recordingNavigator{},
		messenger: &recordingMessenger{},
		kv:        kv,
	}
	store := cart.NewStore(kv, zaptest.NewLogger(t))
	f.ctrl = NewController(ControllerConfig{Phone: "+911234567890"}, f.gate, f.nav, store, f.messenger, zaptest.NewLogger(t))
	return f
}

func TestController_LoginGate(t *testing.T) {
	ctx := context.Background()
	cashew := testProduct("Cashew", 60, 110, true)
	key := cart.Key{Name: "Cashew", Unit: cart.Unit50}

	actions := map[string]func(c *Controller) error{
		"add": func(c *Controller) error {
			_, err := c.AddToCart(ctx, cashew, cart.Unit50)
			return err
		},
		"remove": func(c *Controller) error {
			_, err := c.RemoveFromCart(ctx, key)
			return err
		},
		"delete": func(c *Controller) error {
			_, err := c.DeleteFromCart(ctx, key)
			return err
		},
		"open": func(c *Controller) error {
			_, err := c.OpenCart(ctx)
			return err
		},
		"checkout": func(c *Controller) error {
			_, err := c.Checkout(ctx)
			return err
		},
	}

	for name, action := range actions {
		t.Run(name, func(t *testing.T) {
			f := newControllerFixture(t, false)

			err := action(f.ctrl)
			require.ErrorIs(t, err, ErrLoginRequired)
			assert.Equal(t, 1, f.nav.redirects)
			assert.Zero(t, f.kv.writes, "store must not be touched")
			assert.Empty(t, f.messenger.links)
		})
	}
}

func TestController_AddToCart(t *testing.T) {
	ctx := context.Background()

	t.Run("merges repeated adds", func(t *testing.T) {
		f := newControllerFixture(t, true)
		cashew := testProduct("Cashew", 60, 110, true)

		_, err := f.ctrl.AddToCart(ctx, cashew, cart.Unit50)
		require.NoError(t, err)
		c, err := f.ctrl.AddToCart(ctx, cashew, cart.Unit50)
		require.NoError(t, err)

		require.Equal(t, 1, c.Len())
		assert.Equal(t, 2, c.Entries()[0].Count)
		assert.Equal(t, "110", c.Total().String())
		assert.Equal(t, 2, f.kv.writes)
		assert.Zero(t, f.nav.redirects)
	})

	t.Run("out of stock", func(t *testing.T) {
		f := newControllerFixture(t, true)

		c, err := f.ctrl.AddToCart(ctx, testProduct("Walnut", 90, 0, false), cart.Unit50)
		require.ErrorIs(t, err, product.ErrOutOfStock)
		assert.True(t, c.IsEmpty())
		assert.Zero(t, f.kv.writes)
	})
}

func TestController_RemoveAndDelete(t *testing.T) {
	ctx := context.Background()
	f := newControllerFixture(t, true)
	cashew := testProduct("Cashew", 60, 110, true)
	key := cart.Key{Name: "Cashew", Unit: cart.Unit100}

	_, err := f.ctrl.AddToCart(ctx, cashew, cart.Unit100)
	require.NoError(t, err)

	c, err := f.ctrl.RemoveFromCart(ctx, key)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())

	_, err = f.ctrl.RemoveFromCart(ctx, key)
	var notFound *cart.EntryNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, key, notFound.Key)

	c, err = f.ctrl.DeleteFromCart(ctx, key)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}

func TestController_Checkout(t *testing.T) {
	ctx := context.Background()

	t.Run("empty cart", func(t *testing.T) {
		f := newControllerFixture(t, true)

		_, err := f.ctrl.Checkout(ctx)
		require.ErrorIs(t, err, checkout.ErrEmptyCart)
		assert.Empty(t, f.messenger.links)
	})

	t.Run("sends order link", func(t *testing.T) {
		f := newControllerFixture(t, true)
		cashew := testProduct("Cashew", 60, 110, true)
		for range 3 {
			_, err := f.ctrl.AddToCart(ctx, cashew, cart.Unit50)
			require.NoError(t, err)
		}

		link, err := f.ctrl.Checkout(ctx)
		require.NoError(t, err)
		require.Equal(t, []string{link}, f.messenger.links)

		u, err := url.Parse(link)
		require.NoError(t, err)
		assert.Equal(t, "wa.me", u.Host)
		assert.Equal(t, "/911234567890", u.Path)
		assert.Equal(t,
			"Hello! I want to order:\n- Cashew = ₹170 (Total weight: 150g)\nTotal: ₹170",
			u.Query().Get("text"),
		)
	})
}
