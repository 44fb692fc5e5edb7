package cart

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/xenking/drypanda-ecart/internal/domain/product"
)

// StorageKey is the key under which the cart snapshot is stored.
const StorageKey = "cartItems"

// Storage is a synchronous key/value store that survives restarts. Get
// returns a nil value and no error for a missing key.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Store owns the cart of one browsing session and writes a full snapshot to
// Storage after every mutation. Mutations are serialized.
type Store struct {
	mu      sync.Mutex
	cart    Cart
	storage Storage
	lg      *zap.Logger
}

// NewStore creates a Store with an empty cart. Call Hydrate once to restore
// a previous session.
func NewStore(storage Storage, lg *zap.Logger) *Store {
	return &Store{storage: storage, lg: lg}
}

// Hydrate replaces the cart with the stored snapshot. A missing snapshot
// yields an empty cart; an unreadable one yields an empty cart and a
// *PersistenceError.
func (s *Store) Hydrate(ctx context.Context) (Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart = Cart{}

	data, err := s.storage.Get(ctx, StorageKey)
	if err != nil {
		return s.cart, &PersistenceError{Op: "load", Err: err}
	}
	c, err := Decode(data)
	if err != nil {
		return s.cart, &PersistenceError{Op: "load", Err: err}
	}

	s.cart = c
	s.lg.Debug("Cart restored", zap.Int("entries", c.Len()))
	return c, nil
}

// Snapshot returns the current cart.
func (s *Store) Snapshot() Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart
}

// Add puts one unit of p into the cart. When the snapshot cannot be saved
// the updated cart is returned together with a *PersistenceError.
func (s *Store) Add(ctx context.Context, p product.Product, unit UnitSize) (Cart, error) {
	return s.mutate(ctx, func(c Cart) (Cart, error) {
		return c.Add(p, unit)
	})
}

// Remove takes one unit off the line under key. It returns an
// *EntryNotFoundError when the line does not exist.
func (s *Store) Remove(ctx context.Context, key Key) (Cart, error) {
	return s.mutate(ctx, func(c Cart) (Cart, error) {
		return c.Remove(key)
	})
}

// Delete drops the line under key. Deleting an absent line is not an error.
func (s *Store) Delete(ctx context.Context, key Key) (Cart, error) {
	return s.mutate(ctx, func(c Cart) (Cart, error) {
		return c.Delete(key), nil
	})
}

func (s *Store) mutate(ctx context.Context, fn func(Cart) (Cart, error)) (Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fn(s.cart)
	if err != nil {
		return s.cart, err
	}
	s.cart = next

	if err := s.storage.Set(ctx, StorageKey, Encode(next)); err != nil {
		s.lg.Warn("Cart snapshot not saved", zap.Error(err))
		return next, &PersistenceError{Op: "save", Err: err}
	}
	return next, nil
}
