package cart

import (
	"fmt"

	"github.com/go-faster/errors"
)

// ErrInvalidCount is returned when an entry would hold fewer than one unit.
var ErrInvalidCount = errors.New("count must be at least 1")

// ErrNegativeWeight is returned when a price is requested for a negative
// weight.
var ErrNegativeWeight = errors.New("negative weight")

// EntryNotFoundError indicates a decrement of a line that is not in the cart.
type EntryNotFoundError struct {
	Key Key
}

func (e *EntryNotFoundError) Error() string {
	return fmt.Sprintf("cart entry %s not found", e.Key)
}

// PersistenceError indicates the cart snapshot could not be saved or loaded.
// The in-memory cart stays usable.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s cart: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
