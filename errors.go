package lifecycle

import (
	"errors"
	"fmt"
)

var (
	// ErrNotOwned is returned when a conductor is asked to act on an item it
	// does not own.
	ErrNotOwned = errors.New("item is not owned by this conductor")
	// ErrOwnedElsewhere is returned when adopting an item whose parent is
	// another conductor. The item must be closed by its owner first.
	ErrOwnedElsewhere = errors.New("item is owned by another conductor")
	ErrNilItem        = errors.New("nil item")
)

// GuardError reports a CanClose check that failed with an error other than
// cancellation. It aborts the close strategy that ran the check.
type GuardError[T any] struct {
	// Index is the position of the candidate passed to the close strategy
	Index int
	Item  T
	Err   error
}

func (e *GuardError[T]) Error() string {
	if named, ok := any(e.Item).(Named); ok {
		return fmt.Sprintf("guard check failed for %q (candidate %d): %v", named.DisplayName(), e.Index, e.Err)
	}
	return fmt.Sprintf("guard check failed for candidate %d: %v", e.Index, e.Err)
}

func (e *GuardError[T]) Unwrap() error {
	return e.Err
}
