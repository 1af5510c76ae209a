package lifecycle

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
)

// AllActive owns an ordered collection of items that are all active while
// the conductor is. Activating one item never affects its siblings.
type AllActive[T comparable] struct {
	*collection[T]
}

func NewAllActive[T comparable](name string, partials ...Partial) *AllActive[T] {
	conductor := &AllActive[T]{
		collection: newCollection[T](name, partials...),
	}
	conductor.self = conductor
	conductor.entry = append(conductor.entry, conductor.onActivate)
	conductor.exit = append(conductor.exit, conductor.onDeactivate)
	return conductor
}

// Active returns nil; every member of an AllActive conductor is active.
func (a *AllActive[T]) Active() any {
	return nil
}

// ActivateItem adds item if needed and activates it.
func (a *AllActive[T]) ActivateItem(ctx context.Context, item T) (err error) {
	end := a.config.trace(ctx, "ActivateItem", a, item)
	defer func() { end(err) }()
	var zero T
	if item == zero {
		return ErrNilItem
	}
	if err := a.insert(item); err != nil {
		a.config.logger().WarnContext(ctx, "rejected activation", "conductor", a.DisplayName(), "item", item, "error", err)
		return multierr.Combine(err, a.processed(ctx, item, false))
	}
	if err := activate(ctx, item); err != nil {
		a.config.logger().ErrorContext(ctx, "activation failed", "conductor", a.DisplayName(), "item", item, "error", err)
		return multierr.Combine(err, a.processed(ctx, item, false))
	}
	return a.processed(ctx, item, true)
}

// DeactivateItem hides item in place, or closes and removes it when close is
// set and the close strategy consents.
func (a *AllActive[T]) DeactivateItem(ctx context.Context, item T, close bool) (err error) {
	end := a.config.trace(ctx, "DeactivateItem", a, item, close)
	defer func() { end(err) }()
	var zero T
	if item == zero {
		return ErrNilItem
	}
	if !a.Contains(item) {
		return fmt.Errorf("deactivate %v: %w", item, ErrNotOwned)
	}
	_, err = a.deactivateItem(ctx, item, close)
	return err
}

func (a *AllActive[T]) CloseItem(ctx context.Context, item any) (bool, error) {
	member, ok := a.member(item)
	if !ok {
		return false, fmt.Errorf("close %v: %w", item, ErrNotOwned)
	}
	return a.deactivateItem(ctx, member, true)
}

func (a *AllActive[T]) deactivateItem(ctx context.Context, item T, close bool) (bool, error) {
	if !close {
		return false, deactivate(ctx, item, false)
	}
	ok, err := a.negotiate(ctx, item)
	if err != nil || !ok {
		return false, err
	}
	if err := a.closeMembers(ctx, []T{item}); err != nil {
		return false, err
	}
	return true, nil
}

// CanClose negotiates the close of every member. Members that consent are
// closed at once even when others veto. A veto from the conductor's own guard
// ends the negotiation before any member is asked.
func (a *AllActive[T]) CanClose(ctx context.Context) (bool, error) {
	if ok, err := a.Screen.CanClose(ctx); err != nil || !ok {
		return false, err
	}
	result, err := a.CloseStrategy().Execute(ctx, a.Items())
	if err != nil {
		return false, err
	}
	if result.CloseCanOccur || len(result.Children) == 0 {
		return result.CloseCanOccur, nil
	}
	err = a.closeMembers(ctx, result.Children)
	a.config.logger().InfoContext(ctx, "partial close", "conductor", a.DisplayName(), "closed", len(result.Children), "remaining", len(a.Items()))
	return false, err
}

func (a *AllActive[T]) onActivate(ctx context.Context) error {
	var errs error
	for _, item := range a.Items() {
		errs = multierr.Append(errs, activate(ctx, item))
	}
	return errs
}

func (a *AllActive[T]) onDeactivate(ctx context.Context, close bool) error {
	var errs error
	for _, item := range a.Items() {
		errs = multierr.Append(errs, deactivate(ctx, item, close))
	}
	if errs != nil || !close {
		return errs
	}
	a.clear()
	return nil
}
