package lifecycle

import (
	"context"
	"fmt"
	"slices"

	"github.com/stateforward/go-lifecycle/pkg/set"
	"go.uber.org/multierr"
)

// OneActive owns an ordered collection of items of which at most one is
// active. Switching the active item hides the previous one but keeps it as a
// member.
type OneActive[T comparable] struct {
	*collection[T]
	activeItem T
}

func NewOneActive[T comparable](name string, partials ...Partial) *OneActive[T] {
	conductor := &OneActive[T]{
		collection: newCollection[T](name, partials...),
	}
	conductor.self = conductor
	conductor.entry = append(conductor.entry, conductor.onActivate)
	conductor.exit = append(conductor.exit, conductor.onDeactivate)
	return conductor
}

func (o *OneActive[T]) ActiveItem() (T, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	var zero T
	return o.activeItem, o.activeItem != zero
}

func (o *OneActive[T]) Active() any {
	item, ok := o.ActiveItem()
	if !ok {
		return nil
	}
	return item
}

func (o *OneActive[T]) setActiveItem(item T) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.activeItem = item
}

// ActivateItem adds item if needed and makes it the active item. Passing the
// zero value hides the current item.
func (o *OneActive[T]) ActivateItem(ctx context.Context, item T) (err error) {
	end := o.config.trace(ctx, "ActivateItem", o, item)
	defer func() { end(err) }()
	var zero T
	current, _ := o.ActiveItem()
	if item == zero && current == zero {
		return nil
	}
	if item != zero && item == current && isActive(item) {
		return o.processed(ctx, item, true)
	}
	if item != zero && !o.Contains(item) {
		if err := adoptable(o, item); err != nil {
			o.config.logger().WarnContext(ctx, "rejected activation", "conductor", o.DisplayName(), "item", item, "error", err)
			return multierr.Combine(fmt.Errorf("activate %v: %w", item, err), o.processed(ctx, item, false))
		}
	}
	if current != zero && current != item {
		if err := deactivate(ctx, current, false); err != nil {
			return multierr.Combine(err, o.processed(ctx, item, false))
		}
	}
	o.setActiveItem(item)
	if item == zero {
		return nil
	}
	if err := o.insert(item); err != nil {
		return err
	}
	if err := activate(ctx, item); err != nil {
		o.config.logger().ErrorContext(ctx, "activation failed", "conductor", o.DisplayName(), "item", item, "error", err)
		return multierr.Combine(err, o.processed(ctx, item, false))
	}
	return o.processed(ctx, item, true)
}

// DeactivateItem hides item in place, or closes and removes it when close is
// set and the close strategy consents. Closing the active item moves
// activation to a neighbour.
func (o *OneActive[T]) DeactivateItem(ctx context.Context, item T, close bool) (err error) {
	end := o.config.trace(ctx, "DeactivateItem", o, item, close)
	defer func() { end(err) }()
	var zero T
	if item == zero {
		return ErrNilItem
	}
	if !o.Contains(item) {
		return fmt.Errorf("deactivate %v: %w", item, ErrNotOwned)
	}
	_, err = o.deactivateItem(ctx, item, close)
	return err
}

func (o *OneActive[T]) CloseItem(ctx context.Context, item any) (bool, error) {
	member, ok := o.member(item)
	if !ok {
		return false, fmt.Errorf("close %v: %w", item, ErrNotOwned)
	}
	return o.deactivateItem(ctx, member, true)
}

func (o *OneActive[T]) deactivateItem(ctx context.Context, item T, close bool) (bool, error) {
	if !close {
		return false, deactivate(ctx, item, false)
	}
	ok, err := o.negotiate(ctx, item)
	if err != nil || !ok {
		return false, err
	}
	if current, _ := o.ActiveItem(); current != item {
		return true, o.closeMembers(ctx, []T{item})
	}
	next := nextItem(o.Items(), item)
	if err := o.closeMembers(ctx, []T{item}); err != nil {
		return false, err
	}
	return true, o.succeed(ctx, next)
}

// succeed makes next the active item after the previous one was closed. It is
// only activated when the conductor itself is active.
func (o *OneActive[T]) succeed(ctx context.Context, next T) error {
	var zero T
	o.setActiveItem(next)
	if next == zero || !o.IsActive() {
		return nil
	}
	if err := activate(ctx, next); err != nil {
		return multierr.Combine(err, o.processed(ctx, next, false))
	}
	return o.processed(ctx, next, true)
}

// nextItem picks the item to activate when closed leaves list: the item
// before it, or the one after it when it is first.
func nextItem[T comparable](list []T, closed T) T {
	var zero T
	index := slices.Index(list, closed) - 1
	if index == -1 && len(list) > 1 {
		return list[1]
	}
	if index > -1 && index < len(list)-1 {
		return list[index]
	}
	return zero
}

// CanClose negotiates the close of every member. Members that consent are
// closed at once even when others veto; if the active item is among them the
// nearest remaining member becomes active. A veto from the conductor's own
// guard ends the negotiation before any member is asked.
func (o *OneActive[T]) CanClose(ctx context.Context) (bool, error) {
	if ok, err := o.Screen.CanClose(ctx); err != nil || !ok {
		return false, err
	}
	items := o.Items()
	result, err := o.CloseStrategy().Execute(ctx, items)
	if err != nil {
		return false, err
	}
	if result.CloseCanOccur || len(result.Children) == 0 {
		return result.CloseCanOccur, nil
	}
	closable := set.New(result.Children...)
	var errs error
	if current, ok := o.ActiveItem(); ok && closable.Contains(current) {
		list := slices.Clone(items)
		next := current
		for {
			previous := next
			next = nextItem(list, previous)
			list = slices.DeleteFunc(list, func(item T) bool { return item == previous })
			if !closable.Contains(next) {
				break
			}
		}
		if err := o.closeMembers(ctx, []T{current}); err != nil {
			errs = multierr.Append(errs, err)
		} else {
			errs = multierr.Append(errs, o.succeed(ctx, next))
		}
		closable.Remove(current)
	}
	errs = multierr.Append(errs, o.closeMembers(ctx, closable.Filter(result.Children)))
	o.config.logger().InfoContext(ctx, "partial close", "conductor", o.DisplayName(), "closed", len(result.Children), "remaining", len(o.Items()))
	return false, errs
}

func (o *OneActive[T]) onActivate(ctx context.Context) error {
	if current, ok := o.ActiveItem(); ok {
		return activate(ctx, current)
	}
	return nil
}

func (o *OneActive[T]) onDeactivate(ctx context.Context, close bool) error {
	if !close {
		if current, ok := o.ActiveItem(); ok {
			return deactivate(ctx, current, false)
		}
		return nil
	}
	var errs error
	for _, item := range o.Items() {
		errs = multierr.Append(errs, deactivate(ctx, item, true))
	}
	if errs != nil {
		return errs
	}
	var zero T
	o.setActiveItem(zero)
	o.clear()
	return nil
}
