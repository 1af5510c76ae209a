package lifecycle

import (
	"context"
	"fmt"
	"sync"

	"github.com/stateforward/go-lifecycle/kinds"
	"go.uber.org/multierr"
)

// Conductor owns at most one active item. Switching the active item hides
// and releases the previous one.
type Conductor[T comparable] struct {
	*Screen
	mu         sync.RWMutex
	activeItem T
	strategy   CloseStrategy[T]
}

func NewConductor[T comparable](name string, partials ...Partial) *Conductor[T] {
	conductor := &Conductor[T]{
		Screen: NewScreen(name, partials...),
	}
	conductor.strategy = NewCloseStrategy[T](conductor.config)
	conductor.self = conductor
	conductor.entry = append(conductor.entry, conductor.onActivate)
	conductor.exit = append(conductor.exit, conductor.onDeactivate)
	return conductor
}

func (c *Conductor[T]) SetCloseStrategy(strategy CloseStrategy[T]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.strategy = strategy
}

func (c *Conductor[T]) CloseStrategy() CloseStrategy[T] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.strategy
}

func (c *Conductor[T]) ActiveItem() (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var zero T
	return c.activeItem, c.activeItem != zero
}

func (c *Conductor[T]) Active() any {
	item, ok := c.ActiveItem()
	if !ok {
		return nil
	}
	return item
}

func (c *Conductor[T]) Items() []T {
	if item, ok := c.ActiveItem(); ok {
		return []T{item}
	}
	return nil
}

func (c *Conductor[T]) Children() []any {
	if item, ok := c.ActiveItem(); ok {
		return []any{item}
	}
	return nil
}

func (c *Conductor[T]) setActiveItem(item T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.activeItem = item
}

// ActivateItem makes item the active item. Passing the zero value hides the
// current item and leaves the conductor without one.
func (c *Conductor[T]) ActivateItem(ctx context.Context, item T) (err error) {
	end := c.config.trace(ctx, "ActivateItem", c, item)
	defer func() { end(err) }()
	var zero T
	current, _ := c.ActiveItem()
	if item == zero && current == zero {
		return nil
	}
	if item != zero && item == current && isActive(item) {
		return c.processed(ctx, item, true)
	}
	if item != current {
		if item != zero {
			if err := adoptable(c, item); err != nil {
				c.config.logger().WarnContext(ctx, "rejected activation", "conductor", c.DisplayName(), "item", item, "error", err)
				return multierr.Combine(fmt.Errorf("activate %v: %w", item, err), c.processed(ctx, item, false))
			}
		}
		if current != zero {
			if err := deactivate(ctx, current, false); err != nil {
				return multierr.Combine(err, c.processed(ctx, item, false))
			}
			release(c, current)
			c.setActiveItem(zero)
		}
		if item == zero {
			return nil
		}
		if err := adopt(c, item); err != nil {
			return err
		}
		c.setActiveItem(item)
	}
	if err := activate(ctx, item); err != nil {
		c.config.logger().ErrorContext(ctx, "activation failed", "conductor", c.DisplayName(), "item", item, "error", err)
		return multierr.Combine(err, c.processed(ctx, item, false))
	}
	return c.processed(ctx, item, true)
}

// DeactivateItem hides the active item, or closes it when close is set and the
// close strategy consents. A vetoed close leaves everything unchanged.
func (c *Conductor[T]) DeactivateItem(ctx context.Context, item T, close bool) (err error) {
	end := c.config.trace(ctx, "DeactivateItem", c, item, close)
	defer func() { end(err) }()
	var zero T
	if item == zero {
		return ErrNilItem
	}
	if current, _ := c.ActiveItem(); current != item {
		return fmt.Errorf("deactivate %v: %w", item, ErrNotOwned)
	}
	_, err = c.deactivateItem(ctx, item, close)
	return err
}

// CloseItem runs the guarded close for item and reports whether it closed.
func (c *Conductor[T]) CloseItem(ctx context.Context, item any) (bool, error) {
	current, ok := c.ActiveItem()
	if !ok || !same(current, item) {
		return false, fmt.Errorf("close %v: %w", item, ErrNotOwned)
	}
	return c.deactivateItem(ctx, current, true)
}

func (c *Conductor[T]) deactivateItem(ctx context.Context, item T, close bool) (bool, error) {
	if close {
		result, err := c.CloseStrategy().Execute(ctx, []T{item})
		if err != nil {
			return false, err
		}
		if !result.CloseCanOccur {
			c.config.logger().InfoContext(ctx, "close vetoed", "conductor", c.DisplayName(), "item", item)
			return false, nil
		}
	}
	if err := deactivate(ctx, item, close); err != nil {
		return false, err
	}
	if close {
		var zero T
		c.mu.Lock()
		if c.activeItem == item {
			c.activeItem = zero
		}
		c.mu.Unlock()
		release(c, item)
	}
	return close, nil
}

// CanClose consults the conductor's own guard and then negotiates the close of
// the active item.
func (c *Conductor[T]) CanClose(ctx context.Context) (bool, error) {
	if ok, err := c.Screen.CanClose(ctx); err != nil || !ok {
		return false, err
	}
	current, ok := c.ActiveItem()
	if !ok {
		return true, nil
	}
	result, err := c.CloseStrategy().Execute(ctx, []T{current})
	if err != nil {
		return false, err
	}
	return result.CloseCanOccur, nil
}

func (c *Conductor[T]) processed(ctx context.Context, item T, success bool) error {
	return c.events.emit(ctx, Event{Kind: kinds.ActivationProcessed, Source: c, Item: item, Success: success})
}

func (c *Conductor[T]) onActivate(ctx context.Context) error {
	if current, ok := c.ActiveItem(); ok {
		return activate(ctx, current)
	}
	return nil
}

func (c *Conductor[T]) onDeactivate(ctx context.Context, close bool) error {
	current, ok := c.ActiveItem()
	if !ok {
		return nil
	}
	if err := deactivate(ctx, current, close); err != nil {
		return err
	}
	if close {
		var zero T
		release(c, current)
		c.setActiveItem(zero)
	}
	return nil
}
