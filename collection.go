package lifecycle

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/stateforward/go-lifecycle/kinds"
	"github.com/stateforward/go-lifecycle/pkg/set"
	"go.uber.org/multierr"
)

// collection is the ordered membership shared by OneActive and AllActive.
type collection[T comparable] struct {
	*Screen
	mu       sync.RWMutex
	items    []T
	members  set.Set[T]
	strategy CloseStrategy[T]
}

func newCollection[T comparable](name string, partials ...Partial) *collection[T] {
	c := &collection[T]{
		Screen:  NewScreen(name, partials...),
		members: set.New[T](),
	}
	c.strategy = NewCloseStrategy[T](c.config)
	return c
}

func (c *collection[T]) owner() any {
	return c.self
}

func (c *collection[T]) SetCloseStrategy(strategy CloseStrategy[T]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.strategy = strategy
}

func (c *collection[T]) CloseStrategy() CloseStrategy[T] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.strategy
}

// Items returns the members in insertion order.
func (c *collection[T]) Items() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.items)
}

func (c *collection[T]) Children() []any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	children := make([]any, 0, len(c.items))
	for _, item := range c.items {
		children = append(children, item)
	}
	return children
}

func (c *collection[T]) Contains(item T) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.members.Contains(item)
}

// Add adopts items without activating them. Items that are already members
// are left in place.
func (c *collection[T]) Add(items ...T) error {
	var zero T
	for _, item := range items {
		if item == zero {
			return ErrNilItem
		}
		if err := c.insert(item); err != nil {
			return err
		}
	}
	return nil
}

func (c *collection[T]) insert(item T) error {
	if c.Contains(item) {
		return nil
	}
	if err := adopt(c.owner(), item); err != nil {
		return fmt.Errorf("add %v: %w", item, err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.members.Contains(item) {
		c.members.Add(item)
		c.items = append(c.items, item)
	}
	return nil
}

func (c *collection[T]) remove(item T) {
	c.mu.Lock()
	removed := c.members.Remove(item) > 0
	if removed {
		c.items = slices.DeleteFunc(c.items, func(member T) bool {
			return member == item
		})
	}
	c.mu.Unlock()
	if removed {
		release(c.owner(), item)
	}
}

func (c *collection[T]) clear() {
	c.mu.Lock()
	items := c.items
	c.items = nil
	c.members = set.New[T]()
	c.mu.Unlock()
	for _, item := range items {
		release(c.owner(), item)
	}
}

// member resolves item to the member it refers to, matching either identity
// or a shared embedded Screen.
func (c *collection[T]) member(item any) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, candidate := range c.items {
		if same(candidate, item) {
			return candidate, true
		}
	}
	var zero T
	return zero, false
}

// negotiate runs the close strategy over a single member.
func (c *collection[T]) negotiate(ctx context.Context, item T) (bool, error) {
	result, err := c.CloseStrategy().Execute(ctx, []T{item})
	if err != nil {
		return false, err
	}
	if !result.CloseCanOccur {
		c.config.logger().InfoContext(ctx, "close vetoed", "conductor", c.DisplayName(), "item", item)
	}
	return result.CloseCanOccur, nil
}

// closeMembers closes and removes items. An item whose teardown fails stays a
// member; the failures are combined.
func (c *collection[T]) closeMembers(ctx context.Context, items []T) error {
	var errs error
	for _, item := range items {
		if err := deactivate(ctx, item, true); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		c.remove(item)
	}
	return errs
}

func (c *collection[T]) processed(ctx context.Context, item T, success bool) error {
	return c.events.emit(ctx, Event{Kind: kinds.ActivationProcessed, Source: c.owner(), Item: item, Success: success})
}
