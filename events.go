package lifecycle

import (
	"context"
	"slices"
	"sync"

	"github.com/stateforward/go-lifecycle/kinds"
)

type subscription struct {
	id      uint64
	kind    uint64
	handler Handler
}

// events is a kind filtered handler registry. Handlers subscribed to a base
// kind receive every derived kind.
type events struct {
	mu            sync.Mutex
	next          uint64
	subscriptions []subscription
}

func (e *events) on(kind uint64, handler Handler) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.next++
	id := e.next
	e.subscriptions = append(e.subscriptions, subscription{id: id, kind: kind, handler: handler})
	var once sync.Once
	return func() {
		once.Do(func() {
			e.off(id)
		})
	}
}

func (e *events) off(id uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subscriptions = slices.DeleteFunc(e.subscriptions, func(s subscription) bool {
		return s.id == id
	})
}

func (e *events) subscribed(id uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.ContainsFunc(e.subscriptions, func(s subscription) bool {
		return s.id == id
	})
}

// count returns the number of handlers an event of kind would reach.
func (e *events) count(kind uint64) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, s := range e.subscriptions {
		if kinds.IsKind(kind, s.kind) {
			n++
		}
	}
	return n
}

// emit runs matching handlers in subscription order and stops at the first
// error. Handlers may subscribe or unsubscribe while an emission is running.
func (e *events) emit(ctx context.Context, event Event) error {
	e.mu.Lock()
	snapshot := slices.Clone(e.subscriptions)
	e.mu.Unlock()
	for _, s := range snapshot {
		if !kinds.IsKind(event.Kind, s.kind) {
			continue
		}
		if !e.subscribed(s.id) {
			continue
		}
		if err := s.handler(ctx, event); err != nil {
			return err
		}
	}
	return nil
}
