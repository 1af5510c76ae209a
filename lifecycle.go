// Package lifecycle coordinates the activation, deactivation and guarded close
// of long lived screens and the conductors that own them.
package lifecycle

import (
	"context"

	"github.com/stateforward/go-lifecycle/embedded"
	"github.com/stateforward/go-lifecycle/kinds"
)

type (
	Event         = embedded.Event
	Handler       = embedded.Handler
	Activatable   = embedded.Activatable
	Deactivatable = embedded.Deactivatable
	GuardClosable = embedded.GuardClosable
	Child         = embedded.Child
	Parent        = embedded.Parent
	Named         = embedded.Named
	Observable    = embedded.Observable
	ItemCloser    = embedded.ItemCloser
)

// Trace is invoked at the start of every lifecycle step. The returned function
// is invoked when the step completes with the step's error, if any.
type Trace func(ctx context.Context, step string, subjects ...any) func(...any)

var Kinds = struct {
	Lifecycle           uint64
	Activation          uint64
	Activating          uint64
	Activated           uint64
	Deactivation        uint64
	Deactivating        uint64
	Deactivated         uint64
	Conduct             uint64
	ActivationProcessed uint64
}{
	Lifecycle:           kinds.Lifecycle,
	Activation:          kinds.Activation,
	Activating:          kinds.Activating,
	Activated:           kinds.Activated,
	Deactivation:        kinds.Deactivation,
	Deactivating:        kinds.Deactivating,
	Deactivated:         kinds.Deactivated,
	Conduct:             kinds.Conduct,
	ActivationProcessed: kinds.ActivationProcessed,
}

func activate(ctx context.Context, item any) error {
	if activatable, ok := item.(Activatable); ok {
		return activatable.Activate(ctx)
	}
	return nil
}

func deactivate(ctx context.Context, item any, close bool) error {
	if deactivatable, ok := item.(Deactivatable); ok {
		return deactivatable.Deactivate(ctx, close)
	}
	return nil
}

// isActive treats items without the Activatable capability as always active.
func isActive(item any) bool {
	if activatable, ok := item.(Activatable); ok {
		return activatable.IsActive()
	}
	return true
}

// base resolves the Screen embedded in item, if any.
func base(item any) *Screen {
	if embedder, ok := item.(interface{ base() *Screen }); ok {
		return embedder.base()
	}
	return nil
}

// same reports whether a and b are the same lifecycle participant, either by
// identity or because they share the same embedded Screen.
func same(a, b any) bool {
	if a == b {
		return true
	}
	if screen := base(a); screen != nil {
		return screen == base(b)
	}
	return false
}

// adoptable reports whether owner may become the parent of item.
func adoptable(owner, item any) error {
	child, ok := item.(Child)
	if !ok {
		return nil
	}
	if parent := child.Parent(); parent != nil && parent != owner {
		return ErrOwnedElsewhere
	}
	return nil
}

func adopt(owner, item any) error {
	if err := adoptable(owner, item); err != nil {
		return err
	}
	if child, ok := item.(Child); ok {
		child.SetParent(owner)
	}
	return nil
}

func release(owner, item any) {
	if child, ok := item.(Child); ok && child.Parent() == owner {
		child.SetParent(nil)
	}
}
