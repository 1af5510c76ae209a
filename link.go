package lifecycle

import (
	"context"
	"weak"

	"github.com/stateforward/go-lifecycle/kinds"
)

// ActivateWith activates child whenever parent is activated. The subscription
// holds child weakly: once child has been reclaimed the next activation of
// parent detaches the subscription instead. No ownership is established.
// The returned function detaches explicitly.
func ActivateWith[T any, P interface {
	*T
	Activatable
}](child P, parent Observable) func() {
	ref := weak.Make((*T)(child))
	var detach func()
	detach = parent.On(kinds.Activated, func(ctx context.Context, event Event) error {
		target := ref.Value()
		if target == nil {
			detach()
			return nil
		}
		return P(target).Activate(ctx)
	})
	return detach
}

// DeactivateWith deactivates child whenever parent is deactivated, closing it
// when parent was closed. It holds child weakly like ActivateWith.
func DeactivateWith[T any, P interface {
	*T
	Deactivatable
}](child P, parent Observable) func() {
	ref := weak.Make((*T)(child))
	var detach func()
	detach = parent.On(kinds.Deactivated, func(ctx context.Context, event Event) error {
		target := ref.Value()
		if target == nil {
			detach()
			return nil
		}
		return P(target).Deactivate(ctx, event.Close)
	})
	return detach
}

// ConductWith links both the activation and the deactivation of child to
// parent.
func ConductWith[T any, P interface {
	*T
	Activatable
	Deactivatable
}](child P, parent Observable) func() {
	activation := ActivateWith[T, P](child, parent)
	deactivation := DeactivateWith[T, P](child, parent)
	return func() {
		activation()
		deactivation()
	}
}
