package embedded

import (
	"context"
)

type Event struct {
	Kind uint64
	// Source is the screen or conductor that raised the event.
	Source any
	// Item is the conducted item for conduct events.
	Item any
	// Close is set on deactivation events when the screen is being retired.
	Close bool
	// Initialized is set on the Activated event of the first activation.
	Initialized bool
	// Success is set on ActivationProcessed when the handshake completed.
	Success bool
}

type Handler = func(ctx context.Context, event Event) error

type Named interface {
	DisplayName() string
}

type Activatable interface {
	Activate(ctx context.Context) error
	IsActive() bool
}

type Deactivatable interface {
	Deactivate(ctx context.Context, close bool) error
}

type GuardClosable interface {
	CanClose(ctx context.Context) (bool, error)
	TryClose(ctx context.Context) (bool, error)
}

type Child interface {
	Parent() any
	SetParent(parent any)
}

type Parent interface {
	Children() []any
}

type Observable interface {
	On(kind uint64, handler Handler) func()
}

type Screen interface {
	Named
	Activatable
	Deactivatable
	GuardClosable
	Child
	Observable
	ID() string
	IsInitialized() bool
}

// ItemCloser is implemented by owners that can run the guarded close protocol
// for one of their children.
type ItemCloser interface {
	CloseItem(ctx context.Context, item any) (bool, error)
}

// Conductor is the non generic view of a conductor with an active item.
type Conductor interface {
	Screen
	Parent
	Active() any
}
