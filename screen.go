package lifecycle

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/stateforward/go-lifecycle/embedded"
	"github.com/stateforward/go-lifecycle/kinds"
)

// Partial configures a Screen under construction.
type Partial func(screen *Screen)

// Initialize registers work that runs once, before the first activation.
// A failed initialization is retried on the next activation.
func Initialize(fn func(ctx context.Context) error) Partial {
	return func(screen *Screen) {
		screen.initialize = append(screen.initialize, fn)
	}
}

// Entry registers work that runs on every activation, after the Activating
// handlers and before the screen is marked active.
func Entry(fn func(ctx context.Context) error) Partial {
	return func(screen *Screen) {
		screen.entry = append(screen.entry, fn)
	}
}

// Exit registers teardown that runs on every deactivation, after the
// Deactivating handlers and before the screen is marked inactive.
func Exit(fn func(ctx context.Context, close bool) error) Partial {
	return func(screen *Screen) {
		screen.exit = append(screen.exit, fn)
	}
}

// Guard sets the CanClose policy. Without a guard a screen may always close.
func Guard(fn func(ctx context.Context) (bool, error)) Partial {
	return func(screen *Screen) {
		screen.guard = fn
	}
}

func WithConfig(config Config) Partial {
	return func(screen *Screen) {
		screen.config = config
	}
}

type Screen struct {
	id          string
	config      Config
	active      atomic.Bool
	initialized atomic.Bool
	events      events

	mu     sync.RWMutex
	name   string
	parent any

	initialize []func(ctx context.Context) error
	entry      []func(ctx context.Context) error
	exit       []func(ctx context.Context, close bool) error
	guard      func(ctx context.Context) (bool, error)

	// self is the outermost participant embedding this screen. It is the
	// event source and the value handed to the parent on TryClose.
	self embedded.Screen
}

func NewScreen(name string, partials ...Partial) *Screen {
	screen := &Screen{
		id:     uuid.Must(uuid.NewV7()).String(),
		name:   name,
		config: DefaultConfig,
	}
	screen.self = screen
	for _, partial := range partials {
		partial(screen)
	}
	return screen
}

func (s *Screen) base() *Screen {
	return s
}

func (s *Screen) ID() string {
	return s.id
}

func (s *Screen) DisplayName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *Screen) SetDisplayName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *Screen) String() string {
	return s.DisplayName()
}

func (s *Screen) IsActive() bool {
	return s.active.Load()
}

func (s *Screen) IsInitialized() bool {
	return s.initialized.Load()
}

func (s *Screen) Parent() any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.parent
}

func (s *Screen) SetParent(parent any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.parent = parent
}

// On subscribes handler to events of kind and every kind derived from it.
// The returned function unsubscribes and is safe to call more than once.
func (s *Screen) On(kind uint64, handler Handler) func() {
	return s.events.on(kind, handler)
}

// Subscribers returns the number of handlers an event of kind would reach.
func (s *Screen) Subscribers(kind uint64) int {
	return s.events.count(kind)
}

func (s *Screen) Activate(ctx context.Context) (err error) {
	end := s.config.trace(ctx, "Activate", s.self)
	defer func() { end(err) }()
	if s.active.Load() {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("activate %s: %w", s.DisplayName(), err)
	}
	if err := s.events.emit(ctx, Event{Kind: kinds.Activating, Source: s.self}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("activate %s: %w", s.DisplayName(), err)
	}
	initialized := false
	if !s.initialized.Load() {
		for _, fn := range s.initialize {
			if err := fn(ctx); err != nil {
				return fmt.Errorf("initialize %s: %w", s.DisplayName(), err)
			}
		}
		s.initialized.Store(true)
		initialized = true
	}
	for _, fn := range s.entry {
		if err := fn(ctx); err != nil {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("activate %s: %w", s.DisplayName(), err)
	}
	s.active.Store(true)
	s.config.logger().DebugContext(ctx, "activated", "screen", s.DisplayName(), "id", s.id, "initialized", initialized)
	return s.events.emit(ctx, Event{Kind: kinds.Activated, Source: s.self, Initialized: initialized})
}

// Deactivate hides the screen, or retires it when close is set. Closing an
// inactive screen still runs the close teardown.
func (s *Screen) Deactivate(ctx context.Context, close bool) (err error) {
	end := s.config.trace(ctx, "Deactivate", s.self, close)
	defer func() { end(err) }()
	if !s.active.Load() && !close {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("deactivate %s: %w", s.DisplayName(), err)
	}
	if err := s.events.emit(ctx, Event{Kind: kinds.Deactivating, Source: s.self, Close: close}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("deactivate %s: %w", s.DisplayName(), err)
	}
	for _, fn := range s.exit {
		if err := fn(ctx, close); err != nil {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("deactivate %s: %w", s.DisplayName(), err)
	}
	s.active.Store(false)
	s.config.logger().DebugContext(ctx, "deactivated", "screen", s.DisplayName(), "id", s.id, "closed", close)
	return s.events.emit(ctx, Event{Kind: kinds.Deactivated, Source: s.self, Close: close})
}

func (s *Screen) CanClose(ctx context.Context) (bool, error) {
	if s.guard == nil {
		return true, nil
	}
	return s.guard(ctx)
}

// TryClose asks the owning conductor to close this screen. An unowned screen
// runs the guarded close itself.
func (s *Screen) TryClose(ctx context.Context) (closed bool, err error) {
	end := s.config.trace(ctx, "TryClose", s.self)
	defer func() { end(err) }()
	if closer, ok := s.Parent().(ItemCloser); ok {
		return closer.CloseItem(ctx, s.self)
	}
	canClose, err := s.self.CanClose(ctx)
	if err != nil || !canClose {
		return false, err
	}
	if err := s.self.Deactivate(ctx, true); err != nil {
		return false, err
	}
	return true, nil
}
