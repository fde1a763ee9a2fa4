package storefront

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/storefront"
)

// ReadinessSubscriber receives the resolved platform readiness state
type ReadinessSubscriber func(storefront.ReadinessState)

// ReadinessGate exposes the commerce platform's availability as a latched,
// subscribable state. The first ready or load_failed event on the bus
// resolves the gate; whichever arrives first wins and later events are
// ignored. Subscribers added after resolution are called immediately,
// subscribers added before are called in subscription order.
type ReadinessGate struct {
	logger *zap.Logger

	mu          sync.Mutex
	state       storefront.ReadinessState
	nextID      int
	order       []int
	subscribers map[int]ReadinessSubscriber
}

// NewReadinessGate creates a gate and wires it onto the event bus. When the
// platform already completed its handshake the gate starts resolved.
func NewReadinessGate(platform storefront.CommercePlatform, bus shared.EventSubscriber, logger *zap.Logger) *ReadinessGate {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &ReadinessGate{
		logger:      logger,
		subscribers: make(map[int]ReadinessSubscriber),
	}
	if platform != nil && platform.Connected() {
		g.state = storefront.ReadinessState{Ready: true}
	}
	if bus != nil {
		bus.Subscribe(g, storefront.EventTypePlatformReady, storefront.EventTypePlatformLoadFailed)
	}
	return g
}

// State returns the current readiness snapshot
func (g *ReadinessGate) State() storefront.ReadinessState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Subscribe registers a callback for the resolved state and returns a
// cancel function. When the gate already resolved, the callback fires
// synchronously before Subscribe returns and is not retained.
func (g *ReadinessGate) Subscribe(fn ReadinessSubscriber) func() {
	if fn == nil {
		return func() {}
	}

	g.mu.Lock()
	if g.state.Resolved() {
		state := g.state
		g.mu.Unlock()
		fn(state)
		return func() {}
	}

	id := g.nextID
	g.nextID++
	g.order = append(g.order, id)
	g.subscribers[id] = fn
	g.mu.Unlock()

	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		delete(g.subscribers, id)
	}
}

// Handle resolves the gate from platform lifecycle events
func (g *ReadinessGate) Handle(_ context.Context, event shared.DomainEvent) error {
	var state storefront.ReadinessState
	switch e := event.(type) {
	case *storefront.PlatformReadyEvent:
		state = storefront.ReadinessState{Ready: true}
	case *storefront.PlatformLoadFailedEvent:
		state = storefront.ReadinessState{Err: shared.NewDomainError(shared.ErrLoadFailed.Code, e.Reason)}
	default:
		return nil
	}
	g.resolve(state)
	return nil
}

// EventTypes returns the event types this handler is interested in
func (g *ReadinessGate) EventTypes() []string {
	return []string{storefront.EventTypePlatformReady, storefront.EventTypePlatformLoadFailed}
}

func (g *ReadinessGate) resolve(state storefront.ReadinessState) {
	g.mu.Lock()
	if g.state.Resolved() {
		g.mu.Unlock()
		return
	}
	g.state = state

	// Snapshot in subscription order, then notify outside the lock so a
	// callback can safely subscribe or unsubscribe
	notify := make([]ReadinessSubscriber, 0, len(g.subscribers))
	for _, id := range g.order {
		if fn, ok := g.subscribers[id]; ok {
			notify = append(notify, fn)
		}
	}
	g.order = nil
	g.subscribers = make(map[int]ReadinessSubscriber)
	g.mu.Unlock()

	g.logger.Debug("platform readiness resolved",
		zap.Bool("ready", state.Ready),
		zap.Error(state.Err))

	for _, fn := range notify {
		fn(state)
	}
}

// Ensure ReadinessGate implements EventHandler
var _ shared.EventHandler = (*ReadinessGate)(nil)
