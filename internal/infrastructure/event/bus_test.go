package event

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/shared"
)

type recordingHandler struct {
	types    []string
	received []shared.DomainEvent
	fail     bool
	panics   bool
}

func (h *recordingHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	if h.panics {
		panic("handler exploded")
	}
	h.received = append(h.received, event)
	if h.fail {
		return errors.New("handler failure")
	}
	return nil
}

func (h *recordingHandler) EventTypes() []string { return h.types }

func TestInMemoryEventBus_PublishDispatchesByType(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	ready := &recordingHandler{types: []string{"storefront.platform.ready"}}
	failed := &recordingHandler{types: []string{"storefront.platform.load_failed"}}
	all := &recordingHandler{}

	bus.Subscribe(ready)
	bus.Subscribe(failed)
	bus.Subscribe(all)

	event := newTestEvent("storefront.platform.ready")
	assert.NoError(t, bus.Publish(context.Background(), event))

	assert.Len(t, ready.received, 1)
	assert.Empty(t, failed.received)
	assert.Len(t, all.received, 1)
}

func TestInMemoryEventBus_SubscriberOrderPreserved(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	var order []string
	first := &shared.EventHandlerFunc{
		Types: []string{"test.event"},
		Fn: func(context.Context, shared.DomainEvent) error {
			order = append(order, "first")
			return nil
		},
	}
	second := &shared.EventHandlerFunc{
		Types: []string{"test.event"},
		Fn: func(context.Context, shared.DomainEvent) error {
			order = append(order, "second")
			return nil
		},
	}

	bus.Subscribe(first)
	bus.Subscribe(second)

	assert.NoError(t, bus.Publish(context.Background(), newTestEvent("test.event")))
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestInMemoryEventBus_FailingHandlerDoesNotBlockOthers(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	failing := &recordingHandler{types: []string{"test.event"}, fail: true}
	healthy := &recordingHandler{types: []string{"test.event"}}

	bus.Subscribe(failing)
	bus.Subscribe(healthy)

	assert.NoError(t, bus.Publish(context.Background(), newTestEvent("test.event")))
	assert.Len(t, healthy.received, 1)
}

func TestInMemoryEventBus_PanickingHandlerIsContained(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	panicking := &recordingHandler{types: []string{"test.event"}, panics: true}
	healthy := &recordingHandler{types: []string{"test.event"}}

	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	assert.NotPanics(t, func() {
		_ = bus.Publish(context.Background(), newTestEvent("test.event"))
	})
	assert.Len(t, healthy.received, 1)
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	handler := &recordingHandler{types: []string{"test.event"}}
	bus.Subscribe(handler)
	bus.Unsubscribe(handler)

	assert.NoError(t, bus.Publish(context.Background(), newTestEvent("test.event")))
	assert.Empty(t, handler.received)
}

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "test")}
}
