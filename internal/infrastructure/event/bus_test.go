package event

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hearback/backend/internal/domain/feedback"
	"github.com/hearback/backend/internal/domain/shared"
)

type recordingHandler struct {
	types    []string
	received []shared.DomainEvent
	err      error
	panics   bool
}

func (h *recordingHandler) Handle(ctx context.Context, evt shared.DomainEvent) error {
	if h.panics {
		panic("handler exploded")
	}
	h.received = append(h.received, evt)
	return h.err
}

func (h *recordingHandler) EventTypes() []string { return h.types }

func newVoteEvent(t *testing.T) shared.DomainEvent {
	t.Helper()
	return feedback.NewVoteChangedEvent(uuid.New(), uuid.New(), 3)
}

func TestInMemoryEventBus_PublishDeliversToSubscribers(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	voteHandler := &recordingHandler{types: []string{feedback.EventTypeVoteChanged}}
	otherHandler := &recordingHandler{types: []string{feedback.EventTypeCommentAdded}}
	bus.Subscribe(voteHandler)
	bus.Subscribe(otherHandler)

	require.NoError(t, bus.Publish(context.Background(), newVoteEvent(t)))

	assert.Len(t, voteHandler.received, 1)
	assert.Empty(t, otherHandler.received, "handler for another type must not receive the event")
}

func TestInMemoryEventBus_HandlerErrorDoesNotPropagate(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	failing := &recordingHandler{types: []string{feedback.EventTypeVoteChanged}, err: errors.New("boom")}
	healthy := &recordingHandler{types: []string{feedback.EventTypeVoteChanged}}
	bus.Subscribe(failing)
	bus.Subscribe(healthy)

	require.NoError(t, bus.Publish(context.Background(), newVoteEvent(t)))
	assert.Len(t, healthy.received, 1, "later handlers still run after a failure")
}

func TestInMemoryEventBus_HandlerPanicIsRecovered(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	panicking := &recordingHandler{types: []string{feedback.EventTypeVoteChanged}, panics: true}
	bus.Subscribe(panicking)

	assert.NotPanics(t, func() {
		_ = bus.Publish(context.Background(), newVoteEvent(t))
	})
}
