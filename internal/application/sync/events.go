package sync

import (
	"context"

	"github.com/hearback/backend/internal/domain/feedback"
	"github.com/hearback/backend/internal/domain/shared"
)

// EventHandler bridges feedback domain events onto the dispatcher's
// fan-out methods. Every method it triggers is best-effort, so Handle
// never returns an error for provider failures.
type EventHandler struct {
	dispatcher *Dispatcher
}

// NewEventHandler creates the sync event handler
func NewEventHandler(dispatcher *Dispatcher) *EventHandler {
	return &EventHandler{dispatcher: dispatcher}
}

// EventTypes lists the feedback events the handler subscribes to
func (h *EventHandler) EventTypes() []string {
	return []string{
		feedback.EventTypeCreated,
		feedback.EventTypeCommentAdded,
		feedback.EventTypeVoteChanged,
		feedback.EventTypeStatusChanged,
	}
}

// Handle routes a feedback event to the matching fan-out
func (h *EventHandler) Handle(ctx context.Context, evt shared.DomainEvent) error {
	switch e := evt.(type) {
	case *feedback.CreatedEvent:
		h.dispatcher.OnFeedbackCreated(ctx, e.ProjectID(), e.AggregateID())
	case *feedback.CommentAddedEvent:
		h.dispatcher.OnCommentCreated(ctx, e.ProjectID(), e.AggregateID(), e.Body, e.IsAdmin)
	case *feedback.VoteChangedEvent:
		h.dispatcher.OnVoteChanged(ctx, e.ProjectID(), e.AggregateID(), e.NewCount)
	case *feedback.StatusChangedEvent:
		h.dispatcher.OnStatusChanged(ctx, e.ProjectID(), e.AggregateID(), e.NewStatus)
	}
	return nil
}

// Ensure EventHandler implements shared.EventHandler
var _ shared.EventHandler = (*EventHandler)(nil)
