package feedback

import (
	"github.com/google/uuid"

	"github.com/hearback/backend/internal/domain/shared"
)

// Event types published by the feedback aggregate
const (
	EventTypeCreated       = "feedback.created"
	EventTypeCommentAdded  = "feedback.comment_added"
	EventTypeVoteChanged   = "feedback.vote_changed"
	EventTypeStatusChanged = "feedback.status_changed"
)

// AggregateType identifies the feedback aggregate in events
const AggregateType = "feedback_item"

// CreatedEvent is published when a feedback item is created
type CreatedEvent struct {
	shared.BaseDomainEvent
	Title    string `json:"title"`
	Category string `json:"category"`
}

// NewCreatedEvent creates a CreatedEvent for an item
func NewCreatedEvent(item *Item) *CreatedEvent {
	return &CreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCreated, AggregateType, item.ID, item.ProjectID),
		Title:           item.Title,
		Category:        item.Category,
	}
}

// CommentAddedEvent is published when a comment is added to an item
type CommentAddedEvent struct {
	shared.BaseDomainEvent
	Body    string `json:"body"`
	IsAdmin bool   `json:"is_admin"`
}

// NewCommentAddedEvent creates a CommentAddedEvent
func NewCommentAddedEvent(projectID uuid.UUID, comment *Comment) *CommentAddedEvent {
	return &CommentAddedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCommentAdded, AggregateType, comment.FeedbackID, projectID),
		Body:            comment.Body,
		IsAdmin:         comment.IsAdmin,
	}
}

// VoteChangedEvent is published when a vote is cast or retracted.
// NewCount carries the post-mutation denormalized counter.
type VoteChangedEvent struct {
	shared.BaseDomainEvent
	NewCount int `json:"new_count"`
}

// NewVoteChangedEvent creates a VoteChangedEvent
func NewVoteChangedEvent(projectID, feedbackID uuid.UUID, newCount int) *VoteChangedEvent {
	return &VoteChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeVoteChanged, AggregateType, feedbackID, projectID),
		NewCount:        newCount,
	}
}

// StatusChangedEvent is published when an item's status changes
type StatusChangedEvent struct {
	shared.BaseDomainEvent
	OldStatus Status `json:"old_status"`
	NewStatus Status `json:"new_status"`
}

// NewStatusChangedEvent creates a StatusChangedEvent
func NewStatusChangedEvent(projectID, feedbackID uuid.UUID, oldStatus, newStatus Status) *StatusChangedEvent {
	return &StatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStatusChanged, AggregateType, feedbackID, projectID),
		OldStatus:       oldStatus,
		NewStatus:       newStatus,
	}
}
