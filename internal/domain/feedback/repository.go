package feedback

import (
	"context"

	"github.com/google/uuid"
)

// Repository provides persistence for feedback items, comments and votes
type Repository interface {
	// Create persists a new feedback item
	Create(ctx context.Context, item *Item) error

	// FindByIDForProject loads a feedback item scoped to a project.
	// Returns ErrNotFound when the item does not exist in that project.
	FindByIDForProject(ctx context.Context, projectID, id uuid.UUID) (*Item, error)

	// Save persists changes to an existing feedback item
	Save(ctx context.Context, item *Item) error

	// SetTrackerLink records a tracker link for an item using a guarded
	// conditional write. Returns ErrAlreadyLinked when a link for that
	// provider already exists, including under concurrent writers.
	SetTrackerLink(ctx context.Context, projectID, id uuid.UUID, provider string, link TrackerLink) error

	// AddComment persists a new comment
	AddComment(ctx context.Context, comment *Comment) error

	// AddVote persists a vote and atomically increments the denormalized
	// vote counter, returning the new count.
	AddVote(ctx context.Context, vote *Vote) (int, error)

	// RemoveVote deletes a voter's vote and atomically decrements the
	// counter, returning the new count.
	RemoveVote(ctx context.Context, feedbackID, voterID uuid.UUID) (int, error)

	// VoterIDs returns the ids of all users who voted on an item
	VoterIDs(ctx context.Context, feedbackID uuid.UUID) ([]uuid.UUID, error)
}
