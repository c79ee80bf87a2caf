package feedback

import (
	"time"

	"github.com/google/uuid"

	"github.com/hearback/backend/internal/domain/feedback"
)

// CreateFeedbackRequest represents a request to submit a feedback item
type CreateFeedbackRequest struct {
	AuthorID    uuid.UUID `json:"author_id" binding:"required"`
	AuthorEmail string    `json:"author_email" binding:"omitempty,email"`
	Title       string    `json:"title" binding:"required,min=1,max=200"`
	Description string    `json:"description" binding:"max=10000"`
	Category    string    `json:"category" binding:"max=50"`
}

// AddCommentRequest represents a request to comment on a feedback item
type AddCommentRequest struct {
	AuthorID uuid.UUID `json:"author_id" binding:"required"`
	Body     string    `json:"body" binding:"required,min=1,max=10000"`
	IsAdmin  bool      `json:"is_admin"`
}

// ChangeStatusRequest represents a request to move a feedback item
// through the status pipeline
type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// TrackerLinkResponse represents one external tracker link
type TrackerLinkResponse struct {
	URL        string `json:"url"`
	ExternalID string `json:"external_id"`
}

// FeedbackResponse represents a feedback item in API responses
type FeedbackResponse struct {
	ID          uuid.UUID                      `json:"id"`
	ProjectID   uuid.UUID                      `json:"project_id"`
	AuthorID    uuid.UUID                      `json:"author_id"`
	Title       string                         `json:"title"`
	Description string                         `json:"description"`
	Category    string                         `json:"category"`
	Status      string                         `json:"status"`
	VoteCount   int                            `json:"vote_count"`
	Links       map[string]TrackerLinkResponse `json:"links"`
	CreatedAt   time.Time                      `json:"created_at"`
	UpdatedAt   time.Time                      `json:"updated_at"`
}

// CommentResponse represents a comment in API responses
type CommentResponse struct {
	ID         uuid.UUID `json:"id"`
	FeedbackID uuid.UUID `json:"feedback_id"`
	AuthorID   uuid.UUID `json:"author_id"`
	Body       string    `json:"body"`
	IsAdmin    bool      `json:"is_admin"`
	CreatedAt  time.Time `json:"created_at"`
}

// VoteResponse reports the vote count after a vote mutation
type VoteResponse struct {
	FeedbackID uuid.UUID `json:"feedback_id"`
	VoteCount  int       `json:"vote_count"`
}

// ToFeedbackResponse converts a domain item to its API representation
func ToFeedbackResponse(item *feedback.Item) *FeedbackResponse {
	links := make(map[string]TrackerLinkResponse, len(item.Links))
	for provider, link := range item.Links {
		links[provider] = TrackerLinkResponse{URL: link.URL, ExternalID: link.ExternalID}
	}
	return &FeedbackResponse{
		ID:          item.ID,
		ProjectID:   item.ProjectID,
		AuthorID:    item.AuthorID,
		Title:       item.Title,
		Description: item.Description,
		Category:    item.Category,
		Status:      string(item.Status),
		VoteCount:   item.VoteCount,
		Links:       links,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}

// ToCommentResponse converts a domain comment to its API representation
func ToCommentResponse(comment *feedback.Comment) *CommentResponse {
	return &CommentResponse{
		ID:         comment.ID,
		FeedbackID: comment.FeedbackID,
		AuthorID:   comment.AuthorID,
		Body:       comment.Body,
		IsAdmin:    comment.IsAdmin,
		CreatedAt:  comment.CreatedAt,
	}
}
