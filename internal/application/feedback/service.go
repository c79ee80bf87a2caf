package feedback

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hearback/backend/internal/domain/feedback"
	"github.com/hearback/backend/internal/domain/shared"
)

// Mailer sends plain text transactional mail. Satisfied by the
// infrastructure notify package.
type Mailer interface {
	Send(to, subject, body string) error
}

// Service owns the authoritative feedback mutations. Every mutation
// publishes a domain event; the sync engine subscribes and mirrors the
// change to linked trackers best-effort.
type Service struct {
	repo   feedback.Repository
	events shared.EventBus
	mailer Mailer
	logger *zap.Logger

	wg sync.WaitGroup
}

// NewService creates a feedback service
func NewService(repo feedback.Repository, events shared.EventBus, mailer Mailer, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		events: events,
		mailer: mailer,
		logger: logger,
	}
}

// Create submits a new feedback item
func (s *Service) Create(ctx context.Context, projectID uuid.UUID, req CreateFeedbackRequest) (*FeedbackResponse, error) {
	item, err := feedback.NewItem(projectID, req.AuthorID, req.Title, req.Description, req.Category)
	if err != nil {
		return nil, err
	}
	item.AuthorEmail = req.AuthorEmail

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}

	s.publish(ctx, feedback.NewCreatedEvent(item))
	return ToFeedbackResponse(item), nil
}

// GetByID retrieves a feedback item scoped to a project
func (s *Service) GetByID(ctx context.Context, projectID, id uuid.UUID) (*FeedbackResponse, error) {
	item, err := s.repo.FindByIDForProject(ctx, projectID, id)
	if err != nil {
		return nil, err
	}
	return ToFeedbackResponse(item), nil
}

// AddComment adds a comment to a feedback item
func (s *Service) AddComment(ctx context.Context, projectID, feedbackID uuid.UUID, req AddCommentRequest) (*CommentResponse, error) {
	// Scope check before writing the comment
	if _, err := s.repo.FindByIDForProject(ctx, projectID, feedbackID); err != nil {
		return nil, err
	}

	comment, err := feedback.NewComment(feedbackID, req.AuthorID, req.Body, req.IsAdmin)
	if err != nil {
		return nil, err
	}
	if err := s.repo.AddComment(ctx, comment); err != nil {
		return nil, err
	}

	s.publish(ctx, feedback.NewCommentAddedEvent(projectID, comment))
	return ToCommentResponse(comment), nil
}

// Vote casts a voter's vote on a feedback item. A duplicate vote from
// the same voter fails at the persistence layer.
func (s *Service) Vote(ctx context.Context, projectID, feedbackID, voterID uuid.UUID) (*VoteResponse, error) {
	if _, err := s.repo.FindByIDForProject(ctx, projectID, feedbackID); err != nil {
		return nil, err
	}

	vote, err := feedback.NewVote(feedbackID, voterID)
	if err != nil {
		return nil, err
	}
	count, err := s.repo.AddVote(ctx, vote)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, feedback.NewVoteChangedEvent(projectID, feedbackID, count))
	return &VoteResponse{FeedbackID: feedbackID, VoteCount: count}, nil
}

// Unvote retracts a voter's vote
func (s *Service) Unvote(ctx context.Context, projectID, feedbackID, voterID uuid.UUID) (*VoteResponse, error) {
	if _, err := s.repo.FindByIDForProject(ctx, projectID, feedbackID); err != nil {
		return nil, err
	}

	count, err := s.repo.RemoveVote(ctx, feedbackID, voterID)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, feedback.NewVoteChangedEvent(projectID, feedbackID, count))
	return &VoteResponse{FeedbackID: feedbackID, VoteCount: count}, nil
}

// ChangeStatus moves a feedback item through the status pipeline and
// emails the submitter about the change when an address is on record.
func (s *Service) ChangeStatus(ctx context.Context, projectID, feedbackID uuid.UUID, req ChangeStatusRequest) (*FeedbackResponse, error) {
	item, err := s.repo.FindByIDForProject(ctx, projectID, feedbackID)
	if err != nil {
		return nil, err
	}

	oldStatus := item.Status
	if err := item.ChangeStatus(feedback.Status(req.Status)); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, item); err != nil {
		return nil, err
	}

	s.publish(ctx, feedback.NewStatusChangedEvent(projectID, feedbackID, oldStatus, item.Status))
	s.notifySubmitter(item)

	return ToFeedbackResponse(item), nil
}

// publish delivers a domain event to the bus. Event handling is async
// and best-effort, so failures are logged, never surfaced to the caller.
func (s *Service) publish(ctx context.Context, event shared.DomainEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("event publish failed",
			zap.String("event_type", event.EventType()),
			zap.String("aggregate_id", event.AggregateID().String()),
			zap.Error(err),
		)
	}
}

// notifySubmitter emails the feedback author about a status change.
// Delivery runs detached so a slow relay never holds the status change
// request; failures are logged and dropped.
func (s *Service) notifySubmitter(item *feedback.Item) {
	if s.mailer == nil || item.AuthorEmail == "" {
		return
	}

	to := item.AuthorEmail
	feedbackID := item.ID
	subject := fmt.Sprintf("Your feedback is now %s", item.Status.DisplayName())
	body := fmt.Sprintf(
		"Hi,\n\nThe status of your feedback %q changed to %s.\n\nThanks for helping us improve!\n",
		item.Title, item.Status.DisplayName(),
	)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("status change mail panicked",
					zap.String("feedback_id", feedbackID.String()),
					zap.Any("panic", r),
				)
			}
		}()

		if err := s.mailer.Send(to, subject, body); err != nil {
			s.logger.Warn("status change mail failed",
				zap.String("feedback_id", feedbackID.String()),
				zap.Error(err),
			)
		}
	}()
}

// Wait blocks until in-flight notification mail has been handed off.
// Used during graceful shutdown and by tests.
func (s *Service) Wait() {
	s.wg.Wait()
}
