package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hearback/backend/internal/domain/feedback"
	"github.com/hearback/backend/internal/domain/tracker"
	"github.com/hearback/backend/internal/infrastructure/persistence/models"
)

// GormFeedbackRepository implements feedback.Repository using GORM
type GormFeedbackRepository struct {
	db *gorm.DB
}

// NewGormFeedbackRepository creates a new GormFeedbackRepository
func NewGormFeedbackRepository(db *gorm.DB) *GormFeedbackRepository {
	return &GormFeedbackRepository{db: db}
}

// Create persists a new feedback item
func (r *GormFeedbackRepository) Create(ctx context.Context, item *feedback.Item) error {
	model := models.FeedbackItemModelFromDomain(item)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByIDForProject loads a feedback item scoped to a project
func (r *GormFeedbackRepository) FindByIDForProject(ctx context.Context, projectID, id uuid.UUID) (*feedback.Item, error) {
	var model models.FeedbackItemModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ? AND project_id = ?", id, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, feedback.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save persists changes to an existing feedback item
func (r *GormFeedbackRepository) Save(ctx context.Context, item *feedback.Item) error {
	model := models.FeedbackItemModelFromDomain(item)
	return r.db.WithContext(ctx).Save(model).Error
}

// SetTrackerLink records a tracker link with a conditional UPDATE so the
// write-once guarantee holds under concurrent pushes. The update only
// lands when the provider's id column is still empty; zero affected rows
// means either a concurrent link or a missing item, distinguished by a
// follow-up read.
func (r *GormFeedbackRepository) SetTrackerLink(ctx context.Context, projectID, id uuid.UUID, provider string, link feedback.TrackerLink) error {
	urlCol, idCol, ok := models.LinkColumns(tracker.Code(provider))
	if !ok {
		return feedback.ErrUnknownProvider
	}

	result := r.db.WithContext(ctx).
		Model(&models.FeedbackItemModel{}).
		Where(fmt.Sprintf("id = ? AND project_id = ? AND (%s IS NULL OR %s = '')", idCol, idCol), id, projectID).
		Updates(map[string]any{
			urlCol: link.URL,
			idCol:  link.ExternalID,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.FindByIDForProject(ctx, projectID, id); err != nil {
			return err
		}
		return feedback.ErrAlreadyLinked
	}
	return nil
}

// AddComment persists a new comment
func (r *GormFeedbackRepository) AddComment(ctx context.Context, comment *feedback.Comment) error {
	model := models.FeedbackCommentModelFromDomain(comment)
	return r.db.WithContext(ctx).Create(model).Error
}

// AddVote persists a vote and increments the denormalized counter in one
// transaction, returning the new count
func (r *GormFeedbackRepository) AddVote(ctx context.Context, vote *feedback.Vote) (int, error) {
	var count int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(models.FeedbackVoteModelFromDomain(vote)).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.FeedbackItemModel{}).
			Where("id = ?", vote.FeedbackID).
			UpdateColumn("vote_count", gorm.Expr("vote_count + 1")).Error; err != nil {
			return err
		}
		return tx.Model(&models.FeedbackItemModel{}).
			Select("vote_count").
			Where("id = ?", vote.FeedbackID).
			Scan(&count).Error
	})
	return count, err
}

// RemoveVote deletes a voter's vote and decrements the counter,
// returning the new count
func (r *GormFeedbackRepository) RemoveVote(ctx context.Context, feedbackID, voterID uuid.UUID) (int, error) {
	var count int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.FeedbackVoteModel{}, "feedback_id = ? AND voter_id = ?", feedbackID, voterID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return feedback.ErrNotFound
		}
		if err := tx.Model(&models.FeedbackItemModel{}).
			Where("id = ? AND vote_count > 0", feedbackID).
			UpdateColumn("vote_count", gorm.Expr("vote_count - 1")).Error; err != nil {
			return err
		}
		return tx.Model(&models.FeedbackItemModel{}).
			Select("vote_count").
			Where("id = ?", feedbackID).
			Scan(&count).Error
	})
	return count, err
}

// VoterIDs returns the ids of all users who voted on an item
func (r *GormFeedbackRepository) VoterIDs(ctx context.Context, feedbackID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&models.FeedbackVoteModel{}).
		Where("feedback_id = ?", feedbackID).
		Pluck("voter_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// Ensure GormFeedbackRepository implements feedback.Repository
var _ feedback.Repository = (*GormFeedbackRepository)(nil)
