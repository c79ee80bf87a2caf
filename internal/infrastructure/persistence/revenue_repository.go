package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/hearback/backend/internal/domain/billing"
	"github.com/hearback/backend/internal/domain/feedback"
	"github.com/hearback/backend/internal/infrastructure/persistence/models"
)

// GormRevenueAggregator implements billing.RevenueAggregator by summing
// active subscription revenue over a feedback item's author and voters
type GormRevenueAggregator struct {
	db *gorm.DB
}

// NewGormRevenueAggregator creates a new GormRevenueAggregator
func NewGormRevenueAggregator(db *gorm.DB) *GormRevenueAggregator {
	return &GormRevenueAggregator{db: db}
}

// TotalRevenue sums the monthly revenue of every active subscriber among
// the item's author and voters. Duplicate users count once.
func (r *GormRevenueAggregator) TotalRevenue(ctx context.Context, projectID, feedbackID uuid.UUID) (decimal.Decimal, error) {
	var item models.FeedbackItemModel
	if err := r.db.WithContext(ctx).
		Select("author_id").
		First(&item, "id = ? AND project_id = ?", feedbackID, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, feedback.ErrNotFound
		}
		return decimal.Zero, err
	}

	var voterIDs []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&models.FeedbackVoteModel{}).
		Where("feedback_id = ?", feedbackID).
		Pluck("voter_id", &voterIDs).Error; err != nil {
		return decimal.Zero, err
	}

	userIDs := make([]uuid.UUID, 0, len(voterIDs)+1)
	seen := map[uuid.UUID]struct{}{}
	for _, id := range append(voterIDs, item.AuthorID) {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		userIDs = append(userIDs, id)
	}
	if len(userIDs) == 0 {
		return decimal.Zero, nil
	}

	var total decimal.NullDecimal
	if err := r.db.WithContext(ctx).
		Model(&models.SubscriptionModel{}).
		Select("SUM(monthly_revenue)").
		Where("project_id = ? AND user_id IN ? AND status = ?", projectID, userIDs, models.SubscriptionStatusActive).
		Scan(&total).Error; err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// Ensure GormRevenueAggregator implements billing.RevenueAggregator
var _ billing.RevenueAggregator = (*GormRevenueAggregator)(nil)
