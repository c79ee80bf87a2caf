package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SubscriptionModel holds the billing rows the revenue aggregation query
// reads. The billing subsystem owns writes; the sync engine only sums
// monthly revenue over a feedback item's author and voters.
type SubscriptionModel struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key"`
	ProjectID      uuid.UUID       `gorm:"type:uuid;not null;index:idx_subscription_project_user,priority:1"`
	UserID         uuid.UUID       `gorm:"type:uuid;not null;index:idx_subscription_project_user,priority:2"`
	PlanName       string          `gorm:"type:varchar(100)"`
	MonthlyRevenue decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Status         string          `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
	CreatedAt      time.Time       `gorm:"not null"`
	UpdatedAt      time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SubscriptionModel) TableName() string {
	return "subscriptions"
}

// SubscriptionStatusActive marks subscriptions that count toward revenue
const SubscriptionStatusActive = "ACTIVE"
