// Package billing exposes the subscriber revenue collaborator consumed by
// the sync engine. The engine reads revenue; ownership of subscriptions
// and plans stays with the billing subsystem.
package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RevenueAggregator computes the total monthly subscriber revenue across
// a feedback item's author and voters. A zero total means "no revenue
// data"; callers suppress revenue display rather than showing $0.
type RevenueAggregator interface {
	TotalRevenue(ctx context.Context, projectID, feedbackID uuid.UUID) (decimal.Decimal, error)
}
