// Package sync contains the dispatcher that pushes feedback items to
// external trackers and fans out follow-up activity (comments, votes,
// status changes) to every linked tracker.
package sync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/ratelimit"
	"go.uber.org/zap"

	"github.com/hearback/backend/internal/domain/billing"
	"github.com/hearback/backend/internal/domain/feedback"
	"github.com/hearback/backend/internal/domain/tracker"
)

// Dispatcher coordinates pushes to external trackers. Explicit pushes
// (Push, BulkPush) return errors to the caller; event fan-out is
// best-effort and never blocks or fails the triggering operation.
type Dispatcher struct {
	registry tracker.Registry
	configs  tracker.ConfigRepository
	items    feedback.Repository
	revenue  billing.RevenueAggregator
	notifier tracker.Notifier
	logger   *zap.Logger

	// callTimeout bounds each outbound provider call
	callTimeout time.Duration
	// bulkRate paces sequential bulk pushes, in pushes per second
	bulkRate int

	wg sync.WaitGroup
}

// NewDispatcher creates a sync dispatcher
func NewDispatcher(
	registry tracker.Registry,
	configs tracker.ConfigRepository,
	items feedback.Repository,
	revenue billing.RevenueAggregator,
	notifier tracker.Notifier,
	callTimeout time.Duration,
	bulkRate int,
	logger *zap.Logger,
) *Dispatcher {
	if callTimeout < 10*time.Second || callTimeout > 30*time.Second {
		callTimeout = 15 * time.Second
	}
	if bulkRate <= 0 {
		bulkRate = 2
	}
	return &Dispatcher{
		registry:    registry,
		configs:     configs,
		items:       items,
		revenue:     revenue,
		notifier:    notifier,
		callTimeout: callTimeout,
		bulkRate:    bulkRate,
		logger:      logger,
	}
}

// PushResult describes a successful push
type PushResult struct {
	Provider   tracker.Code `json:"provider"`
	URL        string       `json:"url"`
	ExternalID string       `json:"external_id"`
	HumanID    string       `json:"human_id,omitempty"`
}

// BulkItemResult describes one item inside a bulk push
type BulkItemResult struct {
	FeedbackID uuid.UUID   `json:"feedback_id"`
	Result     *PushResult `json:"result,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// BulkResult is the outcome of a bulk push
type BulkResult struct {
	Created []BulkItemResult `json:"created"`
	Failed  []BulkItemResult `json:"failed"`
}

// Push creates a work item on one tracker for one feedback item and
// records the resulting link. A second push for the same provider fails
// with feedback.ErrAlreadyLinked and performs no outbound call.
func (d *Dispatcher) Push(ctx context.Context, projectID, feedbackID uuid.UUID, provider tracker.Code, extraLabels []string) (*PushResult, error) {
	cfg, adapter, err := d.activeProvider(ctx, projectID, provider)
	if err != nil {
		return nil, err
	}
	return d.pushOne(ctx, cfg, adapter, feedbackID, extraLabels)
}

// BulkPush pushes many feedback items to one tracker sequentially.
// The configuration gate fails the whole call; individual item failures
// are isolated and reported without aborting the rest. Pushes are paced
// against provider rate limits.
func (d *Dispatcher) BulkPush(ctx context.Context, projectID uuid.UUID, provider tracker.Code, feedbackIDs []uuid.UUID, extraLabels []string) (*BulkResult, error) {
	cfg, adapter, err := d.activeProvider(ctx, projectID, provider)
	if err != nil {
		return nil, err
	}

	limiter := ratelimit.New(d.bulkRate)
	result := &BulkResult{
		Created: make([]BulkItemResult, 0, len(feedbackIDs)),
		Failed:  make([]BulkItemResult, 0),
	}

	for _, id := range feedbackIDs {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		limiter.Take()

		ref, err := d.pushOne(ctx, cfg, adapter, id, extraLabels)
		if err != nil {
			result.Failed = append(result.Failed, BulkItemResult{FeedbackID: id, Error: err.Error()})
			d.logger.Warn("bulk push item failed",
				zap.String("provider", provider.String()),
				zap.String("feedback_id", id.String()),
				zap.Error(err),
			)
			continue
		}
		result.Created = append(result.Created, BulkItemResult{FeedbackID: id, Result: ref})
	}

	return result, nil
}

// pushOne runs the shared push pipeline: load, idempotency check,
// revenue enrichment, label composition, provider call, link persist.
func (d *Dispatcher) pushOne(ctx context.Context, cfg *tracker.IntegrationConfig, adapter tracker.Provider, feedbackID uuid.UUID, extraLabels []string) (*PushResult, error) {
	item, err := d.items.FindByIDForProject(ctx, cfg.ProjectID, feedbackID)
	if err != nil {
		return nil, err
	}
	if _, linked := item.Link(cfg.Provider.String()); linked {
		return nil, feedback.ErrAlreadyLinked
	}

	workItem := tracker.WorkItem{
		Title:       item.Title,
		Description: item.Description,
		Category:    item.Category,
		Votes:       item.VoteCount,
		Revenue:     d.lookupRevenue(ctx, cfg.ProjectID, feedbackID),
		ProjectName: cfg.ProjectName,
	}
	labels := tracker.ComposeLabels(cfg.DefaultLabels, extraLabels, item.Category)

	callCtx, cancel := context.WithTimeout(ctx, d.callTimeout)
	defer cancel()

	ref, err := adapter.CreateWorkItem(callCtx, cfg, workItem, labels)
	if err != nil {
		return nil, err
	}

	link := feedback.TrackerLink{URL: ref.URL, ExternalID: ref.ExternalID}
	if err := d.items.SetTrackerLink(ctx, cfg.ProjectID, feedbackID, cfg.Provider.String(), link); err != nil {
		if errors.Is(err, feedback.ErrAlreadyLinked) {
			// A concurrent push won the race; the work item created here
			// is orphaned on the tracker side.
			d.logger.Warn("concurrent push detected, dropping duplicate link",
				zap.String("provider", cfg.Provider.String()),
				zap.String("feedback_id", feedbackID.String()),
				zap.String("external_id", ref.ExternalID),
			)
		}
		return nil, err
	}

	d.logger.Info("feedback pushed to tracker",
		zap.String("provider", cfg.Provider.String()),
		zap.String("feedback_id", feedbackID.String()),
		zap.String("external_id", ref.ExternalID),
	)

	if cfg.VotesFieldID != "" {
		d.seedVotes(cfg, adapter, feedbackID, ref.ExternalID, item.VoteCount)
	}

	return &PushResult{
		Provider:   cfg.Provider,
		URL:        ref.URL,
		ExternalID: ref.ExternalID,
		HumanID:    ref.HumanID,
	}, nil
}

// seedVotes pushes the current vote count into a freshly created work
// item's numeric field. The caller already has its link; failures here
// are recorded and discarded.
func (d *Dispatcher) seedVotes(cfg *tracker.IntegrationConfig, adapter tracker.Provider, feedbackID uuid.UUID, externalID string, votes int) {
	d.bestEffort("vote_seed", func(ctx context.Context) {
		callCtx, cancel := context.WithTimeout(ctx, d.callTimeout)
		defer cancel()
		if err := adapter.UpdateVotes(callCtx, cfg, externalID, votes); err != nil {
			d.reportFanOutError("vote_seed", cfg.Provider, feedbackID, err)
		}
	})
}

// activeProvider loads the config for a provider and gates on the
// configured and active states
func (d *Dispatcher) activeProvider(ctx context.Context, projectID uuid.UUID, provider tracker.Code) (*tracker.IntegrationConfig, tracker.Provider, error) {
	if !provider.IsValid() {
		return nil, nil, tracker.ErrUnknownProvider
	}

	adapter, err := d.registry.Get(provider)
	if err != nil {
		return nil, nil, err
	}

	cfg, err := d.configs.FindByProjectAndProvider(ctx, projectID, provider)
	if err != nil {
		if errors.Is(err, tracker.ErrConfigNotFound) {
			return nil, nil, tracker.ErrNotConfigured
		}
		return nil, nil, err
	}
	if !cfg.IsConfigured() {
		return nil, nil, tracker.ErrNotConfigured
	}
	if !cfg.IsActive {
		return nil, nil, tracker.ErrNotActive
	}
	return cfg, adapter, nil
}

// lookupRevenue asks the billing collaborator for aggregate subscriber
// revenue. Failures and zero totals both yield nil so the body renders
// without a revenue line.
func (d *Dispatcher) lookupRevenue(ctx context.Context, projectID, feedbackID uuid.UUID) *decimal.Decimal {
	if d.revenue == nil {
		return nil
	}
	total, err := d.revenue.TotalRevenue(ctx, projectID, feedbackID)
	if err != nil {
		d.logger.Warn("revenue lookup failed",
			zap.String("feedback_id", feedbackID.String()),
			zap.Error(err),
		)
		return nil
	}
	if total.IsZero() {
		return nil
	}
	return &total
}

// ---------------------------------------------------------------------------
// Event fan-out
// ---------------------------------------------------------------------------

// OnFeedbackCreated announces a new feedback item to the Slack notifier
// when one is configured and active. Best-effort.
func (d *Dispatcher) OnFeedbackCreated(ctx context.Context, projectID, feedbackID uuid.UUID) {
	d.bestEffort("feedback_created", func(ctx context.Context) {
		if d.notifier == nil {
			return
		}
		cfg, err := d.configs.FindByProjectAndProvider(ctx, projectID, tracker.CodeSlack)
		if err != nil || !cfg.Active() {
			return
		}

		item, err := d.items.FindByIDForProject(ctx, projectID, feedbackID)
		if err != nil {
			d.reportFanOutError("feedback_created", tracker.CodeSlack, feedbackID, err)
			return
		}

		workItem := tracker.WorkItem{
			Title:       item.Title,
			Description: item.Description,
			Category:    item.Category,
			Votes:       item.VoteCount,
			Revenue:     d.lookupRevenue(ctx, projectID, feedbackID),
			ProjectName: cfg.ProjectName,
		}
		if err := d.notifier.NotifyFeedbackCreated(ctx, cfg, workItem); err != nil {
			d.reportFanOutError("feedback_created", tracker.CodeSlack, feedbackID, err)
		}
	})
}

// OnCommentCreated mirrors a new comment to every linked tracker with
// comment sync enabled. Best-effort.
func (d *Dispatcher) OnCommentCreated(ctx context.Context, projectID, feedbackID uuid.UUID, body string, isAdmin bool) {
	d.bestEffort("comment_created", func(ctx context.Context) {
		comment := tracker.Comment{Body: body, IsAdmin: isAdmin}
		d.forEachLinkedTracker(ctx, projectID, feedbackID,
			func(cfg *tracker.IntegrationConfig) bool { return cfg.SyncComments },
			func(callCtx context.Context, cfg *tracker.IntegrationConfig, adapter tracker.Provider, externalID string) error {
				return adapter.CreateComment(callCtx, cfg, externalID, comment)
			},
		)
	})
}

// OnVoteChanged mirrors a new vote count to every linked tracker.
// Providers without a numeric field treat this as a no-op. Best-effort.
func (d *Dispatcher) OnVoteChanged(ctx context.Context, projectID, feedbackID uuid.UUID, newCount int) {
	d.bestEffort("vote_changed", func(ctx context.Context) {
		d.forEachLinkedTracker(ctx, projectID, feedbackID,
			func(cfg *tracker.IntegrationConfig) bool { return true },
			func(callCtx context.Context, cfg *tracker.IntegrationConfig, adapter tracker.Provider, externalID string) error {
				return adapter.UpdateVotes(callCtx, cfg, externalID, newCount)
			},
		)
	})
}

// OnStatusChanged mirrors a status transition to every linked tracker
// with status sync enabled. Best-effort.
func (d *Dispatcher) OnStatusChanged(ctx context.Context, projectID, feedbackID uuid.UUID, newStatus feedback.Status) {
	d.bestEffort("status_changed", func(ctx context.Context) {
		d.forEachLinkedTracker(ctx, projectID, feedbackID,
			func(cfg *tracker.IntegrationConfig) bool { return cfg.SyncStatus },
			func(callCtx context.Context, cfg *tracker.IntegrationConfig, adapter tracker.Provider, externalID string) error {
				return adapter.UpdateStatus(callCtx, cfg, externalID, newStatus)
			},
		)
	})
}

// forEachLinkedTracker runs one provider call against every project
// integration that is active, passes the toggle filter, and holds a link
// for the item. Failures are logged and reported, never returned.
func (d *Dispatcher) forEachLinkedTracker(
	ctx context.Context,
	projectID, feedbackID uuid.UUID,
	include func(*tracker.IntegrationConfig) bool,
	call func(context.Context, *tracker.IntegrationConfig, tracker.Provider, string) error,
) {
	item, err := d.items.FindByIDForProject(ctx, projectID, feedbackID)
	if err != nil {
		d.logger.Warn("fan-out item load failed",
			zap.String("feedback_id", feedbackID.String()),
			zap.Error(err),
		)
		return
	}

	configs, err := d.configs.FindByProject(ctx, projectID)
	if err != nil {
		d.logger.Warn("fan-out config load failed",
			zap.String("project_id", projectID.String()),
			zap.Error(err),
		)
		return
	}

	for i := range configs {
		cfg := &configs[i]
		if !cfg.Provider.IsValid() || !cfg.Active() || !include(cfg) {
			continue
		}
		link, linked := item.Link(cfg.Provider.String())
		if !linked {
			continue
		}
		adapter, err := d.registry.Get(cfg.Provider)
		if err != nil {
			continue
		}

		callCtx, cancel := context.WithTimeout(ctx, d.callTimeout)
		err = call(callCtx, cfg, adapter, link.ExternalID)
		cancel()
		if err != nil {
			d.reportFanOutError("fan_out", cfg.Provider, feedbackID, err)
		}
	}
}

// bestEffort runs fn on a detached context in the background. Panics are
// recovered and reported; the caller is never blocked or failed. The
// overall deadline covers a full fan-out across all providers.
func (d *Dispatcher) bestEffort(operation string, fn func(ctx context.Context)) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.logger.Error("background sync panicked",
					zap.String("operation", operation),
					zap.Any("panic", r),
				)
				sentry.CurrentHub().Recover(r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(len(tracker.Codes())+1)*d.callTimeout)
		defer cancel()
		fn(ctx)
	}()
}

// reportFanOutError logs a fan-out failure and forwards it to Sentry.
// Fan-out never retries; the error trail is the only signal.
func (d *Dispatcher) reportFanOutError(operation string, provider tracker.Code, feedbackID uuid.UUID, err error) {
	d.logger.Warn("tracker fan-out failed",
		zap.String("operation", operation),
		zap.String("provider", provider.String()),
		zap.String("feedback_id", feedbackID.String()),
		zap.Error(err),
	)
	sentry.CaptureException(fmt.Errorf("%s fan-out to %s for %s: %w", operation, provider, feedbackID, err))
}

// Wait blocks until all in-flight background fan-out work has finished.
// Used during graceful shutdown and by tests.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
