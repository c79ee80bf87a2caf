package sync

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hearback/backend/internal/domain/feedback"
	"github.com/hearback/backend/internal/domain/tracker"
)

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

type fakeItemRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*feedback.Item
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{items: make(map[uuid.UUID]*feedback.Item)}
}

func (r *fakeItemRepo) put(item *feedback.Item) { r.items[item.ID] = item }

func (r *fakeItemRepo) Create(ctx context.Context, item *feedback.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.ID] = item
	return nil
}

func (r *fakeItemRepo) FindByIDForProject(ctx context.Context, projectID, id uuid.UUID) (*feedback.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok || item.ProjectID != projectID {
		return nil, feedback.ErrNotFound
	}
	clone := *item
	clone.Links = make(map[string]feedback.TrackerLink, len(item.Links))
	for k, v := range item.Links {
		clone.Links[k] = v
	}
	return &clone, nil
}

func (r *fakeItemRepo) Save(ctx context.Context, item *feedback.Item) error {
	return r.Create(ctx, item)
}

func (r *fakeItemRepo) SetTrackerLink(ctx context.Context, projectID, id uuid.UUID, provider string, link feedback.TrackerLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok || item.ProjectID != projectID {
		return feedback.ErrNotFound
	}
	return item.SetLink(provider, link)
}

func (r *fakeItemRepo) AddComment(ctx context.Context, comment *feedback.Comment) error { return nil }

func (r *fakeItemRepo) AddVote(ctx context.Context, vote *feedback.Vote) (int, error) { return 1, nil }

func (r *fakeItemRepo) RemoveVote(ctx context.Context, feedbackID, voterID uuid.UUID) (int, error) {
	return 0, nil
}

func (r *fakeItemRepo) VoterIDs(ctx context.Context, feedbackID uuid.UUID) ([]uuid.UUID, error) {
	return nil, nil
}

type fakeConfigRepo struct {
	mu      sync.Mutex
	configs map[tracker.Code]*tracker.IntegrationConfig
}

func newFakeConfigRepo(configs ...*tracker.IntegrationConfig) *fakeConfigRepo {
	r := &fakeConfigRepo{configs: make(map[tracker.Code]*tracker.IntegrationConfig)}
	for _, cfg := range configs {
		r.configs[cfg.Provider] = cfg
	}
	return r
}

func (r *fakeConfigRepo) FindByProjectAndProvider(ctx context.Context, projectID uuid.UUID, provider tracker.Code) (*tracker.IntegrationConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cfg, ok := r.configs[provider]
	if !ok || cfg.ProjectID != projectID {
		return nil, tracker.ErrConfigNotFound
	}
	clone := *cfg
	return &clone, nil
}

func (r *fakeConfigRepo) FindByProject(ctx context.Context, projectID uuid.UUID) ([]tracker.IntegrationConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []tracker.IntegrationConfig
	for _, cfg := range r.configs {
		if cfg.ProjectID == projectID {
			out = append(out, *cfg)
		}
	}
	return out, nil
}

func (r *fakeConfigRepo) Save(ctx context.Context, cfg *tracker.IntegrationConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.configs[cfg.Provider] = cfg
	return nil
}

type providerCall struct {
	method     string
	externalID string
	votes      int
	status     feedback.Status
	labels     []string
	item       tracker.WorkItem
}

type fakeProvider struct {
	mu        sync.Mutex
	code      tracker.Code
	calls     []providerCall
	createErr error
	ref       tracker.WorkItemRef
}

func newFakeProvider(code tracker.Code) *fakeProvider {
	return &fakeProvider{
		code: code,
		ref:  tracker.WorkItemRef{URL: "https://tracker.example/1", ExternalID: "ext-1", HumanID: "#1"},
	}
}

func (p *fakeProvider) Code() tracker.Code { return p.code }

func (p *fakeProvider) IsConfigured(cfg *tracker.IntegrationConfig) bool { return cfg.IsConfigured() }

func (p *fakeProvider) CreateWorkItem(ctx context.Context, cfg *tracker.IntegrationConfig, item tracker.WorkItem, labels []string) (*tracker.WorkItemRef, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, providerCall{method: "create", labels: labels, item: item})
	if p.createErr != nil {
		return nil, p.createErr
	}
	ref := p.ref
	return &ref, nil
}

func (p *fakeProvider) CreateComment(ctx context.Context, cfg *tracker.IntegrationConfig, externalID string, comment tracker.Comment) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, providerCall{method: "comment", externalID: externalID})
	return nil
}

func (p *fakeProvider) UpdateVotes(ctx context.Context, cfg *tracker.IntegrationConfig, externalID string, votes int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, providerCall{method: "votes", externalID: externalID, votes: votes})
	return nil
}

func (p *fakeProvider) UpdateStatus(ctx context.Context, cfg *tracker.IntegrationConfig, externalID string, status feedback.Status) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, providerCall{method: "status", externalID: externalID, status: status})
	return nil
}

func (p *fakeProvider) callsByMethod(method string) []providerCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []providerCall
	for _, c := range p.calls {
		if c.method == method {
			out = append(out, c)
		}
	}
	return out
}

type fakeRegistry struct {
	providers map[tracker.Code]tracker.Provider
}

func newFakeRegistry(providers ...tracker.Provider) *fakeRegistry {
	r := &fakeRegistry{providers: make(map[tracker.Code]tracker.Provider)}
	for _, p := range providers {
		r.providers[p.Code()] = p
	}
	return r
}

func (r *fakeRegistry) Get(code tracker.Code) (tracker.Provider, error) {
	p, ok := r.providers[code]
	if !ok {
		return nil, tracker.ErrUnknownProvider
	}
	return p, nil
}

func (r *fakeRegistry) All() []tracker.Provider {
	out := make([]tracker.Provider, 0, len(r.providers))
	for _, p := range r.providers {
		out = append(out, p)
	}
	return out
}

type fakeRevenue struct {
	total decimal.Decimal
	err   error
}

func (f *fakeRevenue) TotalRevenue(ctx context.Context, projectID, feedbackID uuid.UUID) (decimal.Decimal, error) {
	return f.total, f.err
}

type fakeNotifier struct {
	mu    sync.Mutex
	items []tracker.WorkItem
}

func (f *fakeNotifier) NotifyFeedbackCreated(ctx context.Context, cfg *tracker.IntegrationConfig, item tracker.WorkItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, item)
	return nil
}

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

func activeConfig(projectID uuid.UUID, provider tracker.Code) *tracker.IntegrationConfig {
	cfg := tracker.NewIntegrationConfig(projectID, provider)
	cfg.Token = "token"
	cfg.ContainerID = "container"
	if provider == tracker.CodeGitHub {
		cfg.RepoOwner = "acme"
		cfg.RepoName = "app"
	}
	if provider == tracker.CodeTrello {
		cfg.APIKey = "key"
	}
	cfg.IsActive = true
	cfg.SyncStatus = true
	cfg.SyncComments = true
	return cfg
}

func seedItem(t *testing.T, repo *fakeItemRepo, projectID uuid.UUID) *feedback.Item {
	t.Helper()
	item, err := feedback.NewItem(projectID, uuid.New(), "Dark mode", "please", "feature_request")
	require.NoError(t, err)
	item.VoteCount = 5
	repo.put(item)
	return item
}

func newTestDispatcher(registry tracker.Registry, configs tracker.ConfigRepository, items feedback.Repository, revenue *fakeRevenue, notifier tracker.Notifier) *Dispatcher {
	if revenue == nil {
		revenue = &fakeRevenue{total: decimal.Zero}
	}
	return NewDispatcher(registry, configs, items, revenue, notifier, 10*time.Second, 100, zap.NewNop())
}

// ---------------------------------------------------------------------------
// Push
// ---------------------------------------------------------------------------

func TestDispatcher_Push(t *testing.T) {
	projectID := uuid.New()
	provider := newFakeProvider(tracker.CodeClickUp)
	items := newFakeItemRepo()
	item := seedItem(t, items, projectID)

	cfg := activeConfig(projectID, tracker.CodeClickUp)
	cfg.DefaultLabels = []string{"core"}
	cfg.ProjectName = "Acme"

	revenue := &fakeRevenue{total: decimal.NewFromFloat(129.5)}
	d := newTestDispatcher(newFakeRegistry(provider), newFakeConfigRepo(cfg), items, revenue, nil)

	result, err := d.Push(context.Background(), projectID, item.ID, tracker.CodeClickUp, []string{"x"})
	require.NoError(t, err)
	assert.Equal(t, "ext-1", result.ExternalID)
	assert.Equal(t, tracker.CodeClickUp, result.Provider)

	creates := provider.callsByMethod("create")
	require.Len(t, creates, 1)
	assert.Equal(t, []string{"core", "x", "feature_request"}, creates[0].labels)
	assert.Equal(t, 5, creates[0].item.Votes)
	assert.Equal(t, "Acme", creates[0].item.ProjectName)
	require.NotNil(t, creates[0].item.Revenue)
	assert.True(t, creates[0].item.Revenue.Equal(decimal.NewFromFloat(129.5)))

	stored, err := items.FindByIDForProject(context.Background(), projectID, item.ID)
	require.NoError(t, err)
	link, ok := stored.Link(tracker.CodeClickUp.String())
	require.True(t, ok)
	assert.Equal(t, "ext-1", link.ExternalID)
}

func TestDispatcher_Push_SeedsVoteCount(t *testing.T) {
	projectID := uuid.New()
	provider := newFakeProvider(tracker.CodeClickUp)
	items := newFakeItemRepo()
	item := seedItem(t, items, projectID)

	cfg := activeConfig(projectID, tracker.CodeClickUp)
	cfg.VotesFieldID = "vf1"

	d := newTestDispatcher(newFakeRegistry(provider), newFakeConfigRepo(cfg), items, nil, nil)

	_, err := d.Push(context.Background(), projectID, item.ID, tracker.CodeClickUp, nil)
	require.NoError(t, err)
	d.Wait()

	seeds := provider.callsByMethod("votes")
	require.Len(t, seeds, 1)
	assert.Equal(t, "ext-1", seeds[0].externalID)
	assert.Equal(t, 5, seeds[0].votes)
}

func TestDispatcher_Push_NoVoteSeedWithoutFieldID(t *testing.T) {
	projectID := uuid.New()
	provider := newFakeProvider(tracker.CodeClickUp)
	items := newFakeItemRepo()
	item := seedItem(t, items, projectID)

	d := newTestDispatcher(newFakeRegistry(provider), newFakeConfigRepo(activeConfig(projectID, tracker.CodeClickUp)), items, nil, nil)

	_, err := d.Push(context.Background(), projectID, item.ID, tracker.CodeClickUp, nil)
	require.NoError(t, err)
	d.Wait()

	assert.Empty(t, provider.callsByMethod("votes"))
}

func TestDispatcher_Push_AlreadyLinked(t *testing.T) {
	projectID := uuid.New()
	provider := newFakeProvider(tracker.CodeClickUp)
	items := newFakeItemRepo()
	item := seedItem(t, items, projectID)
	require.NoError(t, item.SetLink(tracker.CodeClickUp.String(), feedback.TrackerLink{URL: "u", ExternalID: "old"}))

	d := newTestDispatcher(newFakeRegistry(provider), newFakeConfigRepo(activeConfig(projectID, tracker.CodeClickUp)), items, nil, nil)

	_, err := d.Push(context.Background(), projectID, item.ID, tracker.CodeClickUp, nil)
	assert.ErrorIs(t, err, feedback.ErrAlreadyLinked)
	assert.Empty(t, provider.calls, "no outbound call on an already linked item")
}

func TestDispatcher_Push_ConfigGates(t *testing.T) {
	projectID := uuid.New()
	provider := newFakeProvider(tracker.CodeClickUp)
	items := newFakeItemRepo()
	item := seedItem(t, items, projectID)

	t.Run("missing config", func(t *testing.T) {
		d := newTestDispatcher(newFakeRegistry(provider), newFakeConfigRepo(), items, nil, nil)
		_, err := d.Push(context.Background(), projectID, item.ID, tracker.CodeClickUp, nil)
		assert.ErrorIs(t, err, tracker.ErrNotConfigured)
	})

	t.Run("incomplete config", func(t *testing.T) {
		cfg := activeConfig(projectID, tracker.CodeClickUp)
		cfg.ContainerID = ""
		d := newTestDispatcher(newFakeRegistry(provider), newFakeConfigRepo(cfg), items, nil, nil)
		_, err := d.Push(context.Background(), projectID, item.ID, tracker.CodeClickUp, nil)
		assert.ErrorIs(t, err, tracker.ErrNotConfigured)
	})

	t.Run("inactive config", func(t *testing.T) {
		cfg := activeConfig(projectID, tracker.CodeClickUp)
		cfg.IsActive = false
		d := newTestDispatcher(newFakeRegistry(provider), newFakeConfigRepo(cfg), items, nil, nil)
		_, err := d.Push(context.Background(), projectID, item.ID, tracker.CodeClickUp, nil)
		assert.ErrorIs(t, err, tracker.ErrNotActive)
	})

	t.Run("unknown provider", func(t *testing.T) {
		d := newTestDispatcher(newFakeRegistry(provider), newFakeConfigRepo(), items, nil, nil)
		_, err := d.Push(context.Background(), projectID, item.ID, tracker.Code("JIRA"), nil)
		assert.ErrorIs(t, err, tracker.ErrUnknownProvider)
	})

	assert.Empty(t, provider.calls, "gated pushes must never reach the provider")
}

func TestDispatcher_Push_ZeroRevenueSuppressed(t *testing.T) {
	projectID := uuid.New()
	provider := newFakeProvider(tracker.CodeClickUp)
	items := newFakeItemRepo()
	item := seedItem(t, items, projectID)

	revenue := &fakeRevenue{total: decimal.Zero}
	d := newTestDispatcher(newFakeRegistry(provider), newFakeConfigRepo(activeConfig(projectID, tracker.CodeClickUp)), items, revenue, nil)

	_, err := d.Push(context.Background(), projectID, item.ID, tracker.CodeClickUp, nil)
	require.NoError(t, err)

	creates := provider.callsByMethod("create")
	require.Len(t, creates, 1)
	assert.Nil(t, creates[0].item.Revenue, "zero revenue must not reach the tracker body")
}

func TestDispatcher_Push_RevenueLookupFailureIsNotFatal(t *testing.T) {
	projectID := uuid.New()
	provider := newFakeProvider(tracker.CodeClickUp)
	items := newFakeItemRepo()
	item := seedItem(t, items, projectID)

	revenue := &fakeRevenue{err: errors.New("billing down")}
	d := newTestDispatcher(newFakeRegistry(provider), newFakeConfigRepo(activeConfig(projectID, tracker.CodeClickUp)), items, revenue, nil)

	result, err := d.Push(context.Background(), projectID, item.ID, tracker.CodeClickUp, nil)
	require.NoError(t, err)
	assert.NotNil(t, result)

	creates := provider.callsByMethod("create")
	require.Len(t, creates, 1)
	assert.Nil(t, creates[0].item.Revenue)
}

// ---------------------------------------------------------------------------
// BulkPush
// ---------------------------------------------------------------------------

func TestDispatcher_BulkPush_PartialFailureIsolation(t *testing.T) {
	projectID := uuid.New()
	provider := newFakeProvider(tracker.CodeGitHub)
	items := newFakeItemRepo()

	good := seedItem(t, items, projectID)
	linked := seedItem(t, items, projectID)
	require.NoError(t, linked.SetLink(tracker.CodeGitHub.String(), feedback.TrackerLink{URL: "u", ExternalID: "9"}))
	missing := uuid.New()

	d := newTestDispatcher(newFakeRegistry(provider), newFakeConfigRepo(activeConfig(projectID, tracker.CodeGitHub)), items, nil, nil)

	result, err := d.BulkPush(context.Background(), projectID, tracker.CodeGitHub,
		[]uuid.UUID{good.ID, linked.ID, missing}, nil)
	require.NoError(t, err)

	require.Len(t, result.Created, 1)
	assert.Equal(t, good.ID, result.Created[0].FeedbackID)

	require.Len(t, result.Failed, 2)
	failedIDs := []uuid.UUID{result.Failed[0].FeedbackID, result.Failed[1].FeedbackID}
	assert.ElementsMatch(t, []uuid.UUID{linked.ID, missing}, failedIDs)
}

func TestDispatcher_BulkPush_ConfigGateFailsFast(t *testing.T) {
	projectID := uuid.New()
	provider := newFakeProvider(tracker.CodeGitHub)
	items := newFakeItemRepo()
	item := seedItem(t, items, projectID)

	cfg := activeConfig(projectID, tracker.CodeGitHub)
	cfg.IsActive = false
	d := newTestDispatcher(newFakeRegistry(provider), newFakeConfigRepo(cfg), items, nil, nil)

	_, err := d.BulkPush(context.Background(), projectID, tracker.CodeGitHub, []uuid.UUID{item.ID}, nil)
	assert.ErrorIs(t, err, tracker.ErrNotActive)
	assert.Empty(t, provider.calls)
}

// ---------------------------------------------------------------------------
// Fan-out
// ---------------------------------------------------------------------------

func TestDispatcher_OnVoteChanged_FanOutScope(t *testing.T) {
	projectID := uuid.New()
	clickup := newFakeProvider(tracker.CodeClickUp)
	github := newFakeProvider(tracker.CodeGitHub)
	linear := newFakeProvider(tracker.CodeLinear)
	items := newFakeItemRepo()
	item := seedItem(t, items, projectID)

	// ClickUp linked and active; GitHub active but unlinked; Linear
	// linked but inactive.
	require.NoError(t, item.SetLink(tracker.CodeClickUp.String(), feedback.TrackerLink{URL: "u", ExternalID: "cu-1"}))
	require.NoError(t, item.SetLink(tracker.CodeLinear.String(), feedback.TrackerLink{URL: "u", ExternalID: "lin-1"}))

	inactive := activeConfig(projectID, tracker.CodeLinear)
	inactive.IsActive = false

	configs := newFakeConfigRepo(
		activeConfig(projectID, tracker.CodeClickUp),
		activeConfig(projectID, tracker.CodeGitHub),
		inactive,
	)

	d := newTestDispatcher(newFakeRegistry(clickup, github, linear), configs, items, nil, nil)

	d.OnVoteChanged(context.Background(), projectID, item.ID, 6)
	d.Wait()

	votes := clickup.callsByMethod("votes")
	require.Len(t, votes, 1)
	assert.Equal(t, "cu-1", votes[0].externalID)
	assert.Equal(t, 6, votes[0].votes)

	assert.Empty(t, github.callsByMethod("votes"), "unlinked provider must not be called")
	assert.Empty(t, linear.calls, "inactive provider must not be called")
}

func TestDispatcher_OnCommentCreated_RespectsToggle(t *testing.T) {
	projectID := uuid.New()
	clickup := newFakeProvider(tracker.CodeClickUp)
	items := newFakeItemRepo()
	item := seedItem(t, items, projectID)
	require.NoError(t, item.SetLink(tracker.CodeClickUp.String(), feedback.TrackerLink{URL: "u", ExternalID: "cu-1"}))

	cfg := activeConfig(projectID, tracker.CodeClickUp)
	cfg.SyncComments = false

	d := newTestDispatcher(newFakeRegistry(clickup), newFakeConfigRepo(cfg), items, nil, nil)

	d.OnCommentCreated(context.Background(), projectID, item.ID, "any update?", false)
	d.Wait()

	assert.Empty(t, clickup.callsByMethod("comment"), "comment sync disabled must suppress the call")
}

func TestDispatcher_OnStatusChanged(t *testing.T) {
	projectID := uuid.New()
	clickup := newFakeProvider(tracker.CodeClickUp)
	items := newFakeItemRepo()
	item := seedItem(t, items, projectID)
	require.NoError(t, item.SetLink(tracker.CodeClickUp.String(), feedback.TrackerLink{URL: "u", ExternalID: "cu-1"}))

	d := newTestDispatcher(newFakeRegistry(clickup), newFakeConfigRepo(activeConfig(projectID, tracker.CodeClickUp)), items, nil, nil)

	d.OnStatusChanged(context.Background(), projectID, item.ID, feedback.StatusCompleted)
	d.Wait()

	statuses := clickup.callsByMethod("status")
	require.Len(t, statuses, 1)
	assert.Equal(t, feedback.StatusCompleted, statuses[0].status)
}

func TestDispatcher_OnFeedbackCreated_NotifiesSlack(t *testing.T) {
	projectID := uuid.New()
	items := newFakeItemRepo()
	item := seedItem(t, items, projectID)

	slackCfg := tracker.NewIntegrationConfig(projectID, tracker.CodeSlack)
	slackCfg.Token = "https://hooks.slack.com/services/x"
	slackCfg.IsActive = true

	notifier := &fakeNotifier{}
	d := newTestDispatcher(newFakeRegistry(), newFakeConfigRepo(slackCfg), items, nil, notifier)

	d.OnFeedbackCreated(context.Background(), projectID, item.ID)
	d.Wait()

	require.Len(t, notifier.items, 1)
	assert.Equal(t, "Dark mode", notifier.items[0].Title)
}

func TestDispatcher_OnFeedbackCreated_InactiveSlackSkipped(t *testing.T) {
	projectID := uuid.New()
	items := newFakeItemRepo()
	item := seedItem(t, items, projectID)

	slackCfg := tracker.NewIntegrationConfig(projectID, tracker.CodeSlack)
	slackCfg.Token = "https://hooks.slack.com/services/x"
	slackCfg.IsActive = false

	notifier := &fakeNotifier{}
	d := newTestDispatcher(newFakeRegistry(), newFakeConfigRepo(slackCfg), items, nil, notifier)

	d.OnFeedbackCreated(context.Background(), projectID, item.ID)
	d.Wait()

	assert.Empty(t, notifier.items)
}
