package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	feedbackapp "github.com/hearback/backend/internal/application/feedback"
	settingsapp "github.com/hearback/backend/internal/application/settings"
	syncapp "github.com/hearback/backend/internal/application/sync"
	"github.com/hearback/backend/internal/domain/feedback"
	"github.com/hearback/backend/internal/domain/tracker"
	"github.com/hearback/backend/internal/interfaces/http/dto"
	"github.com/hearback/backend/internal/interfaces/http/middleware"
)

// In-memory repository stubs shared by the handler tests

type stubFeedbackRepo struct {
	items map[uuid.UUID]*feedback.Item
	votes map[uuid.UUID]map[uuid.UUID]bool
}

func newStubFeedbackRepo() *stubFeedbackRepo {
	return &stubFeedbackRepo{
		items: make(map[uuid.UUID]*feedback.Item),
		votes: make(map[uuid.UUID]map[uuid.UUID]bool),
	}
}

func (r *stubFeedbackRepo) Create(ctx context.Context, item *feedback.Item) error {
	r.items[item.ID] = item
	return nil
}

func (r *stubFeedbackRepo) FindByIDForProject(ctx context.Context, projectID, id uuid.UUID) (*feedback.Item, error) {
	item, ok := r.items[id]
	if !ok || item.ProjectID != projectID {
		return nil, feedback.ErrNotFound
	}
	return item, nil
}

func (r *stubFeedbackRepo) Save(ctx context.Context, item *feedback.Item) error {
	r.items[item.ID] = item
	return nil
}

func (r *stubFeedbackRepo) SetTrackerLink(ctx context.Context, projectID, id uuid.UUID, provider string, link feedback.TrackerLink) error {
	item, ok := r.items[id]
	if !ok || item.ProjectID != projectID {
		return feedback.ErrNotFound
	}
	return item.SetLink(provider, link)
}

func (r *stubFeedbackRepo) AddComment(ctx context.Context, comment *feedback.Comment) error {
	return nil
}

func (r *stubFeedbackRepo) AddVote(ctx context.Context, vote *feedback.Vote) (int, error) {
	voters := r.votes[vote.FeedbackID]
	if voters == nil {
		voters = make(map[uuid.UUID]bool)
		r.votes[vote.FeedbackID] = voters
	}
	voters[vote.VoterID] = true
	item := r.items[vote.FeedbackID]
	item.VoteCount++
	return item.VoteCount, nil
}

func (r *stubFeedbackRepo) RemoveVote(ctx context.Context, feedbackID, voterID uuid.UUID) (int, error) {
	voters := r.votes[feedbackID]
	if !voters[voterID] {
		return 0, feedback.ErrNotFound
	}
	delete(voters, voterID)
	item := r.items[feedbackID]
	item.VoteCount--
	return item.VoteCount, nil
}

func (r *stubFeedbackRepo) VoterIDs(ctx context.Context, feedbackID uuid.UUID) ([]uuid.UUID, error) {
	return nil, nil
}

type stubConfigRepo struct {
	configs map[tracker.Code]*tracker.IntegrationConfig
}

func newStubConfigRepo() *stubConfigRepo {
	return &stubConfigRepo{configs: make(map[tracker.Code]*tracker.IntegrationConfig)}
}

func (r *stubConfigRepo) FindByProjectAndProvider(ctx context.Context, projectID uuid.UUID, provider tracker.Code) (*tracker.IntegrationConfig, error) {
	cfg, ok := r.configs[provider]
	if !ok || cfg.ProjectID != projectID {
		return nil, tracker.ErrConfigNotFound
	}
	return cfg, nil
}

func (r *stubConfigRepo) FindByProject(ctx context.Context, projectID uuid.UUID) ([]tracker.IntegrationConfig, error) {
	var out []tracker.IntegrationConfig
	for _, cfg := range r.configs {
		if cfg.ProjectID == projectID {
			out = append(out, *cfg)
		}
	}
	return out, nil
}

func (r *stubConfigRepo) Save(ctx context.Context, cfg *tracker.IntegrationConfig) error {
	r.configs[cfg.Provider] = cfg
	return nil
}

type stubProvider struct {
	code      tracker.Code
	createErr error
}

func (p *stubProvider) Code() tracker.Code { return p.code }

func (p *stubProvider) IsConfigured(cfg *tracker.IntegrationConfig) bool { return cfg.IsConfigured() }

func (p *stubProvider) CreateWorkItem(ctx context.Context, cfg *tracker.IntegrationConfig, item tracker.WorkItem, labels []string) (*tracker.WorkItemRef, error) {
	if p.createErr != nil {
		return nil, p.createErr
	}
	return &tracker.WorkItemRef{URL: "https://tracker.example/1", ExternalID: "ext-1", HumanID: "#1"}, nil
}

func (p *stubProvider) CreateComment(ctx context.Context, cfg *tracker.IntegrationConfig, externalID string, comment tracker.Comment) error {
	return nil
}

func (p *stubProvider) UpdateVotes(ctx context.Context, cfg *tracker.IntegrationConfig, externalID string, votes int) error {
	return nil
}

func (p *stubProvider) UpdateStatus(ctx context.Context, cfg *tracker.IntegrationConfig, externalID string, status feedback.Status) error {
	return nil
}

type stubRegistry struct {
	providers map[tracker.Code]tracker.Provider
}

func (r *stubRegistry) Get(code tracker.Code) (tracker.Provider, error) {
	p, ok := r.providers[code]
	if !ok {
		return nil, tracker.ErrUnknownProvider
	}
	return p, nil
}

func (r *stubRegistry) All() []tracker.Provider {
	out := make([]tracker.Provider, 0, len(r.providers))
	for _, p := range r.providers {
		out = append(out, p)
	}
	return out
}

// testEnv bundles the stubs and wired handlers behind a test engine
type testEnv struct {
	engine   *gin.Engine
	repo     *stubFeedbackRepo
	configs  *stubConfigRepo
	provider *stubProvider
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()

	repo := newStubFeedbackRepo()
	configs := newStubConfigRepo()
	provider := &stubProvider{code: tracker.CodeClickUp}
	registry := &stubRegistry{providers: map[tracker.Code]tracker.Provider{tracker.CodeClickUp: provider}}

	log := zap.NewNop()
	dispatcher := syncapp.NewDispatcher(registry, configs, repo, nil, nil, 10*time.Second, 100, log)
	feedbackSvc := feedbackapp.NewService(repo, nil, nil, log)
	settingsSvc := settingsapp.NewService(configs)

	engine := gin.New()
	api := engine.Group("/api/v1")
	NewFeedbackHandler(feedbackSvc).RegisterRoutes(api)
	NewSettingsHandler(settingsSvc).RegisterRoutes(api)
	NewSyncHandler(dispatcher).RegisterRoutes(api)

	return &testEnv{engine: engine, repo: repo, configs: configs, provider: provider}
}

// activeClickUp stores an active ClickUp config for the project
func (e *testEnv) activeClickUp(projectID uuid.UUID) *tracker.IntegrationConfig {
	cfg := tracker.NewIntegrationConfig(projectID, tracker.CodeClickUp)
	cfg.Token = "token"
	cfg.ContainerID = "list-1"
	cfg.IsActive = true
	e.configs.configs[tracker.CodeClickUp] = cfg
	return cfg
}

// seedItem stores a feedback item directly in the stub repo
func (e *testEnv) seedItem(t *testing.T, projectID uuid.UUID) *feedback.Item {
	t.Helper()
	item, err := feedback.NewItem(projectID, uuid.New(), "Dark mode", "please", "feature_request")
	require.NoError(t, err)
	e.repo.items[item.ID] = item
	return item
}

// doJSON performs a JSON request against the test engine
func (e *testEnv) doJSON(t *testing.T, method, path string, body any, headers map[string]string) (*httptest.ResponseRecorder, dto.Response) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)

	var resp dto.Response
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}
