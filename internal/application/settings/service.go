package settings

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/hearback/backend/internal/domain/tracker"
)

// Service manages per-project tracker integration settings
type Service struct {
	configs tracker.ConfigRepository
}

// NewService creates a settings service
func NewService(configs tracker.ConfigRepository) *Service {
	return &Service{configs: configs}
}

// Get returns the integration settings for one provider. Providers that
// have never been configured yield a default inactive record without
// persisting anything.
func (s *Service) Get(ctx context.Context, projectID uuid.UUID, provider tracker.Code) (*IntegrationResponse, error) {
	if !knownProvider(provider) {
		return nil, tracker.ErrUnknownProvider
	}

	cfg, err := s.configs.FindByProjectAndProvider(ctx, projectID, provider)
	if err != nil {
		if errors.Is(err, tracker.ErrConfigNotFound) {
			return ToIntegrationResponse(tracker.NewIntegrationConfig(projectID, provider)), nil
		}
		return nil, err
	}
	return ToIntegrationResponse(cfg), nil
}

// List returns the settings for every provider, including the Slack
// notifier, with defaults filled in for providers never configured.
func (s *Service) List(ctx context.Context, projectID uuid.UUID) ([]IntegrationResponse, error) {
	stored, err := s.configs.FindByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	byProvider := make(map[tracker.Code]*tracker.IntegrationConfig, len(stored))
	for i := range stored {
		byProvider[stored[i].Provider] = &stored[i]
	}

	codes := append(tracker.Codes(), tracker.CodeSlack)
	out := make([]IntegrationResponse, 0, len(codes))
	for _, code := range codes {
		cfg, ok := byProvider[code]
		if !ok {
			cfg = tracker.NewIntegrationConfig(projectID, code)
		}
		out = append(out, *ToIntegrationResponse(cfg))
	}
	return out, nil
}

// Update merges a partial settings patch into a provider's integration
// record, creating the record on first use.
func (s *Service) Update(ctx context.Context, projectID uuid.UUID, provider tracker.Code, req UpdateIntegrationRequest) (*IntegrationResponse, error) {
	if !knownProvider(provider) {
		return nil, tracker.ErrUnknownProvider
	}

	cfg, err := s.configs.FindByProjectAndProvider(ctx, projectID, provider)
	if err != nil {
		if !errors.Is(err, tracker.ErrConfigNotFound) {
			return nil, err
		}
		cfg = tracker.NewIntegrationConfig(projectID, provider)
	}

	cfg.Apply(req.toPatch())
	if err := s.configs.Save(ctx, cfg); err != nil {
		return nil, err
	}
	return ToIntegrationResponse(cfg), nil
}

// knownProvider accepts the work item trackers plus the Slack notifier
func knownProvider(code tracker.Code) bool {
	return code.IsValid() || code == tracker.CodeSlack
}
