package tracker

import (
	"context"

	"github.com/google/uuid"
)

// ConfigRepository provides persistence for integration configs
type ConfigRepository interface {
	// FindByProjectAndProvider loads the config for one provider.
	// Returns ErrConfigNotFound when no record exists.
	FindByProjectAndProvider(ctx context.Context, projectID uuid.UUID, provider Code) (*IntegrationConfig, error)

	// FindByProject loads all configs recorded for a project
	FindByProject(ctx context.Context, projectID uuid.UUID) ([]IntegrationConfig, error)

	// Save upserts a config record
	Save(ctx context.Context, cfg *IntegrationConfig) error
}
