package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hearback/backend/internal/domain/tracker"
	"github.com/hearback/backend/internal/infrastructure/persistence/models"
)

// GormIntegrationConfigRepository implements tracker.ConfigRepository
// using GORM
type GormIntegrationConfigRepository struct {
	db *gorm.DB
}

// NewGormIntegrationConfigRepository creates a new
// GormIntegrationConfigRepository
func NewGormIntegrationConfigRepository(db *gorm.DB) *GormIntegrationConfigRepository {
	return &GormIntegrationConfigRepository{db: db}
}

// FindByProjectAndProvider loads the config for one provider
func (r *GormIntegrationConfigRepository) FindByProjectAndProvider(ctx context.Context, projectID uuid.UUID, provider tracker.Code) (*tracker.IntegrationConfig, error) {
	var model models.IntegrationConfigModel
	if err := r.db.WithContext(ctx).
		First(&model, "project_id = ? AND provider = ?", projectID, provider).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, tracker.ErrConfigNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByProject loads all configs recorded for a project
func (r *GormIntegrationConfigRepository) FindByProject(ctx context.Context, projectID uuid.UUID) ([]tracker.IntegrationConfig, error) {
	var configModels []models.IntegrationConfigModel
	if err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("provider ASC").
		Find(&configModels).Error; err != nil {
		return nil, err
	}

	configs := make([]tracker.IntegrationConfig, len(configModels))
	for i, model := range configModels {
		configs[i] = *model.ToDomain()
	}
	return configs, nil
}

// Save upserts a config record keyed on the project/provider pair
func (r *GormIntegrationConfigRepository) Save(ctx context.Context, cfg *tracker.IntegrationConfig) error {
	model := models.IntegrationConfigModelFromDomain(cfg)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "project_id"}, {Name: "provider"}},
			UpdateAll: true,
		}).
		Create(model).Error
}

// Ensure GormIntegrationConfigRepository implements tracker.ConfigRepository
var _ tracker.ConfigRepository = (*GormIntegrationConfigRepository)(nil)
