package persistence

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/hearback/backend/internal/infrastructure/persistence/models"
)

// AutoMigrate creates or updates the schema for every persistence model
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.FeedbackItemModel{},
		&models.FeedbackCommentModel{},
		&models.FeedbackVoteModel{},
		&models.IntegrationConfigModel{},
		&models.SubscriptionModel{},
	); err != nil {
		return fmt.Errorf("auto migration failed: %w", err)
	}
	return nil
}
