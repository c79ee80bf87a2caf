package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/hearback/backend/internal/domain/tracker"
)

// IntegrationConfigModel is the persistence model for per-project tracker
// integration settings
type IntegrationConfigModel struct {
	ID        uuid.UUID    `gorm:"type:uuid;primary_key"`
	ProjectID uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_integration_project_provider,priority:1"`
	Provider  tracker.Code `gorm:"type:varchar(20);not null;uniqueIndex:idx_integration_project_provider,priority:2"`

	Token         string `gorm:"type:varchar(500)"`
	APIKey        string `gorm:"type:varchar(500)"`
	RepoOwner     string `gorm:"type:varchar(255)"`
	RepoName      string `gorm:"type:varchar(255)"`
	ContainerID   string `gorm:"type:varchar(255)"`
	ContainerName string `gorm:"type:varchar(255)"`
	ProjectName   string `gorm:"type:varchar(255)"`

	DefaultLabelsJSON string `gorm:"type:text;column:default_labels"`
	VotesFieldID      string `gorm:"type:varchar(100)"`
	StatusFieldID     string `gorm:"type:varchar(100)"`

	SyncStatus   bool `gorm:"not null;default:false"`
	SyncComments bool `gorm:"not null;default:false"`
	IsActive     bool `gorm:"not null;default:false"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (IntegrationConfigModel) TableName() string {
	return "integration_configs"
}

// ToDomain converts the persistence model to a domain IntegrationConfig
func (m *IntegrationConfigModel) ToDomain() *tracker.IntegrationConfig {
	cfg := &tracker.IntegrationConfig{
		ID:            m.ID,
		ProjectID:     m.ProjectID,
		Provider:      m.Provider,
		Token:         m.Token,
		APIKey:        m.APIKey,
		RepoOwner:     m.RepoOwner,
		RepoName:      m.RepoName,
		ContainerID:   m.ContainerID,
		ContainerName: m.ContainerName,
		ProjectName:   m.ProjectName,
		DefaultLabels: make([]string, 0),
		VotesFieldID:  m.VotesFieldID,
		StatusFieldID: m.StatusFieldID,
		SyncStatus:    m.SyncStatus,
		SyncComments:  m.SyncComments,
		IsActive:      m.IsActive,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}

	if m.DefaultLabelsJSON != "" {
		var labels []string
		if err := json.Unmarshal([]byte(m.DefaultLabelsJSON), &labels); err == nil {
			cfg.DefaultLabels = labels
		}
	}

	return cfg
}

// FromDomain populates the persistence model from a domain
// IntegrationConfig
func (m *IntegrationConfigModel) FromDomain(cfg *tracker.IntegrationConfig) {
	m.ID = cfg.ID
	m.ProjectID = cfg.ProjectID
	m.Provider = cfg.Provider
	m.Token = cfg.Token
	m.APIKey = cfg.APIKey
	m.RepoOwner = cfg.RepoOwner
	m.RepoName = cfg.RepoName
	m.ContainerID = cfg.ContainerID
	m.ContainerName = cfg.ContainerName
	m.ProjectName = cfg.ProjectName
	m.VotesFieldID = cfg.VotesFieldID
	m.StatusFieldID = cfg.StatusFieldID
	m.SyncStatus = cfg.SyncStatus
	m.SyncComments = cfg.SyncComments
	m.IsActive = cfg.IsActive
	m.CreatedAt = cfg.CreatedAt
	m.UpdatedAt = cfg.UpdatedAt

	if len(cfg.DefaultLabels) > 0 {
		if jsonBytes, err := json.Marshal(cfg.DefaultLabels); err == nil {
			m.DefaultLabelsJSON = string(jsonBytes)
		}
	} else {
		m.DefaultLabelsJSON = "[]"
	}
}

// IntegrationConfigModelFromDomain creates a new persistence model from a
// domain IntegrationConfig
func IntegrationConfigModelFromDomain(cfg *tracker.IntegrationConfig) *IntegrationConfigModel {
	m := &IntegrationConfigModel{}
	m.FromDomain(cfg)
	return m
}
