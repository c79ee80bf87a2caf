package settings

import (
	"time"

	"github.com/google/uuid"

	"github.com/hearback/backend/internal/domain/tracker"
)

// UpdateIntegrationRequest is a partial settings update. Absent fields
// leave the stored value untouched; an explicit empty string clears it.
type UpdateIntegrationRequest struct {
	Token         *string   `json:"token"`
	APIKey        *string   `json:"api_key"`
	RepoOwner     *string   `json:"repo_owner"`
	RepoName      *string   `json:"repo_name"`
	ContainerID   *string   `json:"container_id"`
	ContainerName *string   `json:"container_name"`
	ProjectName   *string   `json:"project_name"`
	DefaultLabels *[]string `json:"default_labels"`
	VotesFieldID  *string   `json:"votes_field_id"`
	StatusFieldID *string   `json:"status_field_id"`
	SyncStatus    *bool     `json:"sync_status"`
	SyncComments  *bool     `json:"sync_comments"`
	IsActive      *bool     `json:"is_active"`
}

// IntegrationResponse represents one provider integration in API
// responses. Credentials are reported as presence flags, never echoed.
type IntegrationResponse struct {
	ProjectID     uuid.UUID `json:"project_id"`
	Provider      string    `json:"provider"`
	DisplayName   string    `json:"display_name"`
	HasToken      bool      `json:"has_token"`
	HasAPIKey     bool      `json:"has_api_key"`
	RepoOwner     string    `json:"repo_owner,omitempty"`
	RepoName      string    `json:"repo_name,omitempty"`
	ContainerID   string    `json:"container_id,omitempty"`
	ContainerName string    `json:"container_name,omitempty"`
	ProjectName   string    `json:"project_name,omitempty"`
	DefaultLabels []string  `json:"default_labels"`
	VotesFieldID  string    `json:"votes_field_id,omitempty"`
	StatusFieldID string    `json:"status_field_id,omitempty"`
	SyncStatus    bool      `json:"sync_status"`
	SyncComments  bool      `json:"sync_comments"`
	IsActive      bool      `json:"is_active"`
	IsConfigured  bool      `json:"is_configured"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// toPatch converts the request into a domain config patch
func (r UpdateIntegrationRequest) toPatch() tracker.ConfigPatch {
	return tracker.ConfigPatch{
		Token:         r.Token,
		APIKey:        r.APIKey,
		RepoOwner:     r.RepoOwner,
		RepoName:      r.RepoName,
		ContainerID:   r.ContainerID,
		ContainerName: r.ContainerName,
		ProjectName:   r.ProjectName,
		DefaultLabels: r.DefaultLabels,
		VotesFieldID:  r.VotesFieldID,
		StatusFieldID: r.StatusFieldID,
		SyncStatus:    r.SyncStatus,
		SyncComments:  r.SyncComments,
		IsActive:      r.IsActive,
	}
}

// ToIntegrationResponse converts a domain config to its API representation
func ToIntegrationResponse(cfg *tracker.IntegrationConfig) *IntegrationResponse {
	labels := cfg.DefaultLabels
	if labels == nil {
		labels = make([]string, 0)
	}
	return &IntegrationResponse{
		ProjectID:     cfg.ProjectID,
		Provider:      string(cfg.Provider),
		DisplayName:   cfg.Provider.DisplayName(),
		HasToken:      cfg.Token != "",
		HasAPIKey:     cfg.APIKey != "",
		RepoOwner:     cfg.RepoOwner,
		RepoName:      cfg.RepoName,
		ContainerID:   cfg.ContainerID,
		ContainerName: cfg.ContainerName,
		ProjectName:   cfg.ProjectName,
		DefaultLabels: labels,
		VotesFieldID:  cfg.VotesFieldID,
		StatusFieldID: cfg.StatusFieldID,
		SyncStatus:    cfg.SyncStatus,
		SyncComments:  cfg.SyncComments,
		IsActive:      cfg.IsActive,
		IsConfigured:  cfg.IsConfigured(),
		UpdatedAt:     cfg.UpdatedAt,
	}
}
