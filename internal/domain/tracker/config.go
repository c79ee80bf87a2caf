package tracker

import (
	"time"

	"github.com/google/uuid"
)

// IntegrationConfig is the per-project, per-provider integration record.
// Credentials are read-only during sync operations; the record mutates
// only through explicit settings updates.
type IntegrationConfig struct {
	ID        uuid.UUID
	ProjectID uuid.UUID
	Provider  Code

	// Token is the provider credential (API token, or the webhook URL for
	// the Slack notifier)
	Token string
	// APIKey is the extra credential Trello requires alongside the token
	APIKey string
	// RepoOwner and RepoName identify the GitHub repository
	RepoOwner string
	RepoName  string
	// ContainerID is the target list/board/database/team identifier
	ContainerID string
	// ContainerName is the human-readable container name for the UI
	ContainerName string
	// ProjectName is the human-readable project name used in work item bodies
	ProjectName string

	// DefaultLabels are applied to every work item pushed to this provider
	DefaultLabels []string
	// VotesFieldID is the numeric field/column/property carrying the vote
	// count. Empty means the provider's vote mirroring is skipped.
	VotesFieldID string
	// StatusFieldID is the status column id for providers that address
	// status by column (monday). Empty means status pushes are skipped
	// for those providers.
	StatusFieldID string

	// SyncStatus mirrors status changes outward when enabled
	SyncStatus bool
	// SyncComments mirrors new comments outward when enabled
	SyncComments bool
	// IsActive is the master toggle; a configured-but-inactive provider
	// must never produce outbound calls
	IsActive bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewIntegrationConfig creates an unconfigured, inactive record for a
// project/provider pair. Projects get one per provider implicitly at
// creation time.
func NewIntegrationConfig(projectID uuid.UUID, provider Code) *IntegrationConfig {
	now := time.Now()
	return &IntegrationConfig{
		ID:            uuid.New(),
		ProjectID:     projectID,
		Provider:      provider,
		DefaultLabels: make([]string, 0),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// IsConfigured returns true when every identifying field the provider
// requires is present. GitHub needs owner+repo+token; Trello needs an API
// key alongside the token; the rest need token+container id.
func (c *IntegrationConfig) IsConfigured() bool {
	switch c.Provider {
	case CodeGitHub:
		return c.Token != "" && c.RepoOwner != "" && c.RepoName != ""
	case CodeTrello:
		return c.Token != "" && c.APIKey != "" && c.ContainerID != ""
	case CodeSlack:
		return c.Token != ""
	default:
		return c.Token != "" && c.ContainerID != ""
	}
}

// Active returns true when the provider may act: configured AND the
// master toggle is on.
func (c *IntegrationConfig) Active() bool {
	return c.IsConfigured() && c.IsActive
}

// ConfigPatch is a partial settings update. Nil fields leave the stored
// value untouched; a pointer to an empty string clears the field.
type ConfigPatch struct {
	Token         *string
	APIKey        *string
	RepoOwner     *string
	RepoName      *string
	ContainerID   *string
	ContainerName *string
	ProjectName   *string
	DefaultLabels *[]string
	VotesFieldID  *string
	StatusFieldID *string
	SyncStatus    *bool
	SyncComments  *bool
	IsActive      *bool
}

// Apply merges a patch into the config
func (c *IntegrationConfig) Apply(patch ConfigPatch) {
	if patch.Token != nil {
		c.Token = *patch.Token
	}
	if patch.APIKey != nil {
		c.APIKey = *patch.APIKey
	}
	if patch.RepoOwner != nil {
		c.RepoOwner = *patch.RepoOwner
	}
	if patch.RepoName != nil {
		c.RepoName = *patch.RepoName
	}
	if patch.ContainerID != nil {
		c.ContainerID = *patch.ContainerID
	}
	if patch.ContainerName != nil {
		c.ContainerName = *patch.ContainerName
	}
	if patch.ProjectName != nil {
		c.ProjectName = *patch.ProjectName
	}
	if patch.DefaultLabels != nil {
		labels := make([]string, len(*patch.DefaultLabels))
		copy(labels, *patch.DefaultLabels)
		c.DefaultLabels = labels
	}
	if patch.VotesFieldID != nil {
		c.VotesFieldID = *patch.VotesFieldID
	}
	if patch.StatusFieldID != nil {
		c.StatusFieldID = *patch.StatusFieldID
	}
	if patch.SyncStatus != nil {
		c.SyncStatus = *patch.SyncStatus
	}
	if patch.SyncComments != nil {
		c.SyncComments = *patch.SyncComments
	}
	if patch.IsActive != nil {
		c.IsActive = *patch.IsActive
	}
	c.UpdatedAt = time.Now()
}
