package tracker

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/hearback/backend/internal/domain/feedback"
)

var (
	// Engine errors surfaced to the push caller
	ErrNotConfigured   = errors.New("tracker: integration not configured")
	ErrNotActive       = errors.New("tracker: integration not active")
	ErrUnknownProvider = errors.New("tracker: unknown provider")
	ErrConfigNotFound  = errors.New("tracker: integration config not found")
	ErrInvalidPatch    = errors.New("tracker: invalid settings patch")
)

// ProviderError carries a failure returned by a third-party tracker API.
// It is never retried by the adapter; retry policy belongs to the caller.
type ProviderError struct {
	Provider   Code
	HTTPStatus int
	Message    string
}

// Error implements the error interface
func (e *ProviderError) Error() string {
	if e.HTTPStatus > 0 {
		return fmt.Sprintf("%s: HTTP %d: %s", e.Provider, e.HTTPStatus, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

// NewProviderError creates a ProviderError for a provider response
func NewProviderError(provider Code, httpStatus int, message string) *ProviderError {
	return &ProviderError{Provider: provider, HTTPStatus: httpStatus, Message: message}
}

// ---------------------------------------------------------------------------
// Code
// ---------------------------------------------------------------------------

// Code identifies an external tracker provider
type Code string

const (
	// CodeGitHub represents GitHub Issues
	CodeGitHub Code = "GITHUB"
	// CodeClickUp represents ClickUp lists
	CodeClickUp Code = "CLICKUP"
	// CodeNotion represents Notion databases
	CodeNotion Code = "NOTION"
	// CodeMonday represents monday.com boards
	CodeMonday Code = "MONDAY"
	// CodeLinear represents Linear teams
	CodeLinear Code = "LINEAR"
	// CodeTrello represents Trello lists
	CodeTrello Code = "TRELLO"
	// CodeSlack represents the Slack webhook notifier. It is not a work
	// item tracker; it shares the integration config record only.
	CodeSlack Code = "SLACK"
)

// Codes lists the six work item tracker providers, excluding the notifier
func Codes() []Code {
	return []Code{CodeGitHub, CodeClickUp, CodeNotion, CodeMonday, CodeLinear, CodeTrello}
}

// IsValid returns true if the code names a work item tracker
func (c Code) IsValid() bool {
	switch c {
	case CodeGitHub, CodeClickUp, CodeNotion, CodeMonday, CodeLinear, CodeTrello:
		return true
	default:
		return false
	}
}

// String returns the string representation of Code
func (c Code) String() string {
	return string(c)
}

// DisplayName returns a human-readable name for the provider
func (c Code) DisplayName() string {
	switch c {
	case CodeGitHub:
		return "GitHub"
	case CodeClickUp:
		return "ClickUp"
	case CodeNotion:
		return "Notion"
	case CodeMonday:
		return "Monday"
	case CodeLinear:
		return "Linear"
	case CodeTrello:
		return "Trello"
	case CodeSlack:
		return "Slack"
	default:
		return string(c)
	}
}

// ---------------------------------------------------------------------------
// Value objects
// ---------------------------------------------------------------------------

// WorkItemRef identifies a work item created on an external tracker
type WorkItemRef struct {
	// URL is the browsable location of the work item
	URL string
	// ExternalID is the tracker-native identifier for follow-up calls
	ExternalID string
	// HumanID is an optional human-readable identifier such as a GitHub
	// issue number or a Linear identifier (e.g. "HB-42")
	HumanID string
}

// WorkItem is the canonical description of a feedback item handed to a
// provider for work item creation. Revenue is nil when no revenue data is
// available; a zero aggregate is treated as "no data", not "free user".
type WorkItem struct {
	Title       string
	Description string
	Category    string
	Votes       int
	Revenue     *decimal.Decimal
	ProjectName string
}

// Comment is a feedback comment to mirror onto a linked work item
type Comment struct {
	Body    string
	IsAdmin bool
}

// ---------------------------------------------------------------------------
// Provider port interface
// ---------------------------------------------------------------------------

// Provider is the port interface every tracker adapter implements. It is
// defined in the domain layer; concrete HTTP/GraphQL clients live in the
// infrastructure layer.
type Provider interface {
	// Code returns the provider this adapter handles
	Code() Code

	// IsConfigured returns true when the config carries every identifying
	// field this provider requires to make calls
	IsConfigured(cfg *IntegrationConfig) bool

	// CreateWorkItem creates one work item mirroring a feedback item.
	// Labels are the already-composed tag set (defaults + extras +
	// category); providers without native labels fold them into the body.
	CreateWorkItem(ctx context.Context, cfg *IntegrationConfig, item WorkItem, labels []string) (*WorkItemRef, error)

	// CreateComment mirrors a feedback comment onto the linked work item
	CreateComment(ctx context.Context, cfg *IntegrationConfig, externalID string, comment Comment) error

	// UpdateVotes pushes the current vote count into the provider's
	// numeric field. Providers without a numeric field, or configs with
	// no field id, skip silently and return nil.
	UpdateVotes(ctx context.Context, cfg *IntegrationConfig, externalID string, votes int) error

	// UpdateStatus maps the feedback status onto the provider's native
	// status vocabulary. Unmapped statuses are skipped, not errors.
	UpdateStatus(ctx context.Context, cfg *IntegrationConfig, externalID string, status feedback.Status) error
}

// Registry provides access to the registered tracker adapters
type Registry interface {
	// Get returns the adapter for a provider code
	Get(code Code) (Provider, error)

	// All returns every registered adapter
	All() []Provider
}
