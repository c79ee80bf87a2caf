package trackers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/hearback/backend/internal/domain/feedback"
	"github.com/hearback/backend/internal/domain/tracker"
)

const clickupAPIBaseURL = "https://api.clickup.com/api/v2"

// clickupStatusMap translates feedback statuses into ClickUp task statuses
var clickupStatusMap = map[feedback.Status]string{
	feedback.StatusApproved:   "to do",
	feedback.StatusInProgress: "in progress",
	feedback.StatusTestflight: "review",
	feedback.StatusCompleted:  "complete",
	feedback.StatusRejected:   "closed",
}

// ClickUpProvider implements the tracker Provider interface for ClickUp tasks
type ClickUpProvider struct {
	httpClient *http.Client
	baseURL    string
}

// NewClickUpProvider creates a new ClickUp adapter
func NewClickUpProvider(client *http.Client) *ClickUpProvider {
	return &ClickUpProvider{
		httpClient: client,
		baseURL:    clickupAPIBaseURL,
	}
}

// Code returns the provider code this adapter handles
func (p *ClickUpProvider) Code() tracker.Code {
	return tracker.CodeClickUp
}

// IsConfigured returns true when a token and target list are present
func (p *ClickUpProvider) IsConfigured(cfg *tracker.IntegrationConfig) bool {
	return cfg.Token != "" && cfg.ContainerID != ""
}

// CreateWorkItem creates a task in the configured list
func (p *ClickUpProvider) CreateWorkItem(ctx context.Context, cfg *tracker.IntegrationConfig, item tracker.WorkItem, labels []string) (*tracker.WorkItemRef, error) {
	payload := clickupTaskRequest{
		Name:                item.Title,
		MarkdownDescription: item.MarkdownBody(),
		Tags:                labels,
	}

	path := fmt.Sprintf("/list/%s/task", cfg.ContainerID)
	respBody, err := p.doRequest(ctx, cfg, http.MethodPost, path, payload)
	if err != nil {
		return nil, err
	}

	var task clickupTask
	if err := json.Unmarshal(respBody, &task); err != nil {
		return nil, tracker.NewProviderError(tracker.CodeClickUp, 0, "invalid task response")
	}

	ref := &tracker.WorkItemRef{
		URL:        task.URL,
		ExternalID: task.ID,
		HumanID:    task.CustomID,
	}
	if ref.HumanID == "" {
		ref.HumanID = task.ID
	}

	// Votes live in a numeric custom field; the dispatcher seeds it
	// through UpdateVotes after the link is persisted.
	return ref, nil
}

// CreateComment mirrors a feedback comment onto the task
func (p *ClickUpProvider) CreateComment(ctx context.Context, cfg *tracker.IntegrationConfig, externalID string, comment tracker.Comment) error {
	payload := clickupCommentRequest{CommentText: comment.CommentBody()}
	path := fmt.Sprintf("/task/%s/comment", externalID)
	_, err := p.doRequest(ctx, cfg, http.MethodPost, path, payload)
	return err
}

// UpdateVotes writes the vote count into the configured custom field.
// Without a votes field id this is a silent no-op.
func (p *ClickUpProvider) UpdateVotes(ctx context.Context, cfg *tracker.IntegrationConfig, externalID string, votes int) error {
	if cfg.VotesFieldID == "" {
		return nil
	}
	payload := clickupFieldRequest{Value: votes}
	path := fmt.Sprintf("/task/%s/field/%s", externalID, cfg.VotesFieldID)
	_, err := p.doRequest(ctx, cfg, http.MethodPost, path, payload)
	return err
}

// UpdateStatus moves the task to the mapped ClickUp status
func (p *ClickUpProvider) UpdateStatus(ctx context.Context, cfg *tracker.IntegrationConfig, externalID string, status feedback.Status) error {
	mapped, ok := clickupStatusMap[status]
	if !ok {
		return nil
	}
	payload := clickupStatusRequest{Status: mapped}
	path := fmt.Sprintf("/task/%s", externalID)
	_, err := p.doRequest(ctx, cfg, http.MethodPut, path, payload)
	return err
}

// doRequest performs an authenticated request against the ClickUp API.
// ClickUp uses the raw token in the Authorization header, no scheme prefix.
func (p *ClickUpProvider) doRequest(ctx context.Context, cfg *tracker.IntegrationConfig, method, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("clickup: failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("clickup: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", cfg.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, tracker.NewProviderError(tracker.CodeClickUp, 0, err.Error())
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, tracker.NewProviderError(tracker.CodeClickUp, resp.StatusCode, "failed to read response")
	}

	if resp.StatusCode >= 400 {
		return nil, tracker.NewProviderError(tracker.CodeClickUp, resp.StatusCode, apiErrorMessage(respBody))
	}

	return respBody, nil
}

type clickupTaskRequest struct {
	Name                string   `json:"name"`
	MarkdownDescription string   `json:"markdown_description,omitempty"`
	Tags                []string `json:"tags,omitempty"`
}

type clickupCommentRequest struct {
	CommentText string `json:"comment_text"`
}

type clickupFieldRequest struct {
	Value int `json:"value"`
}

type clickupStatusRequest struct {
	Status string `json:"status"`
}

type clickupTask struct {
	ID       string `json:"id"`
	CustomID string `json:"custom_id"`
	URL      string `json:"url"`
}

var _ tracker.Provider = (*ClickUpProvider)(nil)
