package trackers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/hearback/backend/internal/domain/feedback"
	"github.com/hearback/backend/internal/domain/tracker"
)

// githubAPIBaseURL is the production GitHub REST API endpoint
const githubAPIBaseURL = "https://api.github.com"

// GitHubProvider implements the tracker Provider interface for GitHub Issues
type GitHubProvider struct {
	httpClient *http.Client
	baseURL    string
}

// NewGitHubProvider creates a new GitHub adapter
func NewGitHubProvider(client *http.Client) *GitHubProvider {
	return &GitHubProvider{
		httpClient: client,
		baseURL:    githubAPIBaseURL,
	}
}

// Code returns the provider code this adapter handles
func (p *GitHubProvider) Code() tracker.Code {
	return tracker.CodeGitHub
}

// IsConfigured returns true when token, owner and repo are all present
func (p *GitHubProvider) IsConfigured(cfg *tracker.IntegrationConfig) bool {
	return cfg.Token != "" && cfg.RepoOwner != "" && cfg.RepoName != ""
}

// CreateWorkItem opens a GitHub issue mirroring the feedback item.
// The issue number doubles as the external id for follow-up calls.
func (p *GitHubProvider) CreateWorkItem(ctx context.Context, cfg *tracker.IntegrationConfig, item tracker.WorkItem, labels []string) (*tracker.WorkItemRef, error) {
	payload := githubIssueRequest{
		Title:  item.Title,
		Body:   item.MarkdownBody(),
		Labels: labels,
	}

	path := fmt.Sprintf("/repos/%s/%s/issues", cfg.RepoOwner, cfg.RepoName)
	respBody, err := p.doRequest(ctx, cfg, http.MethodPost, path, payload)
	if err != nil {
		return nil, err
	}

	var issue githubIssue
	if err := json.Unmarshal(respBody, &issue); err != nil {
		return nil, tracker.NewProviderError(tracker.CodeGitHub, 0, "invalid issue response")
	}

	return &tracker.WorkItemRef{
		URL:        issue.HTMLURL,
		ExternalID: strconv.FormatInt(issue.Number, 10),
		HumanID:    fmt.Sprintf("#%d", issue.Number),
	}, nil
}

// CreateComment mirrors a feedback comment as an issue comment
func (p *GitHubProvider) CreateComment(ctx context.Context, cfg *tracker.IntegrationConfig, externalID string, comment tracker.Comment) error {
	payload := githubCommentRequest{Body: comment.CommentBody()}
	path := fmt.Sprintf("/repos/%s/%s/issues/%s/comments", cfg.RepoOwner, cfg.RepoName, externalID)
	_, err := p.doRequest(ctx, cfg, http.MethodPost, path, payload)
	return err
}

// UpdateVotes is a no-op: GitHub issues have no free-form numeric field
func (p *GitHubProvider) UpdateVotes(ctx context.Context, cfg *tracker.IntegrationConfig, externalID string, votes int) error {
	return nil
}

// UpdateStatus closes or reopens the issue based on the feedback status
func (p *GitHubProvider) UpdateStatus(ctx context.Context, cfg *tracker.IntegrationConfig, externalID string, status feedback.Status) error {
	state, reason, ok := mapGitHubState(status)
	if !ok {
		return nil
	}

	payload := githubStateRequest{State: state, StateReason: reason}
	path := fmt.Sprintf("/repos/%s/%s/issues/%s", cfg.RepoOwner, cfg.RepoName, externalID)
	_, err := p.doRequest(ctx, cfg, http.MethodPatch, path, payload)
	return err
}

// doRequest performs an authenticated request against the GitHub API
func (p *GitHubProvider) doRequest(ctx context.Context, cfg *tracker.IntegrationConfig, method, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("github: failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("github: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+cfg.Token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, tracker.NewProviderError(tracker.CodeGitHub, 0, err.Error())
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, tracker.NewProviderError(tracker.CodeGitHub, resp.StatusCode, "failed to read response")
	}

	if resp.StatusCode >= 400 {
		return nil, tracker.NewProviderError(tracker.CodeGitHub, resp.StatusCode, apiErrorMessage(respBody))
	}

	return respBody, nil
}

// mapGitHubState maps feedback statuses onto the issue state vocabulary.
// Only terminal statuses close the issue; everything else keeps it open.
func mapGitHubState(status feedback.Status) (state, reason string, ok bool) {
	switch status {
	case feedback.StatusCompleted:
		return "closed", "completed", true
	case feedback.StatusRejected:
		return "closed", "not_planned", true
	case feedback.StatusApproved, feedback.StatusInProgress, feedback.StatusTestflight:
		return "open", "", true
	default:
		return "", "", false
	}
}

type githubIssueRequest struct {
	Title  string   `json:"title"`
	Body   string   `json:"body"`
	Labels []string `json:"labels,omitempty"`
}

type githubCommentRequest struct {
	Body string `json:"body"`
}

type githubStateRequest struct {
	State       string `json:"state"`
	StateReason string `json:"state_reason,omitempty"`
}

type githubIssue struct {
	Number  int64  `json:"number"`
	HTMLURL string `json:"html_url"`
}

// Ensure GitHubProvider implements the Provider interface
var _ tracker.Provider = (*GitHubProvider)(nil)
