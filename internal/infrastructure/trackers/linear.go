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

const linearAPIBaseURL = "https://api.linear.app/graphql"

// linearStateTypeMap translates feedback statuses into Linear workflow
// state types. The concrete state id is resolved per team at update time.
var linearStateTypeMap = map[feedback.Status]string{
	feedback.StatusApproved:   "unstarted",
	feedback.StatusInProgress: "started",
	feedback.StatusTestflight: "started",
	feedback.StatusCompleted:  "completed",
	feedback.StatusRejected:   "canceled",
}

// LinearProvider implements the tracker Provider interface for Linear
// issues via the GraphQL API
type LinearProvider struct {
	httpClient *http.Client
	baseURL    string
}

// NewLinearProvider creates a new Linear adapter
func NewLinearProvider(client *http.Client) *LinearProvider {
	return &LinearProvider{
		httpClient: client,
		baseURL:    linearAPIBaseURL,
	}
}

// Code returns the provider code this adapter handles
func (p *LinearProvider) Code() tracker.Code {
	return tracker.CodeLinear
}

// IsConfigured returns true when an api key and target team are present
func (p *LinearProvider) IsConfigured(cfg *tracker.IntegrationConfig) bool {
	return cfg.Token != "" && cfg.ContainerID != ""
}

// CreateWorkItem creates an issue in the configured team. Linear labels are
// referenced by id, not name, so composed labels travel in the description.
func (p *LinearProvider) CreateWorkItem(ctx context.Context, cfg *tracker.IntegrationConfig, item tracker.WorkItem, labels []string) (*tracker.WorkItemRef, error) {
	description := item.MarkdownBody()
	if line := tracker.LabelLine(labels); line != "" {
		description = line + "\n\n" + description
	}

	const query = `mutation ($input: IssueCreateInput!) {
		issueCreate(input: $input) {
			success
			issue { id identifier url }
		}
	}`
	variables := map[string]any{
		"input": map[string]any{
			"teamId":      cfg.ContainerID,
			"title":       item.Title,
			"description": description,
		},
	}

	var result struct {
		IssueCreate struct {
			Success bool `json:"success"`
			Issue   struct {
				ID         string `json:"id"`
				Identifier string `json:"identifier"`
				URL        string `json:"url"`
			} `json:"issue"`
		} `json:"issueCreate"`
	}
	if err := p.query(ctx, cfg, query, variables, &result); err != nil {
		return nil, err
	}
	if !result.IssueCreate.Success || result.IssueCreate.Issue.ID == "" {
		return nil, tracker.NewProviderError(tracker.CodeLinear, 0, "issueCreate did not succeed")
	}

	return &tracker.WorkItemRef{
		URL:        result.IssueCreate.Issue.URL,
		ExternalID: result.IssueCreate.Issue.ID,
		HumanID:    result.IssueCreate.Issue.Identifier,
	}, nil
}

// CreateComment mirrors a feedback comment onto the issue
func (p *LinearProvider) CreateComment(ctx context.Context, cfg *tracker.IntegrationConfig, externalID string, comment tracker.Comment) error {
	const query = `mutation ($input: CommentCreateInput!) {
		commentCreate(input: $input) { success }
	}`
	variables := map[string]any{
		"input": map[string]any{
			"issueId": externalID,
			"body":    comment.CommentBody(),
		},
	}

	var result struct {
		CommentCreate struct {
			Success bool `json:"success"`
		} `json:"commentCreate"`
	}
	if err := p.query(ctx, cfg, query, variables, &result); err != nil {
		return err
	}
	if !result.CommentCreate.Success {
		return tracker.NewProviderError(tracker.CodeLinear, 0, "commentCreate did not succeed")
	}
	return nil
}

// UpdateVotes is a no-op: Linear issues have no free-form numeric field
func (p *LinearProvider) UpdateVotes(ctx context.Context, cfg *tracker.IntegrationConfig, externalID string, votes int) error {
	return nil
}

// UpdateStatus resolves the team's workflow state matching the mapped
// state type and moves the issue there
func (p *LinearProvider) UpdateStatus(ctx context.Context, cfg *tracker.IntegrationConfig, externalID string, status feedback.Status) error {
	stateType, ok := linearStateTypeMap[status]
	if !ok {
		return nil
	}

	stateID, err := p.resolveStateID(ctx, cfg, stateType)
	if err != nil {
		return err
	}

	const query = `mutation ($issueID: String!, $input: IssueUpdateInput!) {
		issueUpdate(id: $issueID, input: $input) { success }
	}`
	variables := map[string]any{
		"issueID": externalID,
		"input":   map[string]any{"stateId": stateID},
	}

	var result struct {
		IssueUpdate struct {
			Success bool `json:"success"`
		} `json:"issueUpdate"`
	}
	if err := p.query(ctx, cfg, query, variables, &result); err != nil {
		return err
	}
	if !result.IssueUpdate.Success {
		return tracker.NewProviderError(tracker.CodeLinear, 0, "issueUpdate did not succeed")
	}
	return nil
}

// resolveStateID finds the first workflow state of the given type in the
// configured team
func (p *LinearProvider) resolveStateID(ctx context.Context, cfg *tracker.IntegrationConfig, stateType string) (string, error) {
	const query = `query ($teamID: ID!, $type: String!) {
		workflowStates(filter: {team: {id: {eq: $teamID}}, type: {eq: $type}}) {
			nodes { id name }
		}
	}`
	variables := map[string]any{"teamID": cfg.ContainerID, "type": stateType}

	var result struct {
		WorkflowStates struct {
			Nodes []struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			} `json:"nodes"`
		} `json:"workflowStates"`
	}
	if err := p.query(ctx, cfg, query, variables, &result); err != nil {
		return "", err
	}
	if len(result.WorkflowStates.Nodes) == 0 {
		return "", tracker.NewProviderError(tracker.CodeLinear, 0, "no workflow state of type "+stateType)
	}
	return result.WorkflowStates.Nodes[0].ID, nil
}

func (p *LinearProvider) query(ctx context.Context, cfg *tracker.IntegrationConfig, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(map[string]any{"query": query, "variables": variables})
	if err != nil {
		return fmt.Errorf("linear: failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("linear: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", cfg.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return tracker.NewProviderError(tracker.CodeLinear, 0, err.Error())
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return tracker.NewProviderError(tracker.CodeLinear, resp.StatusCode, "failed to read response")
	}
	if resp.StatusCode >= 400 {
		return tracker.NewProviderError(tracker.CodeLinear, resp.StatusCode, apiErrorMessage(respBody))
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return tracker.NewProviderError(tracker.CodeLinear, resp.StatusCode, "invalid graphql response")
	}
	if len(envelope.Errors) > 0 {
		return tracker.NewProviderError(tracker.CodeLinear, resp.StatusCode, envelope.Errors[0].Message)
	}

	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return tracker.NewProviderError(tracker.CodeLinear, resp.StatusCode, "invalid graphql data")
		}
	}
	return nil
}

var _ tracker.Provider = (*LinearProvider)(nil)
