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

const mondayAPIBaseURL = "https://api.monday.com/v2"

// mondayStatusMap translates feedback statuses into monday.com status labels
var mondayStatusMap = map[feedback.Status]string{
	feedback.StatusApproved:   "Approved",
	feedback.StatusInProgress: "Working on it",
	feedback.StatusTestflight: "In review",
	feedback.StatusCompleted:  "Done",
	feedback.StatusRejected:   "Stuck",
}

// MondayProvider implements the tracker Provider interface for monday.com
// board items via the GraphQL API
type MondayProvider struct {
	httpClient *http.Client
	baseURL    string
}

// NewMondayProvider creates a new monday.com adapter
func NewMondayProvider(client *http.Client) *MondayProvider {
	return &MondayProvider{
		httpClient: client,
		baseURL:    mondayAPIBaseURL,
	}
}

// Code returns the provider code this adapter handles
func (p *MondayProvider) Code() tracker.Code {
	return tracker.CodeMonday
}

// IsConfigured returns true when a token and target board are present
func (p *MondayProvider) IsConfigured(cfg *tracker.IntegrationConfig) bool {
	return cfg.Token != "" && cfg.ContainerID != ""
}

// CreateWorkItem creates an item on the configured board. The body goes in
// as the first update since monday items have no long-form description.
func (p *MondayProvider) CreateWorkItem(ctx context.Context, cfg *tracker.IntegrationConfig, item tracker.WorkItem, labels []string) (*tracker.WorkItemRef, error) {
	columnValues := map[string]any{}
	if cfg.VotesFieldID != "" {
		columnValues[cfg.VotesFieldID] = strconv.Itoa(item.Votes)
	}
	columnJSON, err := json.Marshal(columnValues)
	if err != nil {
		return nil, fmt.Errorf("monday: failed to encode column values: %w", err)
	}

	const query = `mutation ($boardID: ID!, $name: String!, $columns: JSON) {
		create_item(board_id: $boardID, item_name: $name, column_values: $columns) { id }
	}`
	variables := map[string]any{
		"boardID": cfg.ContainerID,
		"name":    item.Title,
		"columns": string(columnJSON),
	}

	var result struct {
		CreateItem struct {
			ID string `json:"id"`
		} `json:"create_item"`
	}
	if err := p.query(ctx, cfg, query, variables, &result); err != nil {
		return nil, err
	}
	if result.CreateItem.ID == "" {
		return nil, tracker.NewProviderError(tracker.CodeMonday, 0, "create_item returned no id")
	}

	itemID := result.CreateItem.ID
	ref := &tracker.WorkItemRef{
		URL:        fmt.Sprintf("https://monday.com/boards/%s/pulses/%s", cfg.ContainerID, itemID),
		ExternalID: itemID,
		HumanID:    itemID,
	}

	body := item.PlainBody()
	if line := tracker.LabelLine(labels); line != "" {
		body += "\n" + line
	}
	if err := p.createUpdate(ctx, cfg, itemID, body); err != nil {
		return nil, err
	}

	return ref, nil
}

// CreateComment mirrors a feedback comment as an item update
func (p *MondayProvider) CreateComment(ctx context.Context, cfg *tracker.IntegrationConfig, externalID string, comment tracker.Comment) error {
	return p.createUpdate(ctx, cfg, externalID, comment.CommentBody())
}

// UpdateVotes writes the vote count into the configured numbers column.
// Without a votes column this is a silent no-op.
func (p *MondayProvider) UpdateVotes(ctx context.Context, cfg *tracker.IntegrationConfig, externalID string, votes int) error {
	if cfg.VotesFieldID == "" {
		return nil
	}
	return p.changeColumnValue(ctx, cfg, externalID, cfg.VotesFieldID, strconv.Itoa(votes))
}

// UpdateStatus writes the mapped label into the configured status column.
// Without a status column this is a silent no-op.
func (p *MondayProvider) UpdateStatus(ctx context.Context, cfg *tracker.IntegrationConfig, externalID string, status feedback.Status) error {
	if cfg.StatusFieldID == "" {
		return nil
	}
	label, ok := mondayStatusMap[status]
	if !ok {
		return nil
	}
	return p.changeColumnValue(ctx, cfg, externalID, cfg.StatusFieldID, label)
}

func (p *MondayProvider) createUpdate(ctx context.Context, cfg *tracker.IntegrationConfig, itemID, body string) error {
	const query = `mutation ($itemID: ID!, $body: String!) {
		create_update(item_id: $itemID, body: $body) { id }
	}`
	variables := map[string]any{"itemID": itemID, "body": body}
	return p.query(ctx, cfg, query, variables, nil)
}

func (p *MondayProvider) changeColumnValue(ctx context.Context, cfg *tracker.IntegrationConfig, itemID, columnID, value string) error {
	const query = `mutation ($boardID: ID!, $itemID: ID!, $columnID: String!, $value: String!) {
		change_simple_column_value(board_id: $boardID, item_id: $itemID, column_id: $columnID, value: $value) { id }
	}`
	variables := map[string]any{
		"boardID":  cfg.ContainerID,
		"itemID":   itemID,
		"columnID": columnID,
		"value":    value,
	}
	return p.query(ctx, cfg, query, variables, nil)
}

// query posts a GraphQL request and decodes data into out when non-nil.
// monday returns 200 with an errors array on failures, so both transport
// and GraphQL level errors are surfaced as provider errors.
func (p *MondayProvider) query(ctx context.Context, cfg *tracker.IntegrationConfig, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(map[string]any{"query": query, "variables": variables})
	if err != nil {
		return fmt.Errorf("monday: failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("monday: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", cfg.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return tracker.NewProviderError(tracker.CodeMonday, 0, err.Error())
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return tracker.NewProviderError(tracker.CodeMonday, resp.StatusCode, "failed to read response")
	}
	if resp.StatusCode >= 400 {
		return tracker.NewProviderError(tracker.CodeMonday, resp.StatusCode, apiErrorMessage(respBody))
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return tracker.NewProviderError(tracker.CodeMonday, resp.StatusCode, "invalid graphql response")
	}
	if len(envelope.Errors) > 0 {
		return tracker.NewProviderError(tracker.CodeMonday, resp.StatusCode, envelope.Errors[0].Message)
	}

	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return tracker.NewProviderError(tracker.CodeMonday, resp.StatusCode, "invalid graphql data")
		}
	}
	return nil
}

var _ tracker.Provider = (*MondayProvider)(nil)
