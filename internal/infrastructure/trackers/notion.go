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

const (
	notionAPIBaseURL = "https://api.notion.com/v1"
	notionAPIVersion = "2022-06-28"
)

// NotionProvider implements the tracker Provider interface for Notion
// database pages
type NotionProvider struct {
	httpClient *http.Client
	baseURL    string
}

// NewNotionProvider creates a new Notion adapter
func NewNotionProvider(client *http.Client) *NotionProvider {
	return &NotionProvider{
		httpClient: client,
		baseURL:    notionAPIBaseURL,
	}
}

// Code returns the provider code this adapter handles
func (p *NotionProvider) Code() tracker.Code {
	return tracker.CodeNotion
}

// IsConfigured returns true when a token and target database are present
func (p *NotionProvider) IsConfigured(cfg *tracker.IntegrationConfig) bool {
	return cfg.Token != "" && cfg.ContainerID != ""
}

// CreateWorkItem creates a page in the configured database. The page body
// carries the description as paragraph blocks, labels become multi-select
// tags, and votes land in the configured number property.
func (p *NotionProvider) CreateWorkItem(ctx context.Context, cfg *tracker.IntegrationConfig, item tracker.WorkItem, labels []string) (*tracker.WorkItemRef, error) {
	properties := map[string]any{
		"Name": map[string]any{
			"title": []notionRichText{notionText(item.Title)},
		},
	}
	if len(labels) > 0 {
		tags := make([]map[string]string, 0, len(labels))
		for _, label := range labels {
			tags = append(tags, map[string]string{"name": label})
		}
		properties["Tags"] = map[string]any{"multi_select": tags}
	}
	if cfg.VotesFieldID != "" {
		properties[cfg.VotesFieldID] = map[string]any{"number": item.Votes}
	}
	if cfg.StatusFieldID != "" {
		properties[cfg.StatusFieldID] = map[string]any{
			"select": map[string]string{"name": feedback.StatusPending.DisplayName()},
		}
	}

	payload := map[string]any{
		"parent":     map[string]string{"database_id": cfg.ContainerID},
		"properties": properties,
		"children":   notionParagraphs(item.PlainBody()),
	}

	respBody, err := p.doRequest(ctx, cfg, http.MethodPost, "/pages", payload)
	if err != nil {
		return nil, err
	}

	var page notionPage
	if err := json.Unmarshal(respBody, &page); err != nil {
		return nil, tracker.NewProviderError(tracker.CodeNotion, 0, "invalid page response")
	}

	return &tracker.WorkItemRef{
		URL:        page.URL,
		ExternalID: page.ID,
		HumanID:    page.ID,
	}, nil
}

// CreateComment attaches a comment to the page
func (p *NotionProvider) CreateComment(ctx context.Context, cfg *tracker.IntegrationConfig, externalID string, comment tracker.Comment) error {
	payload := map[string]any{
		"parent":    map[string]string{"page_id": externalID},
		"rich_text": []notionRichText{notionText(comment.CommentBody())},
	}
	_, err := p.doRequest(ctx, cfg, http.MethodPost, "/comments", payload)
	return err
}

// UpdateVotes writes the vote count into the configured number property.
// Without a votes property this is a silent no-op.
func (p *NotionProvider) UpdateVotes(ctx context.Context, cfg *tracker.IntegrationConfig, externalID string, votes int) error {
	if cfg.VotesFieldID == "" {
		return nil
	}
	payload := map[string]any{
		"properties": map[string]any{
			cfg.VotesFieldID: map[string]any{"number": votes},
		},
	}
	_, err := p.doRequest(ctx, cfg, http.MethodPatch, "/pages/"+externalID, payload)
	return err
}

// UpdateStatus writes the status display name into the configured select
// property. Without a status property this is a silent no-op.
func (p *NotionProvider) UpdateStatus(ctx context.Context, cfg *tracker.IntegrationConfig, externalID string, status feedback.Status) error {
	if cfg.StatusFieldID == "" {
		return nil
	}
	payload := map[string]any{
		"properties": map[string]any{
			cfg.StatusFieldID: map[string]any{
				"select": map[string]string{"name": status.DisplayName()},
			},
		},
	}
	_, err := p.doRequest(ctx, cfg, http.MethodPatch, "/pages/"+externalID, payload)
	return err
}

// doRequest performs an authenticated request against the Notion API
func (p *NotionProvider) doRequest(ctx context.Context, cfg *tracker.IntegrationConfig, method, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("notion: failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("notion: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+cfg.Token)
	req.Header.Set("Notion-Version", notionAPIVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, tracker.NewProviderError(tracker.CodeNotion, 0, err.Error())
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, tracker.NewProviderError(tracker.CodeNotion, resp.StatusCode, "failed to read response")
	}

	if resp.StatusCode >= 400 {
		return nil, tracker.NewProviderError(tracker.CodeNotion, resp.StatusCode, apiErrorMessage(respBody))
	}

	return respBody, nil
}

type notionRichText struct {
	Type string `json:"type"`
	Text struct {
		Content string `json:"content"`
	} `json:"text"`
}

func notionText(content string) notionRichText {
	var rt notionRichText
	rt.Type = "text"
	rt.Text.Content = content
	return rt
}

// notionParagraphs converts a plain text body into paragraph blocks,
// one per non-empty line
func notionParagraphs(body string) []map[string]any {
	var blocks []map[string]any
	for _, line := range splitLines(body) {
		if line == "" {
			continue
		}
		blocks = append(blocks, map[string]any{
			"object": "block",
			"type":   "paragraph",
			"paragraph": map[string]any{
				"rich_text": []notionRichText{notionText(line)},
			},
		})
	}
	return blocks
}

type notionPage struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

var _ tracker.Provider = (*NotionProvider)(nil)
