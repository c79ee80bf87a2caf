package trackers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/hearback/backend/internal/domain/feedback"
	"github.com/hearback/backend/internal/domain/tracker"
)

const trelloAPIBaseURL = "https://api.trello.com/1"

// TrelloProvider implements the tracker Provider interface for Trello cards
type TrelloProvider struct {
	httpClient *http.Client
	baseURL    string
}

// NewTrelloProvider creates a new Trello adapter
func NewTrelloProvider(client *http.Client) *TrelloProvider {
	return &TrelloProvider{
		httpClient: client,
		baseURL:    trelloAPIBaseURL,
	}
}

// Code returns the provider code this adapter handles
func (p *TrelloProvider) Code() tracker.Code {
	return tracker.CodeTrello
}

// IsConfigured returns true when api key, token and target list are present
func (p *TrelloProvider) IsConfigured(cfg *tracker.IntegrationConfig) bool {
	return cfg.Token != "" && cfg.APIKey != "" && cfg.ContainerID != ""
}

// CreateWorkItem creates a card in the configured list. Trello labels are
// board-scoped ids rather than names, so composed labels travel in the
// card description.
func (p *TrelloProvider) CreateWorkItem(ctx context.Context, cfg *tracker.IntegrationConfig, item tracker.WorkItem, labels []string) (*tracker.WorkItemRef, error) {
	desc := item.MarkdownBody()
	if line := tracker.LabelLine(labels); line != "" {
		desc = line + "\n\n" + desc
	}

	params := url.Values{}
	params.Set("idList", cfg.ContainerID)
	params.Set("name", item.Title)
	params.Set("desc", desc)

	respBody, err := p.doRequest(ctx, cfg, http.MethodPost, "/cards", params)
	if err != nil {
		return nil, err
	}

	var card trelloCard
	if err := json.Unmarshal(respBody, &card); err != nil {
		return nil, tracker.NewProviderError(tracker.CodeTrello, 0, "invalid card response")
	}

	ref := &tracker.WorkItemRef{
		URL:        card.ShortURL,
		ExternalID: card.ID,
		HumanID:    strconv.FormatInt(card.IDShort, 10),
	}
	if ref.URL == "" {
		ref.URL = card.URL
	}
	return ref, nil
}

// CreateComment mirrors a feedback comment onto the card
func (p *TrelloProvider) CreateComment(ctx context.Context, cfg *tracker.IntegrationConfig, externalID string, comment tracker.Comment) error {
	params := url.Values{}
	params.Set("text", comment.CommentBody())
	_, err := p.doRequest(ctx, cfg, http.MethodPost, fmt.Sprintf("/cards/%s/actions/comments", externalID), params)
	return err
}

// UpdateVotes is a no-op: Trello cards have no free-form numeric field
func (p *TrelloProvider) UpdateVotes(ctx context.Context, cfg *tracker.IntegrationConfig, externalID string, votes int) error {
	return nil
}

// UpdateStatus archives the card on terminal statuses and unarchives it
// otherwise. Trello has no status vocabulary beyond open and archived.
func (p *TrelloProvider) UpdateStatus(ctx context.Context, cfg *tracker.IntegrationConfig, externalID string, status feedback.Status) error {
	params := url.Values{}
	params.Set("closed", strconv.FormatBool(status.IsTerminal()))
	_, err := p.doRequest(ctx, cfg, http.MethodPut, "/cards/"+externalID, params)
	return err
}

// doRequest performs a request against the Trello API. Trello
// authenticates via key and token query parameters.
func (p *TrelloProvider) doRequest(ctx context.Context, cfg *tracker.IntegrationConfig, method, path string, params url.Values) ([]byte, error) {
	params.Set("key", cfg.APIKey)
	params.Set("token", cfg.Token)

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("trello: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, tracker.NewProviderError(tracker.CodeTrello, 0, err.Error())
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, tracker.NewProviderError(tracker.CodeTrello, resp.StatusCode, "failed to read response")
	}

	if resp.StatusCode >= 400 {
		return nil, tracker.NewProviderError(tracker.CodeTrello, resp.StatusCode, apiErrorMessage(respBody))
	}

	return respBody, nil
}

type trelloCard struct {
	ID       string `json:"id"`
	IDShort  int64  `json:"idShort"`
	URL      string `json:"url"`
	ShortURL string `json:"shortUrl"`
}

var _ tracker.Provider = (*TrelloProvider)(nil)
