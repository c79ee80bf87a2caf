// Package notify contains outbound notification adapters: the Slack
// incoming-webhook announcer and the SMTP mailer.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/hearback/backend/internal/domain/tracker"
)

// SlackNotifier posts feedback announcements to a Slack incoming webhook
type SlackNotifier struct {
	httpClient *http.Client
}

// NewSlackNotifier creates a new Slack webhook notifier
func NewSlackNotifier(client *http.Client) *SlackNotifier {
	return &SlackNotifier{httpClient: client}
}

// NotifyFeedbackCreated posts a short announcement with the item title,
// category and vote count. The webhook URL lives in the config token.
func (n *SlackNotifier) NotifyFeedbackCreated(ctx context.Context, cfg *tracker.IntegrationConfig, item tracker.WorkItem) error {
	text := fmt.Sprintf(":speech_balloon: New feedback: *%s*", item.Title)
	if item.Category != "" {
		text += fmt.Sprintf(" (%s)", item.Category)
	}
	if item.Votes > 0 {
		text += fmt.Sprintf("\nVotes: %d", item.Votes)
	}
	if rev := item.FormatRevenue(); rev != "" {
		text += "\nSubscriber revenue: " + rev
	}

	payload, err := json.Marshal(slackMessage{Text: text})
	if err != nil {
		return fmt.Errorf("slack: failed to encode message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.Token, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("slack: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return tracker.NewProviderError(tracker.CodeSlack, 0, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return tracker.NewProviderError(tracker.CodeSlack, resp.StatusCode, string(body))
	}
	return nil
}

type slackMessage struct {
	Text string `json:"text"`
}

var _ tracker.Notifier = (*SlackNotifier)(nil)
