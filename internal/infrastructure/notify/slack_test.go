package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearback/backend/internal/domain/tracker"
)

func TestSlackNotifier_NotifyFeedbackCreated(t *testing.T) {
	var got slackMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	rev := decimal.NewFromInt(250)
	cfg := &tracker.IntegrationConfig{Provider: tracker.CodeSlack, Token: server.URL}
	notifier := NewSlackNotifier(server.Client())

	err := notifier.NotifyFeedbackCreated(context.Background(), cfg, tracker.WorkItem{
		Title:    "Dark mode",
		Category: "feature_request",
		Votes:    12,
		Revenue:  &rev,
	})
	require.NoError(t, err)

	assert.Contains(t, got.Text, "Dark mode")
	assert.Contains(t, got.Text, "feature_request")
	assert.Contains(t, got.Text, "Votes: 12")
	assert.Contains(t, got.Text, "$250.00/mo")
}

func TestSlackNotifier_WebhookError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid_payload", http.StatusBadRequest)
	}))
	defer server.Close()

	cfg := &tracker.IntegrationConfig{Provider: tracker.CodeSlack, Token: server.URL}
	notifier := NewSlackNotifier(server.Client())

	err := notifier.NotifyFeedbackCreated(context.Background(), cfg, tracker.WorkItem{Title: "T"})
	require.Error(t, err)

	var provErr *tracker.ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, tracker.CodeSlack, provErr.Provider)
	assert.Equal(t, http.StatusBadRequest, provErr.HTTPStatus)
}
