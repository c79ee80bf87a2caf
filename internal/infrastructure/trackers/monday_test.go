package trackers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearback/backend/internal/domain/feedback"
	"github.com/hearback/backend/internal/domain/tracker"
)

func mondayTestConfig() *tracker.IntegrationConfig {
	return &tracker.IntegrationConfig{
		Provider:      tracker.CodeMonday,
		Token:         "mon-token",
		ContainerID:   "board9",
		VotesFieldID:  "numbers_votes",
		StatusFieldID: "status",
	}
}

func TestMondayProvider_CreateWorkItem(t *testing.T) {
	var queries []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "mon-token", r.Header.Get("Authorization"))

		var req struct {
			Query     string         `json:"query"`
			Variables map[string]any `json:"variables"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		queries = append(queries, req.Query)

		switch {
		case strings.Contains(req.Query, "create_item"):
			assert.Equal(t, "board9", req.Variables["boardID"])
			assert.Equal(t, "Dark mode", req.Variables["name"])
			_ = json.NewEncoder(w).Encode(map[string]any{
				"data": map[string]any{"create_item": map[string]string{"id": "555"}},
			})
		case strings.Contains(req.Query, "create_update"):
			assert.Equal(t, "555", req.Variables["itemID"])
			_ = json.NewEncoder(w).Encode(map[string]any{
				"data": map[string]any{"create_update": map[string]string{"id": "u1"}},
			})
		default:
			t.Fatalf("unexpected query %s", req.Query)
		}
	}))
	defer server.Close()

	provider := NewMondayProvider(server.Client())
	provider.baseURL = server.URL

	ref, err := provider.CreateWorkItem(context.Background(), mondayTestConfig(), tracker.WorkItem{
		Title: "Dark mode",
		Votes: 4,
	}, []string{"core"})
	require.NoError(t, err)

	require.Len(t, queries, 2, "item creation then body update")
	assert.Equal(t, "555", ref.ExternalID)
	assert.Equal(t, "https://monday.com/boards/board9/pulses/555", ref.URL)
}

func TestMondayProvider_GraphQLErrorSurfaced(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"errors": []map[string]string{{"message": "board not found"}},
		})
	}))
	defer server.Close()

	provider := NewMondayProvider(server.Client())
	provider.baseURL = server.URL

	_, err := provider.CreateWorkItem(context.Background(), mondayTestConfig(), tracker.WorkItem{Title: "T"}, nil)
	require.Error(t, err)

	var provErr *tracker.ProviderError
	require.True(t, errors.As(err, &provErr))
	assert.Equal(t, tracker.CodeMonday, provErr.Provider)
	assert.Contains(t, provErr.Message, "board not found")
}

func TestMondayProvider_UpdateStatus(t *testing.T) {
	var variables map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Query     string         `json:"query"`
			Variables map[string]any `json:"variables"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Contains(t, req.Query, "change_simple_column_value")
		variables = req.Variables
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"change_simple_column_value": map[string]string{"id": "555"}},
		})
	}))
	defer server.Close()

	provider := NewMondayProvider(server.Client())
	provider.baseURL = server.URL

	require.NoError(t, provider.UpdateStatus(context.Background(), mondayTestConfig(), "555", feedback.StatusCompleted))
	assert.Equal(t, "status", variables["columnID"])
	assert.Equal(t, "Done", variables["value"])
}

func TestMondayProvider_UpdateStatus_WithoutColumnIsNoOp(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no status column configured, API must not be called")
	}))
	defer server.Close()

	provider := NewMondayProvider(server.Client())
	provider.baseURL = server.URL

	cfg := mondayTestConfig()
	cfg.StatusFieldID = ""
	assert.NoError(t, provider.UpdateStatus(context.Background(), cfg, "555", feedback.StatusCompleted))
}
