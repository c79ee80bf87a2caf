package trackers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearback/backend/internal/domain/feedback"
	"github.com/hearback/backend/internal/domain/tracker"
)

func clickupTestConfig() *tracker.IntegrationConfig {
	return &tracker.IntegrationConfig{
		Provider:     tracker.CodeClickUp,
		Token:        "cu-token",
		ContainerID:  "list1",
		VotesFieldID: "vf1",
	}
}

func TestClickUpProvider_CreateWorkItem(t *testing.T) {
	var paths []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		assert.Equal(t, "cu-token", r.Header.Get("Authorization"))

		switch r.URL.Path {
		case "/list/list1/task":
			_ = json.NewEncoder(w).Encode(map[string]string{
				"id":  "abc123",
				"url": "https://app.clickup.com/t/abc123",
			})
		default:
			// The custom field endpoint is down; creating a task must
			// not touch it, vote seeding is a separate follow-up call.
			http.Error(w, "field update down", http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	provider := NewClickUpProvider(server.Client())
	provider.baseURL = server.URL

	ref, err := provider.CreateWorkItem(context.Background(), clickupTestConfig(), tracker.WorkItem{
		Title: "Dark mode",
		Votes: 7,
	}, []string{"core"})
	require.NoError(t, err)

	assert.Equal(t, []string{"/list/list1/task"}, paths)
	assert.Equal(t, "abc123", ref.ExternalID)
	assert.Equal(t, "https://app.clickup.com/t/abc123", ref.URL)
}

func TestClickUpProvider_UpdateVotes(t *testing.T) {
	var fieldBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/task/abc123/field/vf1", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&fieldBody))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	provider := NewClickUpProvider(server.Client())
	provider.baseURL = server.URL

	require.NoError(t, provider.UpdateVotes(context.Background(), clickupTestConfig(), "abc123", 7))
	assert.Equal(t, float64(7), fieldBody["value"])
}

func TestClickUpProvider_UpdateVotes_WithoutFieldIsNoOp(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no votes field configured, API must not be called")
	}))
	defer server.Close()

	provider := NewClickUpProvider(server.Client())
	provider.baseURL = server.URL

	cfg := clickupTestConfig()
	cfg.VotesFieldID = ""
	assert.NoError(t, provider.UpdateVotes(context.Background(), cfg, "abc123", 9))
}

func TestClickUpProvider_UpdateStatus(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/task/abc123", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	provider := NewClickUpProvider(server.Client())
	provider.baseURL = server.URL

	require.NoError(t, provider.UpdateStatus(context.Background(), clickupTestConfig(), "abc123", feedback.StatusCompleted))
	assert.Equal(t, "complete", gotBody["status"])
}

func TestClickUpProvider_CreateComment(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/task/abc123/comment", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	provider := NewClickUpProvider(server.Client())
	provider.baseURL = server.URL

	err := provider.CreateComment(context.Background(), clickupTestConfig(), "abc123", tracker.Comment{Body: "hi", IsAdmin: true})
	require.NoError(t, err)
	assert.Contains(t, gotBody["comment_text"], "[Admin] hi")
}
