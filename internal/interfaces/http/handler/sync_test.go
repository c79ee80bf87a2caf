package handler

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearback/backend/internal/domain/feedback"
	"github.com/hearback/backend/internal/domain/tracker"
	"github.com/hearback/backend/internal/interfaces/http/dto"
)

func TestSyncHandler_Push(t *testing.T) {
	env := newTestEnv(t)
	projectID := uuid.New()
	env.activeClickUp(projectID)
	item := env.seedItem(t, projectID)

	path := "/api/v1/projects/" + projectID.String() + "/sync/push"

	w, resp := env.doJSON(t, http.MethodPost, path, map[string]any{
		"feedback_id": item.ID.String(),
		"provider":    "CLICKUP",
	}, nil)

	require.Equal(t, http.StatusCreated, w.Code)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "CLICKUP", data["provider"])
	assert.Equal(t, "ext-1", data["external_id"])

	t.Run("second push conflicts", func(t *testing.T) {
		w, resp := env.doJSON(t, http.MethodPost, path, map[string]any{
			"feedback_id": item.ID.String(),
			"provider":    "CLICKUP",
		}, nil)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, dto.ErrCodeAlreadyLinked, resp.Error.Code)
	})
}

func TestSyncHandler_Push_NotConfigured(t *testing.T) {
	env := newTestEnv(t)
	projectID := uuid.New()
	item := env.seedItem(t, projectID)

	w, resp := env.doJSON(t, http.MethodPost, "/api/v1/projects/"+projectID.String()+"/sync/push", map[string]any{
		"feedback_id": item.ID.String(),
		"provider":    "CLICKUP",
	}, nil)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, dto.ErrCodeNotConfigured, resp.Error.Code)
}

func TestSyncHandler_Push_InactiveIntegration(t *testing.T) {
	env := newTestEnv(t)
	projectID := uuid.New()
	cfg := env.activeClickUp(projectID)
	cfg.IsActive = false
	item := env.seedItem(t, projectID)

	w, resp := env.doJSON(t, http.MethodPost, "/api/v1/projects/"+projectID.String()+"/sync/push", map[string]any{
		"feedback_id": item.ID.String(),
		"provider":    "CLICKUP",
	}, nil)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, dto.ErrCodeNotActive, resp.Error.Code)
}

func TestSyncHandler_Push_InvalidProviderCode(t *testing.T) {
	env := newTestEnv(t)
	projectID := uuid.New()

	// The trackercode binding rejects unknown codes before dispatch
	w, _ := env.doJSON(t, http.MethodPost, "/api/v1/projects/"+projectID.String()+"/sync/push", map[string]any{
		"feedback_id": uuid.New().String(),
		"provider":    "JIRA",
	}, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSyncHandler_Push_ProviderFailure(t *testing.T) {
	env := newTestEnv(t)
	projectID := uuid.New()
	env.activeClickUp(projectID)
	env.provider.createErr = tracker.NewProviderError(tracker.CodeClickUp, http.StatusBadGateway, "upstream down")
	item := env.seedItem(t, projectID)

	w, resp := env.doJSON(t, http.MethodPost, "/api/v1/projects/"+projectID.String()+"/sync/push", map[string]any{
		"feedback_id": item.ID.String(),
		"provider":    "CLICKUP",
	}, nil)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, dto.ErrCodeProvider, resp.Error.Code)
}

func TestSyncHandler_BulkPush(t *testing.T) {
	env := newTestEnv(t)
	projectID := uuid.New()
	env.activeClickUp(projectID)

	good := env.seedItem(t, projectID)
	linked := env.seedItem(t, projectID)
	require.NoError(t, linked.SetLink("CLICKUP", feedback.TrackerLink{URL: "u", ExternalID: "old"}))

	w, resp := env.doJSON(t, http.MethodPost, "/api/v1/projects/"+projectID.String()+"/sync/bulk-push", map[string]any{
		"feedback_ids": []string{good.ID.String(), linked.ID.String()},
		"provider":     "CLICKUP",
	}, nil)

	require.Equal(t, http.StatusOK, w.Code)
	data := resp.Data.(map[string]interface{})
	assert.Len(t, data["created"], 1)
	assert.Len(t, data["failed"], 1)
}

func TestSyncHandler_BulkPush_EmptyIDs(t *testing.T) {
	env := newTestEnv(t)
	projectID := uuid.New()

	w, _ := env.doJSON(t, http.MethodPost, "/api/v1/projects/"+projectID.String()+"/sync/bulk-push", map[string]any{
		"feedback_ids": []string{},
		"provider":     "CLICKUP",
	}, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
