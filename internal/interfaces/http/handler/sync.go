package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	syncapp "github.com/hearback/backend/internal/application/sync"
	"github.com/hearback/backend/internal/domain/tracker"
)

// SyncHandler handles explicit push-to-tracker endpoints
type SyncHandler struct {
	BaseHandler
	dispatcher *syncapp.Dispatcher
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(dispatcher *syncapp.Dispatcher) *SyncHandler {
	return &SyncHandler{dispatcher: dispatcher}
}

// RegisterRoutes registers sync routes on the project group
func (h *SyncHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sync := rg.Group("/projects/:projectId/sync")
	{
		sync.POST("/push", h.Push)
		sync.POST("/bulk-push", h.BulkPush)
	}
}

// PushRequest represents a request to push one feedback item to a tracker
type PushRequest struct {
	FeedbackID  uuid.UUID `json:"feedback_id" binding:"required"`
	Provider    string    `json:"provider" binding:"required,trackercode"`
	ExtraLabels []string  `json:"extra_labels" binding:"max=20"`
}

// BulkPushRequest represents a request to push many feedback items
type BulkPushRequest struct {
	FeedbackIDs []uuid.UUID `json:"feedback_ids" binding:"required,min=1,max=100"`
	Provider    string      `json:"provider" binding:"required,trackercode"`
	ExtraLabels []string    `json:"extra_labels" binding:"max=20"`
}

// Push creates a work item on one tracker for one feedback item
func (h *SyncHandler) Push(c *gin.Context) {
	projectID, err := getProjectID(c)
	if err != nil {
		h.BadRequest(c, "Invalid project ID")
		return
	}

	var req PushRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.dispatcher.Push(c.Request.Context(), projectID, req.FeedbackID, tracker.Code(req.Provider), req.ExtraLabels)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// BulkPush pushes many feedback items to one tracker. Partial failures
// are reported per item in the response, not as an HTTP error.
func (h *SyncHandler) BulkPush(c *gin.Context) {
	projectID, err := getProjectID(c)
	if err != nil {
		h.BadRequest(c, "Invalid project ID")
		return
	}

	var req BulkPushRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.dispatcher.BulkPush(c.Request.Context(), projectID, tracker.Code(req.Provider), req.FeedbackIDs, req.ExtraLabels)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
