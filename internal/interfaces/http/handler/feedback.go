package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	feedbackapp "github.com/hearback/backend/internal/application/feedback"
)

// FeedbackHandler handles feedback-related API endpoints
type FeedbackHandler struct {
	BaseHandler
	service *feedbackapp.Service
}

// NewFeedbackHandler creates a new FeedbackHandler
func NewFeedbackHandler(service *feedbackapp.Service) *FeedbackHandler {
	return &FeedbackHandler{service: service}
}

// RegisterRoutes registers feedback routes on the project group
func (h *FeedbackHandler) RegisterRoutes(rg *gin.RouterGroup) {
	feedback := rg.Group("/projects/:projectId/feedback")
	{
		feedback.POST("", h.Create)
		feedback.GET("/:id", h.Get)
		feedback.POST("/:id/comments", h.AddComment)
		feedback.POST("/:id/votes", h.Vote)
		feedback.DELETE("/:id/votes", h.Unvote)
		feedback.PATCH("/:id/status", h.ChangeStatus)
	}
}

// Create submits a new feedback item
func (h *FeedbackHandler) Create(c *gin.Context) {
	projectID, err := getProjectID(c)
	if err != nil {
		h.BadRequest(c, "Invalid project ID")
		return
	}

	var req feedbackapp.CreateFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.Create(c.Request.Context(), projectID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get retrieves one feedback item
func (h *FeedbackHandler) Get(c *gin.Context) {
	projectID, feedbackID, ok := h.pathIDs(c)
	if !ok {
		return
	}

	resp, err := h.service.GetByID(c.Request.Context(), projectID, feedbackID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// AddComment adds a comment to a feedback item
func (h *FeedbackHandler) AddComment(c *gin.Context) {
	projectID, feedbackID, ok := h.pathIDs(c)
	if !ok {
		return
	}

	var req feedbackapp.AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.AddComment(c.Request.Context(), projectID, feedbackID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Vote casts the caller's vote on a feedback item
func (h *FeedbackHandler) Vote(c *gin.Context) {
	projectID, feedbackID, ok := h.pathIDs(c)
	if !ok {
		return
	}
	voterID, err := getActorID(c)
	if err != nil {
		h.BadRequest(c, "Invalid or missing user identity")
		return
	}

	resp, err := h.service.Vote(c.Request.Context(), projectID, feedbackID, voterID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Unvote retracts the caller's vote
func (h *FeedbackHandler) Unvote(c *gin.Context) {
	projectID, feedbackID, ok := h.pathIDs(c)
	if !ok {
		return
	}
	voterID, err := getActorID(c)
	if err != nil {
		h.BadRequest(c, "Invalid or missing user identity")
		return
	}

	resp, err := h.service.Unvote(c.Request.Context(), projectID, feedbackID, voterID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ChangeStatus moves a feedback item through the status pipeline
func (h *FeedbackHandler) ChangeStatus(c *gin.Context) {
	projectID, feedbackID, ok := h.pathIDs(c)
	if !ok {
		return
	}

	var req feedbackapp.ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.ChangeStatus(c.Request.Context(), projectID, feedbackID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// pathIDs parses the project and feedback IDs from the route
func (h *FeedbackHandler) pathIDs(c *gin.Context) (projectID, feedbackID uuid.UUID, ok bool) {
	projectID, err := getProjectID(c)
	if err != nil {
		h.BadRequest(c, "Invalid project ID")
		return uuid.Nil, uuid.Nil, false
	}
	feedbackID, err = uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid feedback ID")
		return uuid.Nil, uuid.Nil, false
	}
	return projectID, feedbackID, true
}
