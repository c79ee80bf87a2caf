package handler

import (
	"github.com/gin-gonic/gin"

	settingsapp "github.com/hearback/backend/internal/application/settings"
	"github.com/hearback/backend/internal/domain/tracker"
)

// SettingsHandler handles tracker integration settings endpoints
type SettingsHandler struct {
	BaseHandler
	service *settingsapp.Service
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(service *settingsapp.Service) *SettingsHandler {
	return &SettingsHandler{service: service}
}

// RegisterRoutes registers integration settings routes
func (h *SettingsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	integrations := rg.Group("/projects/:projectId/integrations")
	{
		integrations.GET("", h.List)
		integrations.GET("/:provider", h.Get)
		integrations.PATCH("/:provider", h.Update)
	}
}

// List returns the settings for every provider
func (h *SettingsHandler) List(c *gin.Context) {
	projectID, err := getProjectID(c)
	if err != nil {
		h.BadRequest(c, "Invalid project ID")
		return
	}

	resp, err := h.service.List(c.Request.Context(), projectID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Get returns the settings for one provider
func (h *SettingsHandler) Get(c *gin.Context) {
	projectID, err := getProjectID(c)
	if err != nil {
		h.BadRequest(c, "Invalid project ID")
		return
	}

	resp, err := h.service.Get(c.Request.Context(), projectID, providerParam(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Update merges a partial settings patch for one provider
func (h *SettingsHandler) Update(c *gin.Context) {
	projectID, err := getProjectID(c)
	if err != nil {
		h.BadRequest(c, "Invalid project ID")
		return
	}

	var req settingsapp.UpdateIntegrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.Update(c.Request.Context(), projectID, providerParam(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// providerParam reads the provider code from the route
func providerParam(c *gin.Context) tracker.Code {
	return tracker.Code(c.Param("provider"))
}
