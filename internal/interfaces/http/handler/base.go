package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hearback/backend/internal/domain/feedback"
	"github.com/hearback/backend/internal/domain/tracker"
	"github.com/hearback/backend/internal/interfaces/http/dto"
)

// RequestIDKey is the gin context key for the request ID
const RequestIDKey = "request_id"

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID from the context
func getRequestID(c *gin.Context) string {
	if id := c.GetString(RequestIDKey); id != "" {
		return id
	}
	return c.GetHeader("X-Request-ID")
}

// getProjectID extracts the project ID from the route
func getProjectID(c *gin.Context) (uuid.UUID, error) {
	return uuid.Parse(c.Param("projectId"))
}

// getActorID extracts the acting user's ID. Authentication is handled
// upstream by the API gateway, which forwards the identity header.
func getActorID(c *gin.Context) (uuid.UUID, error) {
	id := c.GetHeader("X-User-ID")
	if id == "" {
		return uuid.Nil, errors.New("missing X-User-ID header")
	}
	return uuid.Parse(id)
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with an explicit status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// ErrorWithCode sends an error response, deriving the status from the code
func (h *BaseHandler) ErrorWithCode(c *gin.Context, code, message string) {
	h.Error(c, dto.GetHTTPStatus(code), code, message)
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// HandleError converts domain errors to HTTP responses
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var providerErr *tracker.ProviderError
	if errors.As(err, &providerErr) {
		h.ErrorWithCode(c, dto.ErrCodeProvider, providerErr.Error())
		return
	}

	switch {
	case errors.Is(err, feedback.ErrNotFound):
		h.ErrorWithCode(c, dto.ErrCodeNotFound, err.Error())
	case errors.Is(err, feedback.ErrAlreadyLinked):
		h.ErrorWithCode(c, dto.ErrCodeAlreadyLinked, err.Error())
	case errors.Is(err, tracker.ErrNotConfigured):
		h.ErrorWithCode(c, dto.ErrCodeNotConfigured, err.Error())
	case errors.Is(err, tracker.ErrNotActive):
		h.ErrorWithCode(c, dto.ErrCodeNotActive, err.Error())
	case errors.Is(err, tracker.ErrUnknownProvider), errors.Is(err, feedback.ErrUnknownProvider):
		h.ErrorWithCode(c, dto.ErrCodeUnknownProvider, err.Error())
	case errors.Is(err, feedback.ErrInvalidStatus), errors.Is(err, feedback.ErrInvalidTransition):
		h.ErrorWithCode(c, dto.ErrCodeInvalidTransition, err.Error())
	case errors.Is(err, feedback.ErrInvalidTitle),
		errors.Is(err, feedback.ErrCommentBodyMissing),
		errors.Is(err, feedback.ErrInvalidVoter),
		errors.Is(err, feedback.ErrInvalidProjectID):
		h.ErrorWithCode(c, dto.ErrCodeValidation, err.Error())
	default:
		h.InternalError(c, "An unexpected error occurred")
	}
}
