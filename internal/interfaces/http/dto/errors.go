package dto

import "net/http"

// Error code constants, format: ERR_<DESCRIPTION>

// General error codes
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeValidation is used when request validation fails
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeAlreadyLinked is used when a feedback item already has a
	// work item on the target tracker
	ErrCodeAlreadyLinked = "ERR_ALREADY_LINKED"
)

// Sync engine error codes
const (
	// ErrCodeNotConfigured is used when a tracker integration is missing
	// required credentials or identifiers
	ErrCodeNotConfigured = "ERR_NOT_CONFIGURED"
	// ErrCodeNotActive is used when a tracker integration is disabled
	ErrCodeNotActive = "ERR_NOT_ACTIVE"
	// ErrCodeUnknownProvider is used when the provider code is not recognized
	ErrCodeUnknownProvider = "ERR_UNKNOWN_PROVIDER"
	// ErrCodeProvider is used when a third-party tracker API call fails
	ErrCodeProvider = "ERR_PROVIDER"
	// ErrCodeInvalidTransition is used when a status change violates the
	// feedback pipeline
	ErrCodeInvalidTransition = "ERR_INVALID_TRANSITION"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:    http.StatusInternalServerError,
	ErrCodeBadRequest:  http.StatusBadRequest,
	ErrCodeValidation:  http.StatusBadRequest,
	ErrCodeInvalidJSON: http.StatusBadRequest,

	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeConflict:      http.StatusConflict,
	ErrCodeAlreadyLinked: http.StatusConflict,

	ErrCodeNotConfigured:     http.StatusUnprocessableEntity,
	ErrCodeNotActive:         http.StatusUnprocessableEntity,
	ErrCodeInvalidTransition: http.StatusUnprocessableEntity,
	ErrCodeUnknownProvider:   http.StatusBadRequest,
	ErrCodeProvider:          http.StatusBadGateway,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Returns 500 Internal Server Error if the error code is not found.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
