package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"airbnb-analyzer/services"
)

// APIError is the JSON body of every failed request.
type APIError struct {
	StatusCode int    `json:"status_code"`
	ErrorCode  string `json:"error_code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// Render implements render.Renderer.
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

func newAPIError(status int, code, message string, details any) *APIError {
	return &APIError{StatusCode: status, ErrorCode: code, Message: message, Details: details}
}

// errorFor maps a query or session error to its HTTP response.
func errorFor(err error) *APIError {
	var missing *services.MissingColumnsError
	var computation *services.ComputationError

	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		return newAPIError(http.StatusNotFound, "REPORT_NOT_FOUND", err.Error(), nil)
	case errors.Is(err, services.ErrDataUnavailable):
		return newAPIError(http.StatusNotFound, "DATA_UNAVAILABLE", err.Error(), nil)
	case errors.As(err, &missing):
		return newAPIError(http.StatusUnprocessableEntity, "MISSING_COLUMNS", err.Error(), missing.Columns)
	case errors.As(err, &computation):
		return newAPIError(http.StatusUnprocessableEntity, "COMPUTATION_FAILED", err.Error(), nil)
	default:
		return newAPIError(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "internal server error", nil)
	}
}

// loadErrorFor maps a failure to read or accept an upload.
func loadErrorFor(err error) *APIError {
	var tooLarge *http.MaxBytesError
	var missing *services.MissingColumnsError

	switch {
	case errors.As(err, &tooLarge):
		return newAPIError(http.StatusRequestEntityTooLarge, "UPLOAD_TOO_LARGE", err.Error(), tooLarge.Limit)
	case errors.As(err, &missing):
		return newAPIError(http.StatusBadRequest, "LOAD_FAILED", err.Error(), missing.Columns)
	default:
		return newAPIError(http.StatusBadRequest, "LOAD_FAILED", err.Error(), nil)
	}
}
