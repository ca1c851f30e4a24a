package shortener

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
)

var (
	ErrInvalidURL    = errors.New("invalid URL format")
	ErrCodeTaken     = errors.New("short code already in use")
	ErrNotFound      = errors.New("URL not found")
	ErrCodeExhausted = errors.New("could not generate a unique short code")
)

// APIError represents a standardized error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Common error codes
const (
	ErrCodeInvalidInput  = "INVALID_INPUT"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeAlreadyExists = "ALREADY_EXISTS"
	ErrCodeRateLimited   = "RATE_LIMITED"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// HandleError sends a standardized error response
func HandleError(w http.ResponseWriter, apiErr *APIError, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(apiErr); err != nil {
		log.Error().
			Err(err).
			Interface("api_error", apiErr).
			Msg("failed to encode error response")
	}
}

// HandleServiceError maps service errors onto HTTP responses. Internal
// details are logged, never sent to the caller.
func HandleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidURL):
		HandleError(w, &APIError{Code: ErrCodeInvalidInput, Message: "Invalid URL format"}, http.StatusBadRequest)
	case errors.Is(err, ErrCodeTaken):
		HandleError(w, &APIError{Code: ErrCodeAlreadyExists, Message: "Custom code already exists"}, http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		HandleError(w, &APIError{Code: ErrCodeNotFound, Message: "Short URL not found"}, http.StatusNotFound)
	default:
		log.Error().Err(err).Msg("internal error")
		HandleError(w, &APIError{Code: ErrCodeInternalError, Message: "Internal server error"}, http.StatusInternalServerError)
	}
}
