package handler

// RESPONSE HELPERS:
// Every handler answers through writeJSON or writeError so responses share
// one shape and one status mapping.
//
// CONSISTENT ERROR FORMAT:
//
//	{"error": "not_found", "message": "Post not found"}
//
// The Auth Gate in internal/auth writes the same shape for its own 401/400s.
// The one exception is an internal fault, which is a bare text/plain
// "Server Error" so nothing about the failure reaches the client.

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/sakif/blog-api/internal/apperror"
)

// maxBodyBytes caps request bodies. Posts are plain text; a megabyte is plenty.
const maxBodyBytes = 1 << 20

// ErrorResponse is the standard error format returned by all API endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`           // Machine-readable error type (e.g., "not_found")
	Message string `json:"message"`         // Human-readable description, shown verbatim by clients
	Field   string `json:"field,omitempty"` // Input field at fault, when known
}

// MessageResponse is the body of responses that only confirm an action.
type MessageResponse struct {
	Message string `json:"message"`
}

// writeJSON sends a JSON response with the given status code.
// Headers and status must be set before the body is written.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// decodeJSON reads a single JSON object from the request body into dst.
// Malformed or oversized bodies come back as a validation error.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperror.ValidationFailed("", "Request body is required")
		}
		return apperror.ValidationFailed("", "Invalid JSON body")
	}
	return nil
}

// statusFor maps a domain sentinel to an HTTP status and error code.
//
// ERROR MAPPING:
//
//	ErrValidation, ErrConflict, ErrInvalidCredentials, ErrInvalidToken → 400
//	ErrUnauthenticated, ErrForbidden                                   → 401
//	ErrNotFound                                                        → 404
//
// Forbidden is deliberately 401, not 403: existing clients treat any 401 on
// a post as "you may not touch this".
func statusFor(err error) (int, string, bool) {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest, "validation_error", true
	case errors.Is(err, apperror.ErrConflict):
		return http.StatusBadRequest, "conflict", true
	case errors.Is(err, apperror.ErrInvalidCredentials):
		return http.StatusBadRequest, "invalid_credentials", true
	case errors.Is(err, apperror.ErrInvalidToken):
		return http.StatusBadRequest, "invalid_token", true
	case errors.Is(err, apperror.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthenticated", true
	case errors.Is(err, apperror.ErrForbidden):
		return http.StatusUnauthorized, "forbidden", true
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound, "not_found", true
	}
	return http.StatusInternalServerError, "", false
}

// writeError maps a domain error to the appropriate HTTP status code and sends it.
//
// Anything that is not an *apperror.AppError wrapping a known sentinel is an
// internal fault: it is logged with the request path and answered with a
// plain 500 "Server Error". Raw error text (SQL, file paths) never leaves
// the process.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		if status, code, ok := statusFor(err); ok {
			writeJSON(w, status, ErrorResponse{
				Error:   code,
				Message: appErr.Message,
				Field:   appErr.Field,
			})
			return
		}
	}

	logger.Error("internal error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = io.WriteString(w, "Server Error")
}
