// Package apperror defines the domain error taxonomy shared by every layer.
//
// Services return *AppError values that wrap one of the sentinel errors below.
// The HTTP layer never inspects messages; it matches the sentinel with
// errors.Is and picks a status code. Anything that does not wrap a sentinel
// is treated as an internal fault.
package apperror

import (
	"errors"
	"strings"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation error")
	ErrConflict           = errors.New("conflict")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrInvalidToken       = errors.New("invalid token")
)

type AppError struct {
	Err     error  // sentinel
	Message string // Human-readable error message, safe to show to clients
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound reports a missing resource, e.g. NotFound("post") → "Post not found".
func NotFound(resource string) *AppError {
	if resource != "" {
		resource = strings.ToUpper(resource[:1]) + resource[1:]
	}
	return &AppError{
		Err:     ErrNotFound,
		Message: resource + " not found",
	}
}

// ValidationFailed reports a missing or malformed input field.
func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Conflict reports a uniqueness violation, e.g. a duplicate email.
func Conflict(field, message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
		Field:   field,
	}
}

// Forbidden returns an AppError indicating the caller does not own the resource.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// InvalidCredentials is returned for both unknown emails and wrong passwords,
// so callers cannot tell which one happened.
func InvalidCredentials() *AppError {
	return &AppError{
		Err:     ErrInvalidCredentials,
		Message: "Invalid credentials",
	}
}

// Unauthenticated means no token was presented at all.
func Unauthenticated() *AppError {
	return &AppError{
		Err:     ErrUnauthenticated,
		Message: "No token, authorization denied",
	}
}

// InvalidToken covers tampered, malformed and expired tokens alike.
func InvalidToken() *AppError {
	return &AppError{
		Err:     ErrInvalidToken,
		Message: "Token is not valid",
	}
}
