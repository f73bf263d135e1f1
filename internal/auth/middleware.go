package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/sakif/blog-api/internal/apperror"
)

// TokenHeader is the request header that carries the token. It is a custom
// header rather than "Authorization: Bearer", matching the web client.
const TokenHeader = "x-auth-token"

// contextKey is unexported so no other package can read or overwrite the
// user ID stored by RequireAuth.
type contextKey string

const userIDKey contextKey = "userID"

// TokenVerifier is the part of TokenService the gate needs.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// RequireAuth guards protected routes.
//
//   - no x-auth-token header      → 401 "No token, authorization denied"
//   - invalid or expired token    → 400 "Token is not valid"
//   - valid token                 → user ID stored in the context, next runs
//
// Every request is authenticated on its own; there is no session store.
func RequireAuth(tokens TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(TokenHeader)
			if raw == "" {
				writeGateError(w, http.StatusUnauthorized, "unauthenticated", apperror.Unauthenticated())
				return
			}

			userID, err := tokens.Verify(raw)
			if err != nil {
				reason := "invalid"
				if errors.Is(err, ErrTokenExpired) {
					reason = "expired"
				}
				logger.Info("rejected token",
					slog.String("reason", reason),
					slog.String("path", r.URL.Path),
					slog.String("error", err.Error()),
				)
				writeGateError(w, http.StatusBadRequest, "invalid_token", apperror.InvalidToken())
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// WithUserID returns a copy of ctx carrying userID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext retrieves the authenticated user's ID.
// Returns ("", false) when the request did not pass through RequireAuth.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// writeGateError uses the same {"error","message"} shape as the handler
// package; it lives here because handler imports auth.
func writeGateError(w http.ResponseWriter, status int, code string, appErr *apperror.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   code,
		"message": appErr.Message,
	})
}
