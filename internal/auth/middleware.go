// internal/auth/middleware.go
// HTTP middleware for protecting routes with JWT authentication.

package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/kinfolk-app/kinfolk-backend/internal/common/apperrors"
	"github.com/kinfolk-app/kinfolk-backend/internal/common/utils"
)

type contextKey string

const (
	userIDKey   contextKey = "user_id"
	usernameKey contextKey = "username"
)

// Middleware validates the Authorization header and injects the caller's
// identity into the request context.
func Middleware(authService Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := ExtractToken(r)
			if err != nil {
				utils.HandleError(w, err)
				return
			}

			claims, err := authService.ValidateToken(r.Context(), token)
			if err != nil {
				utils.HandleError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
			ctx = context.WithValue(ctx, usernameKey, claims.Username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ExtractToken pulls the bearer token from the Authorization header.
func ExtractToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", apperrors.Unauthenticated("Authorization header required")
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", apperrors.Unauthenticated("Authorization header must be in format: Bearer <token>")
	}

	return parts[1], nil
}

// GetUserIDFromContext returns the authenticated user's ID, if any.
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDKey).(int64)
	return userID, ok
}

// GetUsernameFromContext returns the authenticated user's username, if any.
func GetUsernameFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(usernameKey).(string)
	return username, ok
}
