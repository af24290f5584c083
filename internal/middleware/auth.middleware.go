package middleware

import (
	"context"
	"net/http"
	"strings"

	"bank-service/internal/pkg/response"
	"bank-service/internal/repository"
	"bank-service/internal/usecase/auth"
)

type contextKey string

const (
	ContextUserID contextKey = "user_id"
	ContextStage  contextKey = "stage"
)

// AuthMiddleware guards routes with the stateless session tokens the auth
// service issues. Pre-auth tokens only reach the OTP endpoints; everything
// else requires a full session.
type AuthMiddleware struct {
	auth     *auth.Service
	registry *repository.RegistryRepository
}

func NewAuthMiddleware(authSvc *auth.Service, registry *repository.RegistryRepository) *AuthMiddleware {
	return &AuthMiddleware{auth: authSvc, registry: registry}
}

func (am *AuthMiddleware) extractToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimPrefix(header, "Bearer ")
	return token, token != ""
}

// Require validates the bearer token and rejects tokens below the given
// stage. A full token satisfies a pre-auth requirement, not the reverse.
func (am *AuthMiddleware) Require(stage auth.Stage) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := am.extractToken(r)
			if !ok {
				response.Error(w, http.StatusUnauthorized, "missing or malformed authorization header")
				return
			}
			userID, tokenStage, err := am.auth.ParseToken(token)
			if err != nil {
				response.Error(w, http.StatusUnauthorized, "invalid or expired session")
				return
			}
			if stage == auth.StageFull && tokenStage != auth.StageFull {
				response.Error(w, http.StatusForbidden, "verification required")
				return
			}

			ctx := context.WithValue(r.Context(), ContextUserID, userID)
			ctx = context.WithValue(ctx, ContextStage, tokenStage)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin sits behind Require(StageFull) and additionally checks the
// registry's admin flag for the authenticated user.
func (am *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := UserID(r.Context())
		if !ok {
			response.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		user, err := am.registry.GetByID(userID)
		if err != nil || !user.IsAdmin {
			response.Error(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// UserID reads the authenticated user id set by Require.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ContextUserID).(string)
	return id, ok && id != ""
}
