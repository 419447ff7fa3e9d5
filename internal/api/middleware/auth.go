package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/imageforge/caption-api/internal/api/shared"
	"github.com/imageforge/caption-api/internal/service/auth"
)

// AuthMiddleware provides JWT authentication for routes.
type AuthMiddleware struct {
	jwtService auth.JWTService
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(jwtService auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
	}
}

// Authenticate validates JWT tokens from the Authorization header and adds
// the user token to the request context for authorized requests. Rejected
// requests never reach the handlers behind it, so nothing unauthenticated
// can enter the job queue.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Authorization header required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid authorization format")
			return
		}

		claims, err := m.jwtService.ValidateToken(r.Context(), parts[1])
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Token expired")
			default:
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid user token! Please relogin.")
			}
			return
		}

		ctx := shared.SetUserToken(r.Context(), claims.UserToken)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
