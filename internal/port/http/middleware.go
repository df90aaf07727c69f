package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/newsnet/backend/internal/entity"
	"github.com/newsnet/backend/internal/token"
	"go.uber.org/zap"
)

// contextKey is a private type for context keys to avoid collisions.
type contextKey string

const claimsCtxKey = contextKey("claims")

// TokenValidator is the slice of the token manager the guard needs.
type TokenValidator interface {
	Validate(tokenString string) (*token.Claims, error)
}

// ClaimsFromContext returns the authenticated claims attached by JWTAuth.
func ClaimsFromContext(ctx context.Context) (*token.Claims, bool) {
	claims, ok := ctx.Value(claimsCtxKey).(*token.Claims)
	return claims, ok
}

// JWTAuth validates the bearer token on each request and attaches the decoded
// claims to the request context. Absent, malformed, or invalid tokens are all
// rejected with 401.
func JWTAuth(validator TokenValidator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
				writeMessage(w, http.StatusUnauthorized, "No token provided")
				return
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			claims, err := validator.Validate(tokenString)
			if err != nil {
				logger.Debug("Token validation failed", zap.Error(err))
				writeMessage(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), claimsCtxKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects requests whose authenticated claims carry a different
// role. It must be layered behind JWTAuth; a request without claims is treated
// as unauthenticated, never as authorized.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeMessage(w, http.StatusUnauthorized, "Authentication required")
				return
			}
			if claims.Role != role {
				writeMessage(w, http.StatusForbidden, role+" access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin gates administrative operations.
func RequireAdmin() func(http.Handler) http.Handler {
	return RequireRole(entity.RoleAdmin)
}

// RequestLogger logs each request with method, path, and duration.
func RequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Info("HTTP request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Duration("duration", time.Since(start)))
		})
	}
}
