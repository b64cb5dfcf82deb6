package middleware

import (
	"errors"
	"strings"

	"weather_gateway/internal/apperr"
	"weather_gateway/internal/auth"
	"weather_gateway/internal/observability"

	"github.com/gin-gonic/gin"
)

var (
	ErrMissingAuthHeader = apperr.Auth("MISSING_TOKEN", "Authorization header required")
	ErrBadAuthHeader     = apperr.Auth("INVALID_AUTH_HEADER", "Invalid authorization format. Use: Bearer <token>")
)

// TokenVerifier is satisfied by *auth.TokenManager.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// AuthMiddleware validates the bearer token and extracts userID
func AuthMiddleware(verifier TokenVerifier, metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get token from Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			metrics.TokenRejected("missing")
			apperr.Write(c, ErrMissingAuthHeader)
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			metrics.TokenRejected("malformed_header")
			apperr.Write(c, ErrBadAuthHeader)
			return
		}

		// Validate token
		claims, err := verifier.Verify(parts[1])
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				metrics.TokenRejected("expired")
			} else {
				metrics.TokenRejected("invalid")
			}
			apperr.Write(c, err)
			return
		}

		// Set userID in context
		c.Set(auth.UserIDKey, claims.UserID)
		c.Next()
	}
}
