// Package middleware holds the gin middleware of the public API.
package middleware

import (
	"blindpair/backend/internal/auth"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Context keys set by RequireAuth.
const (
	UserIDKey        = "userID"
	InstitutionIDKey = "institutionID"
)

// TokenParser is satisfied by *auth.Issuer.
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// RequireAuth resolves the caller from a Bearer token. Browsers cannot set headers
// on a WebSocket handshake, so the token may also come as ?token=.
func RequireAuth(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if token == "" {
			token = c.Query("token")
		}

		claims, err := parser.Parse(token)
		if err != nil {
			msg := "invalid or expired token"
			if errors.Is(err, auth.ErrMissingToken) {
				msg = "authorization token missing"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg, "code": "UNAUTHORIZED"})
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(InstitutionIDKey, claims.InstitutionID)
		c.Next()
	}
}

// UserID returns the authenticated caller.
func UserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}

// InstitutionID returns the authenticated caller's institution.
func InstitutionID(c *gin.Context) string {
	return c.GetString(InstitutionIDKey)
}
