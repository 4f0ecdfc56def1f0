package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// UsernameKey holds the authenticated username in the Gin context.
const UsernameKey = "username"

// TokenVerifier validates a raw bearer token and returns its subject.
type TokenVerifier interface {
	Verify(raw string) (string, error)
}

// RequireAuth rejects requests without a valid bearer token.
//
// Responses:
//   - 401 Unauthorized: Authorization header missing or not a Bearer token.
//   - 403 Forbidden: token present but invalid or expired.
func RequireAuth(v TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			AbortWithError(c, http.StatusUnauthorized, "access token not found", nil)
			return
		}

		user, err := v.Verify(strings.TrimSpace(raw))
		if err != nil {
			AbortWithError(c, http.StatusForbidden, "access token expired or incorrect", err)
			return
		}

		c.Set(UsernameKey, user)
		c.Next()
	}
}
