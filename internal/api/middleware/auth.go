// internal/api/middleware/auth.go
package middleware

import (
	"net/http"
	"strings"

	"greencart-ops-api/internal/auth"

	"github.com/gin-gonic/gin"
)

const (
	ContextUserID   = "user_id"
	ContextUsername = "username"
)

// SessionToken returns the session token from the cookie, or from an
// "Authorization: Bearer" header for non-browser clients.
func SessionToken(c *gin.Context, cookieName string) string {
	if v, err := c.Cookie(cookieName); err == nil && v != "" {
		return v
	}
	header := c.GetHeader("Authorization")
	if token := strings.TrimPrefix(header, "Bearer "); token != header {
		return strings.TrimSpace(token)
	}
	return ""
}

// Authenticate rejects requests without a valid session and stores the
// signed-in user in the context.
func Authenticate(sessions *auth.SessionManager, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := SessionToken(c, cookieName)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized. Please log in."})
			return
		}

		claims, err := sessions.Parse(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Session expired. Please log in again."})
			return
		}

		c.Set(ContextUserID, claims.UserID())
		c.Set(ContextUsername, claims.Username)
		c.Next()
	}
}
