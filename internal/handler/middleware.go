package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const sessionUserKey = "session_user_id"

type Authenticator interface {
	Authenticate(token string) (int64, error)
}

// RequireSession rejects requests without a valid "Authorization: Bearer"
// token and stores the session's user id on the context.
func RequireSession(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		scheme, token, ok := strings.Cut(header, " ")
		token = strings.TrimSpace(token)
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		userID, err := auth.Authenticate(token)
		if err != nil {
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.Set(sessionUserKey, userID)
		c.Next()
	}
}

// SessionUserID returns the user set by RequireSession, or 0.
func SessionUserID(c *gin.Context) int64 {
	return c.GetInt64(sessionUserKey)
}
