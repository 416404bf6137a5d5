package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/angelolev/tech-calendar/internal/auth"
)

// RequireAdmin rejects non-admin sessions before the handler runs. The
// services gate again at call time; this middleware only makes the failure
// cheap and the route table readable.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := auth.SessionFromContext(c)
		if !session.IsAuthenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": auth.ErrNotAuthenticated.Error()})
			return
		}
		if !session.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": auth.ErrAdminOnly.Error()})
			return
		}
		c.Next()
	}
}
