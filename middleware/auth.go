package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/angelolev/tech-calendar/internal/auth"
)

// Auth validates the Bearer token, loads the user and stores the session in
// the context. The user is re-read on every request so a role change or a
// deleted account takes effect immediately.
func Auth(authSvc auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := sessionFromRequest(c, authSvc)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		if !session.IsAuthenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": auth.ErrNotAuthenticated.Error()})
			return
		}

		c.Set("session", session)
		c.Next()
	}
}

// OptionalAuth populates the session when a valid token is present and
// leaves an anonymous session otherwise. Used on public reads so membership
// checks can answer false instead of failing.
func OptionalAuth(authSvc auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := sessionFromRequest(c, authSvc)
		if err != nil {
			session = auth.Session{}
		}
		c.Set("session", session)
		c.Next()
	}
}

func sessionFromRequest(c *gin.Context, authSvc auth.Service) (auth.Session, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return auth.Session{}, nil
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return auth.Session{}, auth.ErrInvalidToken
	}

	userID, err := authSvc.ParseAccessToken(parts[1])
	if err != nil {
		return auth.Session{}, err
	}

	user, err := authSvc.GetUserByID(userID)
	if err != nil {
		return auth.Session{}, auth.ErrInvalidToken
	}

	return auth.Session{User: user}, nil
}
