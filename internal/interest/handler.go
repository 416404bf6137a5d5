package interest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/angelolev/tech-calendar/internal/auth"
)

type Handler struct{ service *Service }

func NewHandler(s *Service) *Handler { return &Handler{s} }

// ===========================
// 🔍 GET /events/:id/interest
//
// Roster and count are public; the membership flag reflects the optional
// session and is simply false for anonymous callers.
func (h *Handler) Get(c *gin.Context) {
	eventID := c.Param("id")
	session := auth.SessionFromContext(c)

	roster, rosterErr := h.service.Roster(c.Request.Context(), eventID)
	if roster == nil {
		roster = []auth.User{}
	}

	interested, err := h.service.IsInterested(c.Request.Context(), session, eventID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not check interest"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"interested": interested,
		"count":      len(roster),
		"roster":     roster,
		"stale":      rosterErr != nil,
	})
}

// ===========================
// 🔄 POST /events/:id/interest/toggle
func (h *Handler) Toggle(c *gin.Context) {
	session := auth.SessionFromContext(c)

	interested, roster, err := h.service.Toggle(c.Request.Context(), session, c.Param("id"))
	if err != nil {
		if errors.Is(err, auth.ErrNotAuthenticated) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "you must sign in to show interest"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update interest"})
		return
	}
	if roster == nil {
		roster = []auth.User{}
	}

	c.JSON(http.StatusOK, gin.H{
		"interested": interested,
		"count":      len(roster),
		"roster":     roster,
	})
}
