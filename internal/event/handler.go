package event

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/angelolev/tech-calendar/internal/auth"
	"github.com/angelolev/tech-calendar/internal/calendar"
)

type Handler struct{ service *Service }

func NewHandler(s *Service) *Handler { return &Handler{s} }

// ===========================
// 📄 List all events
func (h *Handler) List(c *gin.Context) {
	events, err := h.service.LoadAll(c.Request.Context())
	if err != nil && len(events) == 0 {
		c.JSON(http.StatusBadGateway, gin.H{"error": "events are temporarily unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events, "stale": err != nil})
}

// DayCell is one of the 42 cells of the month view.
type DayCell struct {
	Date    calendar.CivilDate `json:"date"`
	InMonth bool               `json:"inMonth"`
	Today   bool               `json:"today"`
	Events  []Event            `json:"events"`
}

// ===========================
// 📆 Month grid: GET /calendar/:year/:month
func (h *Handler) Month(c *gin.Context) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year"})
		return
	}
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil || month < 1 || month > 12 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month, expected 1-12"})
		return
	}

	events, loadErr := h.service.LoadAll(c.Request.Context())
	if loadErr != nil && len(events) == 0 {
		c.JSON(http.StatusBadGateway, gin.H{"error": "events are temporarily unavailable"})
		return
	}

	anchor := calendar.CivilDate{Year: year, Month: month, Day: 1}
	today := calendar.Today()

	cells := make([]DayCell, 0, calendar.GridSize)
	for _, day := range calendar.BuildGrid(anchor) {
		dayEvents := h.service.EventsOn(day)
		if dayEvents == nil {
			dayEvents = []Event{}
		}
		cells = append(cells, DayCell{
			Date:    day,
			InMonth: calendar.InMonth(day, anchor),
			Today:   calendar.SameDay(day, today),
			Events:  dayEvents,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"year":  year,
		"month": month,
		"days":  cells,
		"stale": loadErr != nil,
	})
}

// ===========================
// 🎯 Create (admin)
func (h *Handler) Create(c *gin.Context) {
	var draft Draft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.service.Create(c.Request.Context(), auth.SessionFromContext(c), draft, c.GetString("client_ip"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"event": created})
}

// ===========================
// 🛠 Update (admin)
func (h *Handler) Update(c *gin.Context) {
	var patch Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.service.Update(c.Request.Context(), auth.SessionFromContext(c), c.Param("id"), patch, c.GetString("client_ip"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"event": updated})
}

// ===========================
// ❌ Delete (admin)
func (h *Handler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.service.Delete(c.Request.Context(), auth.SessionFromContext(c), id, c.GetString("client_ip")); err != nil {
		writeError(c, err)
		return
	}
	// clients dismiss any open detail view for this id
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

// writeError maps the error taxonomy onto distinct HTTP responses; gate
// violations in particular must never look like silent no-ops.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, auth.ErrNotAuthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "you must sign in to do that"})
	case errors.Is(err, auth.ErrAdminOnly):
		c.JSON(http.StatusForbidden, gin.H{"error": "only admins can manage events"})
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": ErrNotFound.Error()})
	case errors.Is(err, ErrNameRequired), errors.Is(err, calendar.ErrInvalidDate):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
	}
}
