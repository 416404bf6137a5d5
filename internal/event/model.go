package event

import (
	"errors"
	"hash/fnv"
	"time"

	"github.com/angelolev/tech-calendar/internal/auth"
	"github.com/angelolev/tech-calendar/internal/calendar"
)

var (
	// ErrNotFound is returned when the target event id is absent at the store.
	ErrNotFound = errors.New("event not found")
	// ErrNameRequired is returned when a draft or patch has an empty name.
	ErrNameRequired = errors.New("event name is required")
)

// ============================
// 🔷 Event Model
type Event struct {
	ID        string             `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string             `gorm:"size:255;not null" json:"name"`
	Link      *string            `gorm:"type:text" json:"link,omitempty"`
	WhatsApp  *string            `gorm:"column:whatsapp;type:text" json:"whatsapp,omitempty"`
	Date      calendar.CivilDate `gorm:"not null;index" json:"date"`
	CreatedBy string             `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt time.Time          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time          `gorm:"autoUpdateTime" json:"updated_at"`

	// Denormalized roster of interested profiles, filled on list loads.
	// Owned by the interest ledger; event updates never touch it.
	Interested []auth.User `gorm:"-" json:"interested"`

	// Display color derived from the id, see Color().
	Color string `gorm:"-" json:"color"`
}

func (Event) TableName() string {
	return "events"
}

// ============================
// 🟡 Create Event Request
type Draft struct {
	Name     string  `json:"name" binding:"required"`
	Link     *string `json:"link"`
	WhatsApp *string `json:"whatsapp"`
	Date     string  `json:"date" binding:"required"` // wire format: "2006-01-02"
}

// ============================
// 🟠 Update Event Request. Nil fields are left unchanged.
type Patch struct {
	Name     *string `json:"name"`
	Link     *string `json:"link"`
	WhatsApp *string `json:"whatsapp"`
	Date     *string `json:"date"` // wire format: "2006-01-02"
}

// palette of display colors; assignment must be stable across renders
var palette = []string{
	"#7c8ce0", "#5a6aa8", "#9b72cf", "#c86b98",
	"#d98e5f", "#5fae8e", "#4e9fb8", "#b8b25f",
}

// colorFor hashes the event id (FNV-1a) into the palette so an event keeps
// the same color on every load.
func colorFor(id string) string {
	h := fnv.New32a()
	h.Write([]byte(id))
	return palette[h.Sum32()%uint32(len(palette))]
}

func (e *Event) applyColor() {
	e.Color = colorFor(e.ID)
}
