package interest

import (
	"time"

	"github.com/angelolev/tech-calendar/internal/auth"
)

// ============================
// 🔷 Interest Model
//
// One row relates one profile to one event; the composite unique index
// enforces at most one record per (user, event) pair. Rows are created by
// the interested user, deleted by the same user and never mutated; there
// is no admin override.
type Interest struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string    `gorm:"type:uuid;not null;uniqueIndex:idx_interest_user_event" json:"user_id"`
	EventID   string    `gorm:"type:uuid;not null;uniqueIndex:idx_interest_user_event;index" json:"event_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	Profile auth.User `gorm:"foreignKey:UserID;references:ID" json:"profile"`
}

func (Interest) TableName() string {
	return "event_interests"
}
