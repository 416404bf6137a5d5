package event

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/angelolev/tech-calendar/internal/auth"
)

// Store is the remote-store side of the repository: plain CRUD over the
// events table plus the roster join. The in-memory cache in Service sits
// on top of it and is only ever updated from rows this layer confirms.
type Store interface {
	ListWithRoster(ctx context.Context) ([]Event, error)
	Get(ctx context.Context, id string) (*Event, error)
	Insert(ctx context.Context, e *Event) error
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) (*Event, error)
	Delete(ctx context.Context, id string) error
}

type store struct{ db *gorm.DB }

func NewStore(db *gorm.DB) Store {
	return &store{db}
}

// ===========================
// 📄 List all events with their interested rosters
//
// Two queries total regardless of event count: the events themselves, then
// every interest row joined to its profile, bucketed here.
func (s *store) ListWithRoster(ctx context.Context) ([]Event, error) {
	var events []Event
	err := s.db.WithContext(ctx).
		Order("date ASC, created_at ASC").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	type rosterRow struct {
		EventID string
		auth.User
	}
	var rows []rosterRow
	err = s.db.WithContext(ctx).
		Table("event_interests").
		Select("event_interests.event_id, profiles.*").
		Joins("JOIN profiles ON profiles.id = event_interests.user_id").
		Order("event_interests.created_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list rosters: %w", err)
	}

	byEvent := make(map[string][]auth.User, len(events))
	for _, row := range rows {
		row.User.PasswordHash = ""
		byEvent[row.EventID] = append(byEvent[row.EventID], row.User)
	}

	for i := range events {
		events[i].Interested = byEvent[events[i].ID]
		events[i].applyColor()
	}
	return events, nil
}

// ===========================
// 🔍 Get a single event (no roster)
func (s *store) Get(ctx context.Context, id string) (*Event, error) {
	var e Event
	err := s.db.WithContext(ctx).First(&e, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	e.applyColor()
	return &e, nil
}

// ===========================
// 🎯 Insert Event
func (s *store) Insert(ctx context.Context, e *Event) error {
	if err := s.db.WithContext(ctx).Create(e).Error; err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// ===========================
// 🛠 Update Event fields, returning the confirmed row
func (s *store) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) (*Event, error) {
	res := s.db.WithContext(ctx).Model(&Event{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return nil, fmt.Errorf("update event: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, id)
}

// ===========================
// ❌ Delete Event
func (s *store) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&Event{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete event: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
