package interest

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/angelolev/tech-calendar/internal/auth"
)

type Repository interface {
	RosterFor(ctx context.Context, eventID string) ([]auth.User, error)
	Exists(ctx context.Context, userID, eventID string) (bool, error)
	Insert(ctx context.Context, in *Interest) error
	DeleteByUserEvent(ctx context.Context, userID, eventID string) error
}

type repository struct{ db *gorm.DB }

func NewRepository(db *gorm.DB) Repository {
	return &repository{db}
}

// RosterFor returns the profiles interested in an event, joined in a single
// query, oldest interest first.
func (r *repository) RosterFor(ctx context.Context, eventID string) ([]auth.User, error) {
	var roster []auth.User
	err := r.db.WithContext(ctx).
		Table("event_interests").
		Select("profiles.*").
		Joins("JOIN profiles ON profiles.id = event_interests.user_id").
		Where("event_interests.event_id = ?", eventID).
		Order("event_interests.created_at ASC").
		Scan(&roster).Error
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}
	for i := range roster {
		roster[i].PasswordHash = ""
	}
	return roster, nil
}

// Exists checks membership for a (user, event) pair. A missing row is a
// normal negative result, not an error.
func (r *repository) Exists(ctx context.Context, userID, eventID string) (bool, error) {
	var in Interest
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND event_id = ?", userID, eventID).
		First(&in).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check interest: %w", err)
	}
	return true, nil
}

func (r *repository) Insert(ctx context.Context, in *Interest) error {
	if err := r.db.WithContext(ctx).Create(in).Error; err != nil {
		return fmt.Errorf("insert interest: %w", err)
	}
	return nil
}

// DeleteByUserEvent removes the pair's record. Deleting an absent record is
// a no-op, matching the toggle's tolerance for already-converged state.
func (r *repository) DeleteByUserEvent(ctx context.Context, userID, eventID string) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND event_id = ?", userID, eventID).
		Delete(&Interest{}).Error
	if err != nil {
		return fmt.Errorf("delete interest: %w", err)
	}
	return nil
}
