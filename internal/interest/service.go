package interest

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/angelolev/tech-calendar/internal/auth"
)

// Service is the interest ledger: per-event roster of interested profiles
// plus the current user's membership, kept consistent with the store by
// re-reading after every write rather than applying local deltas.
type Service struct {
	repo Repository

	mu      sync.RWMutex
	rosters map[string][]auth.User // last successfully loaded roster per event

	// toggle serialization per (user, event): a second toggle for the same
	// pair queues behind the first, never interleaves
	guards sync.Map
}

func NewService(repo Repository) *Service {
	return &Service{
		repo:    repo,
		rosters: make(map[string][]auth.User),
	}
}

// Roster loads the event's interested profiles. Public read, no session
// needed. On store failure the previously loaded roster is returned with
// the error so the view degrades instead of blanking.
func (s *Service) Roster(ctx context.Context, eventID string) ([]auth.User, error) {
	roster, err := s.repo.RosterFor(ctx, eventID)
	if err != nil {
		log.Printf("⚠️ roster load failed for event %s, keeping previous: %v", eventID, err)
		s.mu.RLock()
		previous := s.rosters[eventID]
		s.mu.RUnlock()
		return previous, err
	}

	s.mu.Lock()
	s.rosters[eventID] = roster
	s.mu.Unlock()
	return roster, nil
}

// IsInterested answers the current user's membership. Anonymous sessions
// get false without a remote call.
func (s *Service) IsInterested(ctx context.Context, session auth.Session, eventID string) (bool, error) {
	if !session.IsAuthenticated() {
		return false, nil
	}
	return s.repo.Exists(ctx, session.UserID(), eventID)
}

// Toggle flips the current user's interest and returns the new membership
// with the refreshed roster. The whole call is serialized per (user, event);
// after either branch the roster is re-read so the count always reflects
// confirmed remote state, even when the store rejected a duplicate insert
// or no-op delete.
func (s *Service) Toggle(ctx context.Context, session auth.Session, eventID string) (bool, []auth.User, error) {
	if !session.IsAuthenticated() {
		return false, nil, auth.ErrNotAuthenticated
	}
	userID := session.UserID()

	guard := s.guard(userID, eventID)
	guard.Lock()
	defer guard.Unlock()

	member, err := s.repo.Exists(ctx, userID, eventID)
	if err != nil {
		return false, nil, err
	}

	if member {
		if err := s.repo.DeleteByUserEvent(ctx, userID, eventID); err != nil {
			return false, nil, err
		}
		member = false
	} else {
		in := &Interest{
			ID:      uuid.New().String(),
			UserID:  userID,
			EventID: eventID,
		}
		if err := s.repo.Insert(ctx, in); err != nil {
			// a unique-constraint rejection means the record already exists
			// (e.g. written from another tab); converge instead of failing
			exists, checkErr := s.repo.Exists(ctx, userID, eventID)
			if checkErr != nil || !exists {
				return false, nil, fmt.Errorf("toggle interest: %w", err)
			}
		}
		member = true
	}

	roster, err := s.Roster(ctx, eventID)
	if err != nil {
		// the write is confirmed; a failed refresh only staled the roster
		return member, roster, nil
	}
	return member, roster, nil
}

// DropEvent forgets all ledger state for a deleted event. Wired to the
// event repository's delete signal.
func (s *Service) DropEvent(eventID string) {
	s.mu.Lock()
	delete(s.rosters, eventID)
	s.mu.Unlock()

	suffix := "|" + eventID
	s.guards.Range(func(key, _ any) bool {
		if k, ok := key.(string); ok && strings.HasSuffix(k, suffix) {
			s.guards.Delete(key)
		}
		return true
	})
}

func (s *Service) guard(userID, eventID string) *sync.Mutex {
	mu, _ := s.guards.LoadOrStore(userID+"|"+eventID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}
