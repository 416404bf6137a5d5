package interest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelolev/tech-calendar/internal/auth"
	"github.com/angelolev/tech-calendar/internal/event"
)

// memEventStore is a minimal in-memory event.Store for lifecycle tests.
type memEventStore struct {
	mu     sync.Mutex
	events map[string]event.Event
}

func (m *memEventStore) ListWithRoster(ctx context.Context) ([]event.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]event.Event, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, e)
	}
	return out, nil
}

func (m *memEventStore) Get(ctx context.Context, id string) (*event.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[id]
	if !ok {
		return nil, event.ErrNotFound
	}
	return &e, nil
}

func (m *memEventStore) Insert(ctx context.Context, e *event.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[e.ID] = *e
	return nil
}

func (m *memEventStore) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) (*event.Event, error) {
	return m.Get(ctx, id)
}

func (m *memEventStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[id]; !ok {
		return event.ErrNotFound
	}
	delete(m.events, id)
	return nil
}

// Full lifecycle: an admin publishes an event, a user toggles interest on and
// off, the admin deletes the event and the ledger forgets it.
func TestEventLifecycleWithInterest(t *testing.T) {
	ctx := context.Background()

	store := &memEventStore{events: make(map[string]event.Event)}
	eventSvc := event.NewService(store, nil, time.Minute)

	repo := &fakeRepo{}
	interestSvc := NewService(repo)
	eventSvc.OnDelete(interestSvc.DropEvent)

	admin := auth.Session{User: &auth.User{ID: "admin-1", Role: auth.RoleAdmin}}
	member := auth.Session{User: &auth.User{ID: "user-1", Role: auth.RoleUser}}

	ev, err := eventSvc.Create(ctx, admin, event.Draft{Name: "Meetup", Date: "2025-03-15"}, "127.0.0.1")
	require.NoError(t, err)
	require.Len(t, eventSvc.Snapshot(), 1)

	interested, roster, err := interestSvc.Toggle(ctx, member, ev.ID)
	require.NoError(t, err)
	assert.True(t, interested)
	assert.Len(t, roster, 1)

	interested, roster, err = interestSvc.Toggle(ctx, member, ev.ID)
	require.NoError(t, err)
	assert.False(t, interested)
	assert.Empty(t, roster)

	require.NoError(t, eventSvc.Delete(ctx, admin, ev.ID, "127.0.0.1"))
	assert.Empty(t, eventSvc.Snapshot())

	interestSvc.mu.RLock()
	_, tracked := interestSvc.rosters[ev.ID]
	interestSvc.mu.RUnlock()
	assert.False(t, tracked)
}
