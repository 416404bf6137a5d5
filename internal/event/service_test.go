package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelolev/tech-calendar/internal/auditlog"
	"github.com/angelolev/tech-calendar/internal/auth"
	"github.com/angelolev/tech-calendar/internal/calendar"
)

// fakeStore is an in-memory Store with switchable failures.
type fakeStore struct {
	mu     sync.Mutex
	events map[string]Event
	order  []string

	listErr   error
	insertErr error
	listCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{events: make(map[string]Event)}
}

func (f *fakeStore) seed(e Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events[e.ID] = e
	f.order = append(f.order, e.ID)
}

func (f *fakeStore) ListWithRoster(ctx context.Context) ([]Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]Event, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.events[id])
	}
	return out, nil
}

func (f *fakeStore) Get(ctx context.Context, id string) (*Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	e.applyColor()
	return &e, nil
}

func (f *fakeStore) Insert(ctx context.Context, e *Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	f.events[e.ID] = *e
	f.order = append(f.order, e.ID)
	return nil
}

func (f *fakeStore) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) (*Event, error) {
	f.mu.Lock()
	e, ok := f.events[id]
	if !ok {
		f.mu.Unlock()
		return nil, ErrNotFound
	}
	if name, ok := fields["name"].(string); ok {
		e.Name = name
	}
	if date, ok := fields["date"].(calendar.CivilDate); ok {
		e.Date = date
	}
	if link, ok := fields["link"].(string); ok {
		e.Link = &link
	}
	f.events[id] = e
	f.mu.Unlock()
	return f.Get(ctx, id)
}

func (f *fakeStore) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.events[id]; !ok {
		return ErrNotFound
	}
	delete(f.events, id)
	for i, oid := range f.order {
		if oid == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil
}

// fakeAudit records entries instead of writing them.
type fakeAudit struct {
	mu      sync.Mutex
	entries []struct{ Action, Status string }
}

func (f *fakeAudit) LogAction(ctx context.Context, userID *string, eventID *string, action string, details map[string]interface{}, ip string, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, struct{ Action, Status string }{action, status})
	return nil
}

func (f *fakeAudit) GetAuditLogs(ctx context.Context, filter auditlog.AuditLogFilter) (*auditlog.PaginatedAuditLogs, error) {
	return &auditlog.PaginatedAuditLogs{}, nil
}

func (f *fakeAudit) last() (string, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.entries) == 0 {
		return "", ""
	}
	e := f.entries[len(f.entries)-1]
	return e.Action, e.Status
}

func adminSession() auth.Session {
	return auth.Session{User: &auth.User{ID: "admin-1", Email: "admin@example.com", Role: auth.RoleAdmin}}
}

func memberSession() auth.Session {
	return auth.Session{User: &auth.User{ID: "user-1", Email: "user@example.com", Role: auth.RoleUser}}
}

func newTestService(store Store, audit auditlog.Service) *Service {
	return NewService(store, audit, time.Minute)
}

func TestCreateDeniedForAnonymousAndMember(t *testing.T) {
	store := newFakeStore()
	audit := &fakeAudit{}
	svc := newTestService(store, audit)
	draft := Draft{Name: "Meetup", Date: "2025-03-15"}

	_, err := svc.Create(context.Background(), auth.Session{}, draft, "127.0.0.1")
	assert.ErrorIs(t, err, auth.ErrNotAuthenticated)

	_, err = svc.Create(context.Background(), memberSession(), draft, "127.0.0.1")
	assert.ErrorIs(t, err, auth.ErrAdminOnly)

	// nothing was written, locally or remotely
	assert.Empty(t, svc.Snapshot())
	assert.Empty(t, store.events)

	// both denials left a failure audit entry
	assert.Len(t, audit.entries, 2)
	action, status := audit.last()
	assert.Equal(t, "EVENT_CREATED", action)
	assert.Equal(t, "failure", status)
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakeAudit{})

	_, err := svc.Create(context.Background(), adminSession(), Draft{Name: "   ", Date: "2025-03-15"}, "")
	assert.ErrorIs(t, err, ErrNameRequired)

	_, err = svc.Create(context.Background(), adminSession(), Draft{Name: "Meetup", Date: "2025-13-01"}, "")
	assert.ErrorIs(t, err, calendar.ErrInvalidDate)

	assert.Empty(t, svc.Snapshot())
}

func TestCreateCachesConfirmedRow(t *testing.T) {
	store := newFakeStore()
	audit := &fakeAudit{}
	svc := newTestService(store, audit)

	ev, err := svc.Create(context.Background(), adminSession(), Draft{Name: "  GopherCon  ", Date: "2025-03-15"}, "10.0.0.1")
	require.NoError(t, err)

	assert.Equal(t, "GopherCon", ev.Name)
	assert.Equal(t, "2025-03-15", ev.Date.String())
	assert.Equal(t, "admin-1", ev.CreatedBy)
	assert.NotEmpty(t, ev.Color)

	snap := svc.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, ev.ID, snap[0].ID)

	day, _ := calendar.Parse("2025-03-15")
	assert.Len(t, svc.EventsOn(day), 1)
	assert.Empty(t, svc.EventsOn(day.AddDays(1)))

	action, status := audit.last()
	assert.Equal(t, "EVENT_CREATED", action)
	assert.Equal(t, "success", status)
}

func TestCreateStoreFailureLeavesCacheUnchanged(t *testing.T) {
	store := newFakeStore()
	store.insertErr = errors.New("connection reset")
	audit := &fakeAudit{}
	svc := newTestService(store, audit)

	_, err := svc.Create(context.Background(), adminSession(), Draft{Name: "Meetup", Date: "2025-03-15"}, "")
	require.Error(t, err)
	assert.Empty(t, svc.Snapshot())

	_, status := audit.last()
	assert.Equal(t, "failure", status)
}

func TestLoadAllFailureKeepsPreviousCache(t *testing.T) {
	store := newFakeStore()
	store.seed(Event{ID: "e1", Name: "DevFest", Date: calendar.CivilDate{Year: 2025, Month: 6, Day: 1}})
	svc := newTestService(store, &fakeAudit{})

	events, err := svc.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)

	store.mu.Lock()
	store.listErr = errors.New("store unavailable")
	store.mu.Unlock()

	stale, err := svc.LoadAll(context.Background())
	require.Error(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, "e1", stale[0].ID)
}

func TestLoadAllReplacesCacheWholesale(t *testing.T) {
	store := newFakeStore()
	store.seed(Event{ID: "e1", Name: "DevFest", Date: calendar.CivilDate{Year: 2025, Month: 6, Day: 1}})
	store.seed(Event{ID: "e2", Name: "Hack Night", Date: calendar.CivilDate{Year: 2025, Month: 6, Day: 2}})
	svc := newTestService(store, &fakeAudit{})

	_, err := svc.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, svc.Snapshot(), 2)

	// e2 disappears remotely; the next load must drop it locally too
	require.NoError(t, store.Delete(context.Background(), "e2"))
	_, err = svc.LoadAll(context.Background())
	require.NoError(t, err)

	snap := svc.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, "e1", snap[0].ID)
}

func TestUpdatePreservesCachedRoster(t *testing.T) {
	store := newFakeStore()
	store.seed(Event{ID: "e1", Name: "DevFest", Date: calendar.CivilDate{Year: 2025, Month: 6, Day: 1}})
	svc := newTestService(store, &fakeAudit{})

	_, err := svc.LoadAll(context.Background())
	require.NoError(t, err)

	// the roster arrives via the list load and is owned by the interest ledger
	svc.mu.Lock()
	cached := svc.cache["e1"]
	cached.Interested = []auth.User{{ID: "user-1"}}
	svc.cache["e1"] = cached
	svc.mu.Unlock()

	newName := "DevFest Lima"
	_, err = svc.Update(context.Background(), adminSession(), "e1", Patch{Name: &newName}, "")
	require.NoError(t, err)

	snap := svc.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, "DevFest Lima", snap[0].Name)
	require.Len(t, snap[0].Interested, 1)
	assert.Equal(t, "user-1", snap[0].Interested[0].ID)
}

func TestUpdateMissingEvent(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakeAudit{})

	name := "Renamed"
	_, err := svc.Update(context.Background(), adminSession(), "nope", Patch{Name: &name}, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteClearsCacheAndNotifies(t *testing.T) {
	store := newFakeStore()
	audit := &fakeAudit{}
	svc := newTestService(store, audit)

	var dropped []string
	svc.OnDelete(func(id string) { dropped = append(dropped, id) })

	ev, err := svc.Create(context.Background(), adminSession(), Draft{Name: "Meetup", Date: "2025-03-15"}, "")
	require.NoError(t, err)
	require.Len(t, svc.Snapshot(), 1)

	require.NoError(t, svc.Delete(context.Background(), adminSession(), ev.ID, ""))

	assert.Empty(t, svc.Snapshot())
	assert.Empty(t, store.events)
	assert.Equal(t, []string{ev.ID}, dropped)

	action, status := audit.last()
	assert.Equal(t, "EVENT_DELETED", action)
	assert.Equal(t, "success", status)
}

func TestDeleteDeniedLeavesEverything(t *testing.T) {
	store := newFakeStore()
	store.seed(Event{ID: "e1", Name: "DevFest", Date: calendar.CivilDate{Year: 2025, Month: 6, Day: 1}})
	svc := newTestService(store, &fakeAudit{})
	_, err := svc.LoadAll(context.Background())
	require.NoError(t, err)

	err = svc.Delete(context.Background(), memberSession(), "e1", "")
	assert.ErrorIs(t, err, auth.ErrAdminOnly)
	assert.Len(t, svc.Snapshot(), 1)
	assert.Len(t, store.events, 1)
}

func TestColorStableAcrossLoads(t *testing.T) {
	c1 := colorFor("some-event-id")
	c2 := colorFor("some-event-id")
	assert.Equal(t, c1, c2)
	assert.Contains(t, palette, c1)
}
