package event

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/angelolev/tech-calendar/internal/auditlog"
	"github.com/angelolev/tech-calendar/internal/auth"
	"github.com/angelolev/tech-calendar/internal/calendar"
	"github.com/angelolev/tech-calendar/utils"
)

// listCacheKey holds the serialized events+roster payload in Redis.
const listCacheKey = "events:all"

// Service is the event repository: an in-memory cache of event records kept
// in sync with the store. The cache is mutated only by this service, and only
// after the store confirms a write; there is no optimistic phase to roll back.
type Service struct {
	store    Store
	auditSvc auditlog.Service
	cacheTTL time.Duration

	mu    sync.RWMutex
	cache map[string]Event
	order []string // store return order of the last load, then insertion order

	// per-id in-flight guards: concurrent mutations of the same event queue
	// rather than interleave. Creates serialize on their own guard.
	guards   sync.Map
	createMu sync.Mutex

	listenerMu      sync.Mutex
	deleteListeners []func(eventID string)
}

func NewService(store Store, auditSvc auditlog.Service, cacheTTL time.Duration) *Service {
	return &Service{
		store:    store,
		auditSvc: auditSvc,
		cacheTTL: cacheTTL,
		cache:    make(map[string]Event),
	}
}

// OnDelete registers a listener invoked after an event is confirmed deleted.
// The interest ledger uses this to drop per-event state, and the API layer
// to tell clients to dismiss open detail views.
func (s *Service) OnDelete(listener func(eventID string)) {
	s.listenerMu.Lock()
	defer s.listenerMu.Unlock()
	s.deleteListeners = append(s.deleteListeners, listener)
}

// ===========================
// 📄 LoadAll
//
// Read-through: Redis first, then the store. On success the cache is
// replaced wholesale; entries missing from the new result are dropped. On
// store failure the previous cache is kept and returned alongside the error,
// so a transient read failure degrades to stale data instead of a blank view.
func (s *Service) LoadAll(ctx context.Context) ([]Event, error) {
	var cached []Event
	if err := utils.CacheGetJSON(ctx, listCacheKey, &cached); err == nil {
		s.replaceCache(cached)
		return cached, nil
	}

	events, err := s.store.ListWithRoster(ctx)
	if err != nil {
		log.Printf("⚠️ event load failed, keeping previous cache: %v", err)
		return s.Snapshot(), fmt.Errorf("load events: %w", err)
	}

	s.replaceCache(events)
	if err := utils.CacheSetJSON(ctx, listCacheKey, events, s.cacheTTL); err != nil {
		log.Printf("⚠️ event list cache write failed: %v", err)
	}
	return events, nil
}

// Snapshot returns the cached events in load order.
func (s *Service) Snapshot() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Event, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.cache[id])
	}
	return out
}

// EventsOn filters the cache by civil-day equality. No sorting: per-cell
// order is the store's return order.
func (s *Service) EventsOn(day calendar.CivilDate) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Event
	for _, id := range s.order {
		if e := s.cache[id]; calendar.SameDay(e.Date, day) {
			out = append(out, e)
		}
	}
	return out
}

// ===========================
// 🎯 Create
func (s *Service) Create(ctx context.Context, session auth.Session, draft Draft, ip string) (*Event, error) {
	if err := s.gate(ctx, session, "EVENT_CREATED", nil, map[string]interface{}{"name": draft.Name}, ip); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(draft.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	date, err := calendar.Parse(draft.Date)
	if err != nil {
		return nil, err
	}

	s.createMu.Lock()
	defer s.createMu.Unlock()

	ev := &Event{
		ID:        uuid.New().String(),
		Name:      name,
		Link:      draft.Link,
		WhatsApp:  draft.WhatsApp,
		Date:      date,
		CreatedBy: session.UserID(),
	}

	if err := s.store.Insert(ctx, ev); err != nil {
		s.logAudit(ctx, session, nil, "EVENT_CREATED", map[string]interface{}{"name": name, "error": err.Error()}, ip, "failure")
		return nil, err
	}

	// cache from the store's confirmed row, never from the draft, so
	// server-assigned fields are authoritative
	confirmed, err := s.store.Get(ctx, ev.ID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cache[confirmed.ID] = *confirmed
	s.order = append(s.order, confirmed.ID)
	s.mu.Unlock()

	s.invalidateListCache(ctx)
	s.logAudit(ctx, session, &confirmed.ID, "EVENT_CREATED", map[string]interface{}{
		"name": confirmed.Name,
		"date": confirmed.Date.String(),
	}, ip, "success")

	return confirmed, nil
}

// ===========================
// 🛠 Update
func (s *Service) Update(ctx context.Context, session auth.Session, id string, patch Patch, ip string) (*Event, error) {
	if err := s.gate(ctx, session, "EVENT_UPDATED", &id, nil, ip); err != nil {
		return nil, err
	}

	fields := make(map[string]interface{})
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		fields["name"] = name
	}
	if patch.Link != nil {
		fields["link"] = *patch.Link
	}
	if patch.WhatsApp != nil {
		fields["whatsapp"] = *patch.WhatsApp
	}
	if patch.Date != nil {
		date, err := calendar.Parse(*patch.Date)
		if err != nil {
			return nil, err
		}
		fields["date"] = date
	}

	guard := s.guard(id)
	guard.Lock()
	defer guard.Unlock()

	if len(fields) == 0 {
		return s.store.Get(ctx, id)
	}

	confirmed, err := s.store.UpdateFields(ctx, id, fields)
	if err != nil {
		s.logAudit(ctx, session, &id, "EVENT_UPDATED", map[string]interface{}{"error": err.Error()}, ip, "failure")
		return nil, err
	}

	// merge the confirmed fields into the cached record; the interested
	// roster is owned by the interest ledger and left untouched here
	s.mu.Lock()
	if cached, ok := s.cache[id]; ok {
		merged := *confirmed
		merged.Interested = cached.Interested
		s.cache[id] = merged
	} else {
		s.cache[id] = *confirmed
		s.order = append(s.order, id)
	}
	s.mu.Unlock()

	s.invalidateListCache(ctx)
	s.logAudit(ctx, session, &id, "EVENT_UPDATED", map[string]interface{}{
		"name": confirmed.Name,
		"date": confirmed.Date.String(),
	}, ip, "success")

	return confirmed, nil
}

// ===========================
// ❌ Delete
func (s *Service) Delete(ctx context.Context, session auth.Session, id string, ip string) error {
	if err := s.gate(ctx, session, "EVENT_DELETED", &id, nil, ip); err != nil {
		return err
	}

	guard := s.guard(id)
	guard.Lock()
	defer guard.Unlock()

	if err := s.store.Delete(ctx, id); err != nil {
		s.logAudit(ctx, session, &id, "EVENT_DELETED", map[string]interface{}{"error": err.Error()}, ip, "failure")
		return err
	}

	s.mu.Lock()
	delete(s.cache, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	s.invalidateListCache(ctx)
	s.guards.Delete(id)

	s.listenerMu.Lock()
	listeners := make([]func(string), len(s.deleteListeners))
	copy(listeners, s.deleteListeners)
	s.listenerMu.Unlock()
	for _, notify := range listeners {
		notify(id)
	}

	s.logAudit(ctx, session, &id, "EVENT_DELETED", nil, ip, "success")
	return nil
}

// gate re-checks the session on every mutating call; denied attempts are
// audited so role violations stay loud.
func (s *Service) gate(ctx context.Context, session auth.Session, action string, eventID *string, details map[string]interface{}, ip string) error {
	if !session.IsAuthenticated() {
		s.logAuditDenied(ctx, session, eventID, action, details, ip, auth.ErrNotAuthenticated)
		return auth.ErrNotAuthenticated
	}
	if !session.IsAdmin() {
		s.logAuditDenied(ctx, session, eventID, action, details, ip, auth.ErrAdminOnly)
		return auth.ErrAdminOnly
	}
	return nil
}

func (s *Service) guard(id string) *sync.Mutex {
	mu, _ := s.guards.LoadOrStore(id, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func (s *Service) replaceCache(events []Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]Event, len(events))
	s.order = make([]string, 0, len(events))
	for _, e := range events {
		s.cache[e.ID] = e
		s.order = append(s.order, e.ID)
	}
}

func (s *Service) invalidateListCache(ctx context.Context) {
	if err := utils.CacheInvalidate(ctx, listCacheKey); err != nil {
		log.Printf("⚠️ event list cache invalidation failed: %v", err)
	}
}

func (s *Service) logAudit(ctx context.Context, session auth.Session, eventID *string, action string, details map[string]interface{}, ip, status string) {
	if s.auditSvc == nil {
		return
	}
	var userID *string
	if session.IsAuthenticated() {
		id := session.UserID()
		userID = &id
	}
	if err := s.auditSvc.LogAction(ctx, userID, eventID, action, details, ip, status); err != nil {
		log.Printf("⚠️ audit write failed for %s: %v", action, err)
	}
}

func (s *Service) logAuditDenied(ctx context.Context, session auth.Session, eventID *string, action string, details map[string]interface{}, ip string, cause error) {
	if details == nil {
		details = make(map[string]interface{})
	}
	details["error"] = cause.Error()
	s.logAudit(ctx, session, eventID, action, details, ip, "failure")
}
