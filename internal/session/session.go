package session

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/segmentio/ksuid"

	"github.com/aichampion/hall/internal/domain"
	"github.com/aichampion/hall/internal/ledger"
)

// Session is the explicit per-browser-session context: the ownership ledger,
// the refinement memo, a generation counter for stale-response detection, and
// the session's local view of refined champions. It replaces what the browser
// kept in module-level singletons.
type Session struct {
	ID     string
	Ledger *ledger.Ledger

	mu         sync.Mutex
	phases     map[string]domain.RefinementPhase
	generation int64
	view       map[string]domain.Champion
}

func newSession(id string, store ledger.PersistentStore) *Session {
	return &Session{
		ID:     id,
		Ledger: ledger.New(id, store),
		phases: make(map[string]domain.RefinementPhase),
		view:   make(map[string]domain.Champion),
	}
}

// Phase returns the refinement phase recorded for a champion this session.
func (s *Session) Phase(championID string) domain.RefinementPhase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phases[championID]
}

// OpenDetail registers a detail view: the generation advances so responses
// belonging to a previously open record can be told apart, and the champion's
// phase transitions per the workflow state machine. start is true only when
// this call moved the phase into Refining, i.e. exactly once per session per
// champion, and never while a pass is already in flight.
func (s *Session) OpenDetail(championID string, need bool) (start bool, generation int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++

	current := s.phases[championID]
	next := current.Begin(need)
	s.phases[championID] = next

	return current == domain.PhaseUnchecked && next == domain.PhaseRefining, s.generation
}

// SettleRefinement marks the in-flight pass finished.
func (s *Session) SettleRefinement(championID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phases[championID] = s.phases[championID].Settle()
}

// ApplyView keeps an unpersisted refined champion in session view state,
// unless the session has since moved on to another record (stale generation).
// Reports whether the merge was applied.
func (s *Session) ApplyView(c domain.Champion, generation int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generation {
		return false
	}
	s.view[c.ID] = c
	return true
}

// ClearView drops the session's local copy of a champion. Called whenever a
// write to the store succeeds, so the store row is served again.
func (s *Session) ClearView(championID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.view, championID)
}

// ViewOf returns the session's local copy of a champion, if any. This is
// where enhanced values live when the store write failed.
func (s *Session) ViewOf(championID string) (domain.Champion, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.view[championID]
	return c, ok
}

// RecordView stores a champion into view state regardless of generation,
// used when a user-initiated refinement could not be persisted.
func (s *Session) RecordView(c domain.Champion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view[c.ID] = c
}

// Registry hands out sessions keyed by an opaque session id, expiring them
// after the configured idle TTL.
type Registry struct {
	sessions *cache.Cache
	store    ledger.PersistentStore
	ttl      time.Duration

	mu sync.Mutex
}

func NewRegistry(store ledger.PersistentStore, ttl time.Duration) *Registry {
	return &Registry{
		sessions: cache.New(ttl, 2*ttl),
		store:    store,
		ttl:      ttl,
	}
}

// NewID mints an opaque session identifier.
func (r *Registry) NewID() string {
	return "sess_" + ksuid.New().String()
}

// Get returns the session for an id, creating it on first sight. Creation is
// serialized so two concurrent requests with a fresh id share one session.
func (r *Registry) Get(id string) *Session {
	if cached, ok := r.sessions.Get(id); ok {
		return cached.(*Session)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if cached, ok := r.sessions.Get(id); ok {
		return cached.(*Session)
	}
	s := newSession(id, r.store)
	r.sessions.Set(id, s, cache.DefaultExpiration)
	return s
}
