package ledger

import (
	"context"
	"log/slog"
	"sync"
)

// PersistentStore is the durable list backing a session's ownership ledger.
// Implementations hold one de-duplicated id list per session.
type PersistentStore interface {
	Load(ctx context.Context, sessionID string) ([]string, error)
	Store(ctx context.Context, sessionID string, ids []string) error
}

// Ledger answers "may this session mutate champion X". It is a convenience
// flag, not a security boundary: the in-memory set is authoritative for the
// session, and the persistent store is best-effort. Storage failures always
// degrade to in-memory behavior, never to an error.
type Ledger struct {
	sessionID string
	store     PersistentStore

	mu    sync.Mutex
	owned map[string]struct{}
}

func New(sessionID string, store PersistentStore) *Ledger {
	return &Ledger{
		sessionID: sessionID,
		store:     store,
		owned:     make(map[string]struct{}),
	}
}

// IsOwner checks the in-memory set first, then falls back to the persisted
// list, back-filling the set on a hit. It never returns an error.
func (l *Ledger) IsOwner(ctx context.Context, id string) bool {
	l.mu.Lock()
	_, ok := l.owned[id]
	l.mu.Unlock()
	if ok {
		return true
	}

	if l.store == nil {
		return false
	}

	ids, err := l.store.Load(ctx, l.sessionID)
	if err != nil {
		slog.Debug("ownership store unavailable", "session", l.sessionID, "error", err)
		return false
	}
	for _, owned := range ids {
		if owned == id {
			l.mu.Lock()
			l.owned[id] = struct{}{}
			l.mu.Unlock()
			return true
		}
	}
	return false
}

// Grant records ownership in memory unconditionally and appends to the
// persisted list de-duplicated. A persistence failure is logged and
// swallowed; the in-memory grant holds for the rest of the session.
func (l *Ledger) Grant(ctx context.Context, id string) {
	l.mu.Lock()
	l.owned[id] = struct{}{}
	l.mu.Unlock()

	if l.store == nil {
		return
	}

	ids, err := l.store.Load(ctx, l.sessionID)
	if err != nil {
		slog.Warn("ownership grant not persisted", "session", l.sessionID, "champion", id, "error", err)
		return
	}
	for _, owned := range ids {
		if owned == id {
			return
		}
	}
	ids = append(ids, id)
	if err := l.store.Store(ctx, l.sessionID, ids); err != nil {
		slog.Warn("ownership grant not persisted", "session", l.sessionID, "champion", id, "error", err)
	}
}

// Revoke removes the id from both the in-memory set and the persisted list.
func (l *Ledger) Revoke(ctx context.Context, id string) {
	l.mu.Lock()
	delete(l.owned, id)
	l.mu.Unlock()

	if l.store == nil {
		return
	}

	ids, err := l.store.Load(ctx, l.sessionID)
	if err != nil {
		slog.Debug("ownership revoke not persisted", "session", l.sessionID, "champion", id, "error", err)
		return
	}
	filtered := ids[:0]
	for _, owned := range ids {
		if owned != id {
			filtered = append(filtered, owned)
		}
	}
	if len(filtered) == len(ids) {
		return
	}
	if err := l.store.Store(ctx, l.sessionID, filtered); err != nil {
		slog.Debug("ownership revoke not persisted", "session", l.sessionID, "champion", id, "error", err)
	}
}
