package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/gamebridge/internal/domain"
)

type sessionEntry struct {
	playerID  string
	expiresAt time.Time
}

type SessionRepo struct {
	mu       sync.Mutex
	sessions map[string]sessionEntry
	clock    clockwork.Clock
}

var _ domain.SessionRepository = (*SessionRepo)(nil)

func NewSessionRepo(clock clockwork.Clock) *SessionRepo {
	return &SessionRepo{
		sessions: make(map[string]sessionEntry),
		clock:    clock,
	}
}

func (r *SessionRepo) Load(_ context.Context, sessionID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.sessions[sessionID]
	if !ok {
		return "", domain.ErrSessionNotFound
	}
	if !entry.expiresAt.IsZero() && !r.clock.Now().Before(entry.expiresAt) {
		delete(r.sessions, sessionID)
		return "", domain.ErrSessionNotFound
	}
	return entry.playerID, nil
}

// Save stores the binding; ttl <= 0 keeps it until Delete.
func (r *SessionRepo) Save(_ context.Context, sessionID, playerID string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry := sessionEntry{playerID: playerID}
	if ttl > 0 {
		entry.expiresAt = r.clock.Now().Add(ttl)
	}
	r.sessions[sessionID] = entry
	return nil
}

func (r *SessionRepo) Delete(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, sessionID)
	return nil
}

// EvictExpired drops expired bindings and returns how many were removed.
func (r *SessionRepo) EvictExpired() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()
	evicted := 0
	for id, entry := range r.sessions {
		if !entry.expiresAt.IsZero() && !now.Before(entry.expiresAt) {
			delete(r.sessions, id)
			evicted++
		}
	}
	return evicted
}
