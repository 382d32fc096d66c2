package domain

import (
	"context"
	"time"
)

// SessionRepository keeps the server-side half of an HTTP session: the
// player id the session is bound to. The browser only holds the session id.
type SessionRepository interface {
	Load(ctx context.Context, sessionID string) (playerID string, err error)
	Save(ctx context.Context, sessionID, playerID string, ttl time.Duration) error
	Delete(ctx context.Context, sessionID string) error
}
