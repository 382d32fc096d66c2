package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pscheid92/gamebridge/internal/domain"
	goredis "github.com/redis/go-redis/v9"
)

// SessionRepo stores session bindings as plain keys with a Redis TTL.
type SessionRepo struct {
	rdb goredis.Cmdable
}

var _ domain.SessionRepository = (*SessionRepo)(nil)

func NewSessionRepo(rdb goredis.Cmdable) *SessionRepo {
	return &SessionRepo{rdb: rdb}
}

func sessionKey(sessionID string) string {
	return "session:" + sessionID
}

func (r *SessionRepo) Load(ctx context.Context, sessionID string) (string, error) {
	playerID, err := r.rdb.Get(ctx, sessionKey(sessionID)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", domain.ErrSessionNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to load session: %w", err)
	}
	return playerID, nil
}

// Save stores the binding; ttl <= 0 keeps it until Delete.
func (r *SessionRepo) Save(ctx context.Context, sessionID, playerID string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := r.rdb.Set(ctx, sessionKey(sessionID), playerID, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *SessionRepo) Delete(ctx context.Context, sessionID string) error {
	if err := r.rdb.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
