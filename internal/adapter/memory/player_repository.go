// Package memory holds process-local implementations of the domain stores.
// Everything is lost on restart.
package memory

import (
	"context"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/gamebridge/internal/domain"
)

type PlayerRepo struct {
	mu      sync.RWMutex
	players map[string]*domain.Player
	clock   clockwork.Clock
}

var _ domain.PlayerRepository = (*PlayerRepo)(nil)

func NewPlayerRepo(clock clockwork.Clock) *PlayerRepo {
	return &PlayerRepo{
		players: make(map[string]*domain.Player),
		clock:   clock,
	}
}

func (r *PlayerRepo) Lookup(_ context.Context, playerID string) (*domain.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.players[playerID]
	if !ok {
		return nil, domain.ErrPlayerNotFound
	}
	return p.Clone(), nil
}

func (r *PlayerRepo) CreateIfAbsent(_ context.Context, playerID string) (*domain.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.players[playerID]
	if !ok {
		p = domain.NewPlayer(playerID, r.clock.Now())
		r.players[playerID] = p
	}
	return p.Clone(), nil
}

func (r *PlayerRepo) Save(_ context.Context, player *domain.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := player.Clone()
	stored.UpdatedAt = r.clock.Now()
	r.players[player.PlayerID] = stored
	return nil
}

func (r *PlayerRepo) Ping(context.Context) error { return nil }

// Len reports the number of stored records.
func (r *PlayerRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.players)
}
