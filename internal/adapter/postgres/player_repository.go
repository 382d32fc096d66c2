package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/gamebridge/internal/domain"
	"github.com/pscheid92/gamebridge/internal/platform/crypto"
)

const playerColumns = `player_id, alt_player_id, display_name, title, visible_profile,
	need_refresh_token, access_token, refresh_token, token_expiry, created_at, updated_at`

type PlayerRepo struct {
	pool   *pgxpool.Pool
	crypto crypto.Service
	clock  clockwork.Clock
}

var _ domain.PlayerRepository = (*PlayerRepo)(nil)

func NewPlayerRepo(pool *pgxpool.Pool, cryptoSvc crypto.Service, clock clockwork.Clock) *PlayerRepo {
	return &PlayerRepo{pool: pool, crypto: cryptoSvc, clock: clock}
}

func (r *PlayerRepo) Lookup(ctx context.Context, playerID string) (*domain.Player, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+playerColumns+` FROM players WHERE player_id = $1`, playerID)
	p, err := r.scan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrPlayerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return p, nil
}

func (r *PlayerRepo) CreateIfAbsent(ctx context.Context, playerID string) (*domain.Player, error) {
	now := r.clock.Now()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO players (player_id, need_refresh_token, created_at, updated_at)
		VALUES ($1, TRUE, $2, $2)
		ON CONFLICT (player_id) DO NOTHING`, playerID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}
	return r.Lookup(ctx, playerID)
}

func (r *PlayerRepo) Save(ctx context.Context, p *domain.Player) error {
	var access, refresh *string
	var expiry *time.Time
	if p.Credential != nil {
		a, err := r.crypto.Encrypt(p.Credential.AccessToken)
		if err != nil {
			return fmt.Errorf("failed to encrypt access token: %w", err)
		}
		rt, err := r.crypto.Encrypt(p.Credential.RefreshToken)
		if err != nil {
			return fmt.Errorf("failed to encrypt refresh token: %w", err)
		}
		access, refresh = &a, &rt
		if !p.Credential.Expiry.IsZero() {
			expiry = &p.Credential.Expiry
		}
	}

	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = r.clock.Now()
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO players (`+playerColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (player_id) DO UPDATE SET
			alt_player_id      = EXCLUDED.alt_player_id,
			display_name       = EXCLUDED.display_name,
			title              = EXCLUDED.title,
			visible_profile    = EXCLUDED.visible_profile,
			need_refresh_token = EXCLUDED.need_refresh_token,
			access_token       = EXCLUDED.access_token,
			refresh_token      = EXCLUDED.refresh_token,
			token_expiry       = EXCLUDED.token_expiry,
			updated_at         = EXCLUDED.updated_at`,
		p.PlayerID, p.AltPlayerID, p.DisplayName, p.Title, p.VisibleProfile,
		p.NeedRefreshToken, access, refresh, expiry, createdAt, r.clock.Now())
	if err != nil {
		return fmt.Errorf("failed to save player: %w", err)
	}
	return nil
}

func (r *PlayerRepo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *PlayerRepo) scan(row pgx.Row) (*domain.Player, error) {
	var (
		p               domain.Player
		access, refresh *string
		expiry          *time.Time
	)
	err := row.Scan(&p.PlayerID, &p.AltPlayerID, &p.DisplayName, &p.Title, &p.VisibleProfile,
		&p.NeedRefreshToken, &access, &refresh, &expiry, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if access != nil {
		cred := &domain.Credential{}
		if cred.AccessToken, err = r.crypto.Decrypt(*access); err != nil {
			return nil, fmt.Errorf("failed to decrypt access token: %w", err)
		}
		if refresh != nil {
			if cred.RefreshToken, err = r.crypto.Decrypt(*refresh); err != nil {
				return nil, fmt.Errorf("failed to decrypt refresh token: %w", err)
			}
		}
		if expiry != nil {
			cred.Expiry = *expiry
		}
		p.Credential = cred
	}
	return &p, nil
}
