package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/gamebridge/internal/domain"
	"github.com/pscheid92/gamebridge/internal/platform/crypto"
	goredis "github.com/redis/go-redis/v9"
)

// playerDocument is the stored shape. Token fields hold crypto.Service output.
type playerDocument struct {
	PlayerID         string `json:"player_id"`
	AltPlayerID      string `json:"alt_player_id,omitempty"`
	DisplayName      string `json:"display_name,omitempty"`
	Title            string `json:"title,omitempty"`
	VisibleProfile   bool   `json:"visible_profile"`
	NeedRefreshToken bool   `json:"need_refresh_token"`
	HasCredential    bool   `json:"has_credential"`
	AccessToken      string `json:"access_token,omitempty"`
	RefreshToken     string `json:"refresh_token,omitempty"`
	TokenExpiry      int64  `json:"token_expiry,omitempty"`
	CreatedAt        int64  `json:"created_at"`
	UpdatedAt        int64  `json:"updated_at"`
}

type PlayerRepo struct {
	rdb    goredis.Cmdable
	crypto crypto.Service
	clock  clockwork.Clock
}

var _ domain.PlayerRepository = (*PlayerRepo)(nil)

func NewPlayerRepo(rdb goredis.Cmdable, cryptoSvc crypto.Service, clock clockwork.Clock) *PlayerRepo {
	return &PlayerRepo{rdb: rdb, crypto: cryptoSvc, clock: clock}
}

func playerKey(playerID string) string {
	return "player:" + playerID
}

func (r *PlayerRepo) Lookup(ctx context.Context, playerID string) (*domain.Player, error) {
	raw, err := r.rdb.Get(ctx, playerKey(playerID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, domain.ErrPlayerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return r.decode(raw)
}

func (r *PlayerRepo) CreateIfAbsent(ctx context.Context, playerID string) (*domain.Player, error) {
	raw, err := r.encode(domain.NewPlayer(playerID, r.clock.Now()))
	if err != nil {
		return nil, err
	}

	if err := r.rdb.SetNX(ctx, playerKey(playerID), raw, 0).Err(); err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}
	return r.Lookup(ctx, playerID)
}

func (r *PlayerRepo) Save(ctx context.Context, player *domain.Player) error {
	stored := player.Clone()
	stored.UpdatedAt = r.clock.Now()

	raw, err := r.encode(stored)
	if err != nil {
		return err
	}
	if err := r.rdb.Set(ctx, playerKey(player.PlayerID), raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to save player: %w", err)
	}
	return nil
}

func (r *PlayerRepo) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

func (r *PlayerRepo) encode(p *domain.Player) ([]byte, error) {
	doc := playerDocument{
		PlayerID:         p.PlayerID,
		AltPlayerID:      p.AltPlayerID,
		DisplayName:      p.DisplayName,
		Title:            p.Title,
		VisibleProfile:   p.VisibleProfile,
		NeedRefreshToken: p.NeedRefreshToken,
		CreatedAt:        p.CreatedAt.UnixMilli(),
		UpdatedAt:        p.UpdatedAt.UnixMilli(),
	}

	if p.Credential != nil {
		access, err := r.crypto.Encrypt(p.Credential.AccessToken)
		if err != nil {
			return nil, fmt.Errorf("failed to encrypt access token: %w", err)
		}
		refresh, err := r.crypto.Encrypt(p.Credential.RefreshToken)
		if err != nil {
			return nil, fmt.Errorf("failed to encrypt refresh token: %w", err)
		}
		doc.HasCredential = true
		doc.AccessToken = access
		doc.RefreshToken = refresh
		if !p.Credential.Expiry.IsZero() {
			doc.TokenExpiry = p.Credential.Expiry.UnixMilli()
		}
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal player: %w", err)
	}
	return raw, nil
}

func (r *PlayerRepo) decode(raw []byte) (*domain.Player, error) {
	var doc playerDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal player: %w", err)
	}

	p := &domain.Player{
		PlayerID:         doc.PlayerID,
		AltPlayerID:      doc.AltPlayerID,
		DisplayName:      doc.DisplayName,
		Title:            doc.Title,
		VisibleProfile:   doc.VisibleProfile,
		NeedRefreshToken: doc.NeedRefreshToken,
		CreatedAt:        time.UnixMilli(doc.CreatedAt).UTC(),
		UpdatedAt:        time.UnixMilli(doc.UpdatedAt).UTC(),
	}

	if doc.HasCredential {
		access, err := r.crypto.Decrypt(doc.AccessToken)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt access token: %w", err)
		}
		refresh, err := r.crypto.Decrypt(doc.RefreshToken)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt refresh token: %w", err)
		}
		cred := &domain.Credential{AccessToken: access, RefreshToken: refresh}
		if doc.TokenExpiry != 0 {
			cred.Expiry = time.UnixMilli(doc.TokenExpiry).UTC()
		}
		// Stored flag wins over recomputation so a record reads back exactly as saved.
		p.Credential = cred
	}

	return p, nil
}
