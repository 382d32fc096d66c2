package domain

import (
	"context"
	"time"
)

// Credential is the OAuth token bundle obtained from an auth code exchange.
// RefreshToken is empty when the provider did not issue one.
type Credential struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
}

// Player is one authenticated end user as known to the backend.
type Player struct {
	PlayerID string
	// AltPlayerID is only used while migrating to the games-lite id namespace.
	AltPlayerID    string
	DisplayName    string
	Title          string
	VisibleProfile bool
	Credential     *Credential
	// NeedRefreshToken tells the client to force re-consent on its next
	// sign-in so that a refresh token is issued.
	NeedRefreshToken bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewPlayer returns the empty shell stored for a player id seen for the first time.
func NewPlayer(playerID string, now time.Time) *Player {
	return &Player{
		PlayerID:         playerID,
		NeedRefreshToken: true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// SetCredential replaces the credential and recomputes NeedRefreshToken.
func (p *Player) SetCredential(cred Credential) {
	p.Credential = &cred
	p.NeedRefreshToken = cred.RefreshToken == ""
}

// HasCredential reports whether an exchange has succeeded for this player.
func (p *Player) HasCredential() bool {
	return p.Credential != nil
}

// Clone returns a deep copy so callers can mutate a working copy without
// touching a stored record.
func (p *Player) Clone() *Player {
	c := *p
	if p.Credential != nil {
		cred := *p.Credential
		c.Credential = &cred
	}
	return &c
}

// PlayerRepository is the identity record store. Implementations return
// copies; mutations only become visible through Save.
type PlayerRepository interface {
	Lookup(ctx context.Context, playerID string) (*Player, error)
	CreateIfAbsent(ctx context.Context, playerID string) (*Player, error)
	Save(ctx context.Context, player *Player) error
	Ping(ctx context.Context) error
}
