package app

import (
	"fmt"

	"github.com/pscheid92/gamebridge/internal/domain"
)

// applyVerification checks that the token belongs to p, either by primary id
// or by a non-empty alternate id, and records the upstream alternate id.
func applyVerification(p *domain.Player, v domain.VerifyResult) error {
	primary := v.PlayerID != "" && v.PlayerID == p.PlayerID
	alternate := v.AlternatePlayerID != "" && v.AlternatePlayerID == p.AltPlayerID
	if !primary && !alternate {
		return fmt.Errorf("%w: verify reported %q for player %q", domain.ErrIdentityMismatch, v.PlayerID, p.PlayerID)
	}

	p.AltPlayerID = v.AlternatePlayerID
	return nil
}

// applyProfile copies the profile and follows a games-lite id migration. When
// the upstream id changed, the record's id must be the upstream original id
// and the new id becomes the alternate id.
func applyProfile(p *domain.Player, u domain.UpstreamPlayer) error {
	p.DisplayName = u.DisplayName
	p.Title = u.Title
	p.VisibleProfile = u.ProfileVisible

	switch {
	case u.PlayerID != p.PlayerID:
		if u.OriginalPlayerID != p.PlayerID {
			return fmt.Errorf("%w: players.get reported %q (original %q) for player %q",
				domain.ErrIdentityMismatch, u.PlayerID, u.OriginalPlayerID, p.PlayerID)
		}
		p.AltPlayerID = u.PlayerID
	case u.OriginalPlayerID != "" && u.OriginalPlayerID != p.AltPlayerID:
		p.AltPlayerID = u.OriginalPlayerID
	}
	return nil
}
