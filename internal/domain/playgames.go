package domain

import "context"

// VerifyResult is what applications.verify reports for an access token.
type VerifyResult struct {
	PlayerID          string
	AlternatePlayerID string
}

// UpstreamPlayer is the subset of players.get the backend keeps.
type UpstreamPlayer struct {
	PlayerID         string
	OriginalPlayerID string
	DisplayName      string
	Title            string
	ProfileVisible   bool
}

// TokenExchanger redeems a single-use auth code for a credential.
type TokenExchanger interface {
	Exchange(ctx context.Context, authCode string) (Credential, error)
	ApplicationID() string
}

// GamesAPI is the Play Games surface the backend calls on a player's behalf.
type GamesAPI interface {
	Verify(ctx context.Context, cred Credential, applicationID string) (VerifyResult, error)
	GetPlayer(ctx context.Context, cred Credential, playerID string) (UpstreamPlayer, error)
}
