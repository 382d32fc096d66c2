package playgames

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pscheid92/gamebridge/internal/domain"
	"golang.org/x/oauth2"
	"google.golang.org/api/games/v1"
	"google.golang.org/api/option"
)

// GamesClient calls the Play Games API with a player's own access token.
type GamesClient struct {
	httpClient *http.Client
	endpoint   string
	userAgent  string
	guard      *guard
}

var _ domain.GamesAPI = (*GamesClient)(nil)

func NewGamesClient(o Options) *GamesClient {
	return &GamesClient{
		httpClient: o.httpClient(),
		endpoint:   o.APIEndpoint,
		userAgent:  o.UserAgent,
		guard:      newGuard(o.Breaker, o.Metrics, o.Timeout),
	}
}

// service builds a games client authorised as the credential's owner. The
// refresh token is not handed to the token source, so these calls never
// refresh on their own.
func (c *GamesClient) service(ctx context.Context, cred domain.Credential) (*games.Service, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: cred.AccessToken,
		TokenType:   "Bearer",
		Expiry:      cred.Expiry,
	})
	authed := oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, c.httpClient), ts)

	opts := []option.ClientOption{option.WithHTTPClient(authed)}
	if c.endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.endpoint))
	}
	if c.userAgent != "" {
		opts = append(opts, option.WithUserAgent(c.userAgent))
	}

	svc, err := games.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create games service: %w", err)
	}
	return svc, nil
}

func (c *GamesClient) Verify(ctx context.Context, cred domain.Credential, applicationID string) (domain.VerifyResult, error) {
	svc, err := c.service(ctx, cred)
	if err != nil {
		return domain.VerifyResult{}, err
	}

	var resp *games.ApplicationVerifyResponse
	err = c.guard.run(ctx, callVerify, func(ctx context.Context) error {
		var err error
		resp, err = svc.Applications.Verify(applicationID).Context(ctx).Do()
		return err
	})
	if err != nil {
		return domain.VerifyResult{}, fmt.Errorf("verify application %q: %w", applicationID, err)
	}

	return domain.VerifyResult{
		PlayerID:          resp.PlayerId,
		AlternatePlayerID: resp.AlternatePlayerId,
	}, nil
}

func (c *GamesClient) GetPlayer(ctx context.Context, cred domain.Credential, playerID string) (domain.UpstreamPlayer, error) {
	svc, err := c.service(ctx, cred)
	if err != nil {
		return domain.UpstreamPlayer{}, err
	}

	var resp *games.Player
	err = c.guard.run(ctx, callGetPlayer, func(ctx context.Context) error {
		var err error
		resp, err = svc.Players.Get(playerID).Context(ctx).Do()
		return err
	})
	if err != nil {
		return domain.UpstreamPlayer{}, fmt.Errorf("get player %q: %w", playerID, err)
	}

	p := domain.UpstreamPlayer{
		PlayerID:         resp.PlayerId,
		OriginalPlayerID: resp.OriginalPlayerId,
		DisplayName:      resp.DisplayName,
		Title:            resp.Title,
	}
	if resp.ProfileSettings != nil {
		p.ProfileVisible = resp.ProfileSettings.ProfileVisible
	}
	return p, nil
}
