package playgames

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pscheid92/gamebridge/internal/domain"
	"golang.org/x/oauth2"
)

// Exchanger redeems auth codes at the OAuth token endpoint. Codes are single
// use, so a failed exchange is never retried.
type Exchanger struct {
	cfg        *oauth2.Config
	appID      string
	httpClient *http.Client
	guard      *guard
}

var _ domain.TokenExchanger = (*Exchanger)(nil)

func (e *Exchanger) ApplicationID() string {
	return e.appID
}

func (e *Exchanger) Exchange(ctx context.Context, authCode string) (domain.Credential, error) {
	var tok *oauth2.Token
	err := e.guard.run(ctx, callToken, func(ctx context.Context) error {
		var err error
		tok, err = e.cfg.Exchange(context.WithValue(ctx, oauth2.HTTPClient, e.httpClient), authCode)
		return err
	})
	if err != nil {
		return domain.Credential{}, fmt.Errorf("exchange auth code: %w", err)
	}

	return domain.Credential{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
	}, nil
}

// misconfigured stands in for the Exchanger when the client secrets could
// not be loaded at startup.
type misconfigured struct {
	cause error
}

func (m misconfigured) ApplicationID() string { return "" }

func (m misconfigured) Exchange(context.Context, string) (domain.Credential, error) {
	return domain.Credential{}, m.cause
}
