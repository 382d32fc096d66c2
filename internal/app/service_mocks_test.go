package app

import (
	"context"
	"fmt"

	"github.com/pscheid92/gamebridge/internal/domain"
)

type mockExchanger struct {
	appID      string
	exchangeFn func(ctx context.Context, authCode string) (domain.Credential, error)
}

func (m *mockExchanger) ApplicationID() string { return m.appID }

func (m *mockExchanger) Exchange(ctx context.Context, authCode string) (domain.Credential, error) {
	if m.exchangeFn != nil {
		return m.exchangeFn(ctx, authCode)
	}
	return domain.Credential{}, fmt.Errorf("not implemented")
}

type mockGamesAPI struct {
	verifyFn    func(ctx context.Context, cred domain.Credential, applicationID string) (domain.VerifyResult, error)
	getPlayerFn func(ctx context.Context, cred domain.Credential, playerID string) (domain.UpstreamPlayer, error)
}

func (m *mockGamesAPI) Verify(ctx context.Context, cred domain.Credential, applicationID string) (domain.VerifyResult, error) {
	if m.verifyFn != nil {
		return m.verifyFn(ctx, cred, applicationID)
	}
	return domain.VerifyResult{}, fmt.Errorf("not implemented")
}

func (m *mockGamesAPI) GetPlayer(ctx context.Context, cred domain.Credential, playerID string) (domain.UpstreamPlayer, error) {
	if m.getPlayerFn != nil {
		return m.getPlayerFn(ctx, cred, playerID)
	}
	return domain.UpstreamPlayer{}, fmt.Errorf("not implemented")
}

type mockRecorder struct {
	outcomes []string
}

func (m *mockRecorder) RecordOutcome(outcome string) {
	m.outcomes = append(m.outcomes, outcome)
}

// happyUpstream returns collaborators that accept any code for playerID.
func happyUpstream(playerID string, cred domain.Credential) (*mockExchanger, *mockGamesAPI) {
	ex := &mockExchanger{
		appID: "123456789",
		exchangeFn: func(context.Context, string) (domain.Credential, error) {
			return cred, nil
		},
	}
	games := &mockGamesAPI{
		verifyFn: func(context.Context, domain.Credential, string) (domain.VerifyResult, error) {
			return domain.VerifyResult{PlayerID: playerID}, nil
		},
		getPlayerFn: func(context.Context, domain.Credential, string) (domain.UpstreamPlayer, error) {
			return domain.UpstreamPlayer{PlayerID: playerID, DisplayName: "Alice", Title: "Champion", ProfileVisible: true}, nil
		},
	}
	return ex, games
}
