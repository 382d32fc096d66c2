package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pscheid92/gamebridge/internal/domain"
)

// OutcomeRecorder counts submission outcomes, e.g. *metrics.ExchangeMetrics.
type OutcomeRecorder interface {
	RecordOutcome(outcome string)
}

// Service is the application layer. It is the only component that talks to
// the record store and the upstream clients together.
type Service struct {
	players   domain.PlayerRepository
	exchanger domain.TokenExchanger
	games     domain.GamesAPI
	outcomes  OutcomeRecorder
	locks     *keyLock
}

// NewService creates the application layer service. outcomes may be nil.
func NewService(players domain.PlayerRepository, exchanger domain.TokenExchanger, games domain.GamesAPI, outcomes OutcomeRecorder) *Service {
	return &Service{
		players:   players,
		exchanger: exchanger,
		games:     games,
		outcomes:  outcomes,
		locks:     newKeyLock(),
	}
}

// GetPlayer returns the stored record, or domain.ErrPlayerNotFound.
func (s *Service) GetPlayer(ctx context.Context, playerID string) (*domain.Player, error) {
	unlock, err := s.locks.Lock(ctx, playerID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	return s.players.Lookup(ctx, playerID)
}

// TouchPlayer makes sure a record exists for a submission without an auth
// code and reports whether it already holds a credential.
func (s *Service) TouchPlayer(ctx context.Context, playerID string) (*domain.Player, bool, error) {
	unlock, err := s.locks.Lock(ctx, playerID)
	if err != nil {
		return nil, false, err
	}
	defer unlock()

	p, err := s.players.CreateIfAbsent(ctx, playerID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create player: %w", err)
	}
	return p, p.HasCredential(), nil
}

// SubmitAuthCode redeems authCode for playerID and, when Google confirms the
// identity, stores the new credential and profile. Upstream failures are
// reported through the result; the returned error is reserved for the record
// store, so callers can tell a broken backend from a rejected code.
func (s *Service) SubmitAuthCode(ctx context.Context, playerID, authCode string) (ExchangeResult, error) {
	unlock, err := s.locks.Lock(ctx, playerID)
	if err != nil {
		return ExchangeResult{}, err
	}
	defer unlock()

	stored, err := s.players.CreateIfAbsent(ctx, playerID)
	if err != nil {
		return ExchangeResult{}, fmt.Errorf("failed to create player: %w", err)
	}

	// All upstream results go into a copy; stored stays as it was on failure.
	working := stored.Clone()
	if err := s.exchange(ctx, working, authCode); err != nil {
		result := ExchangeResult{Outcome: classify(err), Player: stored, Err: err}
		s.record(result.Outcome)
		slog.WarnContext(ctx, "Auth code exchange failed", "outcome", result.Outcome.String(), "error", err)
		return result, nil
	}

	if err := s.players.Save(ctx, working); err != nil {
		return ExchangeResult{}, fmt.Errorf("failed to save player: %w", err)
	}

	saved, err := s.players.Lookup(ctx, playerID)
	if err != nil {
		return ExchangeResult{}, fmt.Errorf("failed to reload player: %w", err)
	}

	s.record(OutcomeSuccess)
	slog.InfoContext(ctx, "Auth code exchanged",
		"need_refresh_token", saved.NeedRefreshToken,
		"alt_player_id_set", saved.AltPlayerID != "",
	)
	return ExchangeResult{Outcome: OutcomeSuccess, Player: saved}, nil
}

func (s *Service) exchange(ctx context.Context, p *domain.Player, authCode string) error {
	cred, err := s.exchanger.Exchange(ctx, authCode)
	if err != nil {
		return err
	}
	p.SetCredential(cred)

	verified, err := s.games.Verify(ctx, cred, s.exchanger.ApplicationID())
	if err != nil {
		return err
	}
	if err := applyVerification(p, verified); err != nil {
		return err
	}

	upstream, err := s.games.GetPlayer(ctx, cred, p.PlayerID)
	if err != nil {
		return err
	}
	return applyProfile(p, upstream)
}

func classify(err error) Outcome {
	switch {
	case errors.Is(err, domain.ErrConfiguration):
		return OutcomeConfigError
	case errors.Is(err, domain.ErrIdentityMismatch):
		return OutcomeIdentityMismatch
	default:
		return OutcomeExchangeFailed
	}
}

func (s *Service) record(o Outcome) {
	if s.outcomes != nil {
		s.outcomes.RecordOutcome(o.String())
	}
}
