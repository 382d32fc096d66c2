package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/failsafe-go/failsafe-go/circuitbreaker"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/pscheid92/gamebridge/internal/adapter/metrics"
	"github.com/pscheid92/gamebridge/internal/domain"
	"github.com/pscheid92/gamebridge/internal/platform/breaker"
	"github.com/pscheid92/gamebridge/internal/platform/crypto"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

type RepositorySuite struct {
	suite.Suite
	mini     *miniredis.Miniredis
	client   *Client
	clock    *clockwork.FakeClock
	players  *PlayerRepo
	sessions *SessionRepo
	ctx      context.Context
}

func TestRepositorySuite(t *testing.T) {
	suite.Run(t, new(RepositorySuite))
}

func (s *RepositorySuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client, err := NewClient("redis://" + s.mini.Addr())
	s.Require().NoError(err)
	s.client = client

	cryptoSvc, err := crypto.New(testKey)
	s.Require().NoError(err)

	s.clock = clockwork.NewFakeClockAt(time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC))
	s.players = NewPlayerRepo(client.Underlying(), cryptoSvc, s.clock)
	s.sessions = NewSessionRepo(client.Underlying())
	s.ctx = context.Background()
}

func (s *RepositorySuite) TearDownTest() {
	_ = s.client.Close()
}

func (s *RepositorySuite) TestLookupMissing() {
	_, err := s.players.Lookup(s.ctx, "abc123")
	s.ErrorIs(err, domain.ErrPlayerNotFound)
}

func (s *RepositorySuite) TestCreateIfAbsent() {
	p, err := s.players.CreateIfAbsent(s.ctx, "abc123")
	s.Require().NoError(err)

	s.Equal("abc123", p.PlayerID)
	s.True(p.NeedRefreshToken)
	s.Nil(p.Credential)
	s.Equal(s.clock.Now(), p.CreatedAt)
}

func (s *RepositorySuite) TestCreateIfAbsent_KeepsExisting() {
	p, err := s.players.CreateIfAbsent(s.ctx, "abc123")
	s.Require().NoError(err)
	p.DisplayName = "Alice"
	s.Require().NoError(s.players.Save(s.ctx, p))

	again, err := s.players.CreateIfAbsent(s.ctx, "abc123")
	s.Require().NoError(err)
	s.Equal("Alice", again.DisplayName)
}

func (s *RepositorySuite) TestSave_RoundTripsCredential() {
	p, err := s.players.CreateIfAbsent(s.ctx, "abc123")
	s.Require().NoError(err)

	expiry := s.clock.Now().Add(time.Hour)
	p.AltPlayerID = "g-abc"
	p.DisplayName = "Alice"
	p.Title = "Champion"
	p.VisibleProfile = true
	p.SetCredential(domain.Credential{AccessToken: "access", RefreshToken: "refresh", Expiry: expiry})

	s.clock.Advance(time.Minute)
	s.Require().NoError(s.players.Save(s.ctx, p))

	got, err := s.players.Lookup(s.ctx, "abc123")
	s.Require().NoError(err)
	s.Equal("g-abc", got.AltPlayerID)
	s.Equal("Alice", got.DisplayName)
	s.Equal("Champion", got.Title)
	s.True(got.VisibleProfile)
	s.False(got.NeedRefreshToken)
	s.Require().NotNil(got.Credential)
	s.Equal("access", got.Credential.AccessToken)
	s.Equal("refresh", got.Credential.RefreshToken)
	s.True(expiry.Equal(got.Credential.Expiry))
	s.Equal(s.clock.Now(), got.UpdatedAt)
}

func (s *RepositorySuite) TestSave_EncryptsTokensAtRest() {
	p, err := s.players.CreateIfAbsent(s.ctx, "abc123")
	s.Require().NoError(err)
	p.SetCredential(domain.Credential{AccessToken: "plain-access", RefreshToken: "plain-refresh"})
	s.Require().NoError(s.players.Save(s.ctx, p))

	raw, err := s.mini.Get(playerKey("abc123"))
	s.Require().NoError(err)
	s.NotContains(raw, "plain-access")
	s.NotContains(raw, "plain-refresh")
}

func (s *RepositorySuite) TestSave_CredentialWithoutRefreshToken() {
	p, err := s.players.CreateIfAbsent(s.ctx, "abc123")
	s.Require().NoError(err)
	p.SetCredential(domain.Credential{AccessToken: "access"})
	s.Require().NoError(s.players.Save(s.ctx, p))

	got, err := s.players.Lookup(s.ctx, "abc123")
	s.Require().NoError(err)
	s.Require().NotNil(got.Credential)
	s.Empty(got.Credential.RefreshToken)
	s.True(got.NeedRefreshToken)
}

func (s *RepositorySuite) TestPing() {
	s.NoError(s.players.Ping(s.ctx))
	s.NoError(s.client.Ping(s.ctx))
}

func (s *RepositorySuite) TestSession_SaveLoadDelete() {
	s.Require().NoError(s.sessions.Save(s.ctx, "sid-1", "abc123", time.Hour))

	playerID, err := s.sessions.Load(s.ctx, "sid-1")
	s.Require().NoError(err)
	s.Equal("abc123", playerID)

	s.Require().NoError(s.sessions.Delete(s.ctx, "sid-1"))
	_, err = s.sessions.Load(s.ctx, "sid-1")
	s.ErrorIs(err, domain.ErrSessionNotFound)
}

func (s *RepositorySuite) TestSession_Expires() {
	s.Require().NoError(s.sessions.Save(s.ctx, "sid-1", "abc123", time.Minute))
	s.Equal(time.Minute, s.mini.TTL(sessionKey("sid-1")))

	s.mini.FastForward(2 * time.Minute)

	_, err := s.sessions.Load(s.ctx, "sid-1")
	s.ErrorIs(err, domain.ErrSessionNotFound)
}

func (s *RepositorySuite) TestSession_NoTTL() {
	s.Require().NoError(s.sessions.Save(s.ctx, "sid-1", "abc123", 0))
	s.Equal(time.Duration(0), s.mini.TTL(sessionKey("sid-1")))
}

func TestMetricsHook_CountsCommands(t *testing.T) {
	mini := miniredis.RunT(t)
	m := metrics.NewStoreMetrics(prometheus.NewRegistry())

	client, err := NewClient("redis://"+mini.Addr(), NewMetricsHook(m))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	require.NoError(t, client.Underlying().Set(ctx, "k", "v", 0).Err())
	assert.ErrorIs(t, client.Underlying().Get(ctx, "missing").Err(), goredis.Nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.OpsTotal.WithLabelValues("set", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OpsTotal.WithLabelValues("get", "success")))
}

func TestCircuitBreakerHook_FailsFastWhenOpen(t *testing.T) {
	hook := NewCircuitBreakerHook(breaker.New("redis", breaker.Defaults, nil))
	ctx := context.Background()

	failing := hook.ProcessHook(func(context.Context, goredis.Cmder) error {
		return errors.New("connection refused")
	})
	for range 5 {
		assert.Error(t, failing(ctx, goredis.NewStringCmd(ctx, "get", "key")))
	}
	require.Equal(t, circuitbreaker.OpenState, hook.State())

	called := false
	next := hook.ProcessHook(func(context.Context, goredis.Cmder) error {
		called = true
		return nil
	})
	err := next(ctx, goredis.NewStringCmd(ctx, "get", "key"))

	assert.ErrorIs(t, err, circuitbreaker.ErrOpen)
	assert.False(t, called)
}

func TestCircuitBreakerHook_NilIsNotAFailure(t *testing.T) {
	hook := NewCircuitBreakerHook(breaker.New("redis", breaker.Defaults, nil))
	ctx := context.Background()

	missing := hook.ProcessHook(func(context.Context, goredis.Cmder) error {
		return goredis.Nil
	})
	for range 10 {
		assert.ErrorIs(t, missing(ctx, goredis.NewStringCmd(ctx, "get", "key")), goredis.Nil)
	}

	assert.Equal(t, circuitbreaker.ClosedState, hook.State())
}
