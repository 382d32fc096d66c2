package postgres

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/gamebridge/internal/domain"
	"github.com/pscheid92/gamebridge/internal/platform/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) (*PlayerRepo, *clockwork.FakeClock) {
	t.Helper()
	pool := setupTestDB(t)

	cryptoSvc, err := crypto.New(testEncryptionKey)
	require.NoError(t, err)

	clock := clockwork.NewFakeClockAt(time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC))
	return NewPlayerRepo(pool, cryptoSvc, clock), clock
}

func TestPlayerRepo_LookupMissing(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, err := repo.Lookup(context.Background(), "abc123")
	assert.ErrorIs(t, err, domain.ErrPlayerNotFound)
}

func TestPlayerRepo_CreateIfAbsent(t *testing.T) {
	repo, clock := newTestRepo(t)
	ctx := context.Background()

	p, err := repo.CreateIfAbsent(ctx, "abc123")
	require.NoError(t, err)

	assert.Equal(t, "abc123", p.PlayerID)
	assert.True(t, p.NeedRefreshToken)
	assert.Nil(t, p.Credential)
	assert.True(t, clock.Now().Equal(p.CreatedAt))
}

func TestPlayerRepo_CreateIfAbsent_Concurrent(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 10 {
		wg.Go(func() {
			_, err := repo.CreateIfAbsent(ctx, "abc123")
			assert.NoError(t, err)
		})
	}
	wg.Wait()

	var count int
	require.NoError(t, testPool.QueryRow(ctx, "SELECT count(*) FROM players").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestPlayerRepo_SaveAndLookup(t *testing.T) {
	repo, clock := newTestRepo(t)
	ctx := context.Background()

	p, err := repo.CreateIfAbsent(ctx, "abc123")
	require.NoError(t, err)

	expiry := clock.Now().Add(time.Hour)
	p.AltPlayerID = "g-abc"
	p.DisplayName = "Alice"
	p.Title = "Champion"
	p.VisibleProfile = true
	p.SetCredential(domain.Credential{AccessToken: "access", RefreshToken: "refresh", Expiry: expiry})

	clock.Advance(time.Minute)
	require.NoError(t, repo.Save(ctx, p))

	got, err := repo.Lookup(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, "g-abc", got.AltPlayerID)
	assert.Equal(t, "Alice", got.DisplayName)
	assert.Equal(t, "Champion", got.Title)
	assert.True(t, got.VisibleProfile)
	assert.False(t, got.NeedRefreshToken)
	require.NotNil(t, got.Credential)
	assert.Equal(t, "access", got.Credential.AccessToken)
	assert.Equal(t, "refresh", got.Credential.RefreshToken)
	assert.True(t, expiry.Equal(got.Credential.Expiry))
	assert.True(t, clock.Now().Equal(got.UpdatedAt))
}

func TestPlayerRepo_TokensEncryptedAtRest(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	p, err := repo.CreateIfAbsent(ctx, "abc123")
	require.NoError(t, err)
	p.SetCredential(domain.Credential{AccessToken: "plain-access"})
	require.NoError(t, repo.Save(ctx, p))

	var stored string
	require.NoError(t, testPool.QueryRow(ctx, "SELECT access_token FROM players WHERE player_id = $1", "abc123").Scan(&stored))
	assert.NotEqual(t, "plain-access", stored)
	assert.NotEmpty(t, stored)
}

func TestPlayerRepo_Ping(t *testing.T) {
	repo, _ := newTestRepo(t)
	assert.NoError(t, repo.Ping(context.Background()))
}
