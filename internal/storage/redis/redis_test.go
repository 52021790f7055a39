package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) (*miniredis.Miniredis, *Storage) {
	t.Helper()

	mr := miniredis.RunT(t)

	s, err := New(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return mr, s
}

func TestStorage_RevokeIsRevoked(t *testing.T) {
	ctx := context.Background()
	mr, s := newTestStorage(t)

	revoked, err := s.IsRevoked(ctx, "token-a")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, s.Revoke(ctx, "token-a", time.Now().Add(time.Minute)))
	require.NoError(t, s.Revoke(ctx, "token-a", time.Now().Add(time.Minute)))

	revoked, err = s.IsRevoked(ctx, "token-a")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = s.IsRevoked(ctx, "token-b")
	require.NoError(t, err)
	assert.False(t, revoked)

	assert.Len(t, mr.Keys(), 1)
	assert.NotContains(t, mr.Keys()[0], "token-a")
}

func TestStorage_EntryExpiresWithToken(t *testing.T) {
	ctx := context.Background()
	mr, s := newTestStorage(t)

	require.NoError(t, s.Revoke(ctx, "token-a", time.Now().Add(30*time.Second)))

	ttl := mr.TTL(key("token-a"))
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, 30*time.Second)

	mr.FastForward(31 * time.Second)

	revoked, err := s.IsRevoked(ctx, "token-a")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestStorage_SkipsExpiredTokens(t *testing.T) {
	ctx := context.Background()
	mr, s := newTestStorage(t)

	require.NoError(t, s.Revoke(ctx, "token-a", time.Now().Add(-time.Second)))
	assert.Empty(t, mr.Keys())
}

func TestStorage_Unavailable(t *testing.T) {
	ctx := context.Background()
	mr, s := newTestStorage(t)

	mr.Close()

	_, err := s.IsRevoked(ctx, "token-a")
	require.Error(t, err)

	err = s.Revoke(ctx, "token-a", time.Now().Add(time.Minute))
	require.Error(t, err)
}

func TestNew_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := New(ctx, addr, "", 0)
	require.Error(t, err)
}
