package redisstore

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func unreachableClient(t *testing.T) *redis.Client {
	t.Helper()
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestBlocklistSkipsExpiredEntries(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	b := NewBlocklist(unreachableClient(t)).WithClock(func() time.Time { return now })

	// nothing to store, so the unreachable server is never contacted
	require.NoError(t, b.Add(context.Background(), "jti-1", now.Add(-time.Second)))
	require.NoError(t, b.Add(context.Background(), "jti-1", now))
}

func TestBlocklistRejectsEmptyID(t *testing.T) {
	b := NewBlocklist(unreachableClient(t))

	require.Error(t, b.Add(context.Background(), "", time.Now().Add(time.Hour)))
	_, err := b.Claim(context.Background(), "", time.Now().Add(time.Hour))
	require.Error(t, err)

	ok, err := b.Contains(context.Background(), "")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestBlocklistSurfacesRedisErrors(t *testing.T) {
	b := NewBlocklist(unreachableClient(t))

	require.Error(t, b.Add(context.Background(), "jti-1", time.Now().Add(time.Hour)))

	_, err := b.Contains(context.Background(), "jti-1")
	require.Error(t, err)

	won, err := b.Claim(context.Background(), "jti-1", time.Now().Add(time.Hour))
	require.Error(t, err)
	require.False(t, won)
}

func TestKeyTTLRoundsUpAndStaysPositive(t *testing.T) {
	require.Equal(t, 2*time.Second, keyTTL(1500*time.Millisecond))
	require.Equal(t, 2*time.Second, keyTTL(time.Second))
	require.Equal(t, time.Second, keyTTL(0))
	require.Equal(t, time.Second, keyTTL(-time.Minute))
}

func TestBlocklistKey(t *testing.T) {
	require.Equal(t, "auth:revoked:abc", blocklistKey("abc"))
}
