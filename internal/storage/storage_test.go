package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Backend {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return map[string]Backend{
		"memory": NewMemory(Options{}),
		"redis":  NewRedisWithClient(client, Options{TTL: time.Hour}),
	}
}

func TestStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := b.Scope("v1")

			_, ok, err := s.Get(ctx, TokenKey)
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.Set(ctx, TokenKey, "abc"))
			val, ok, err := s.Get(ctx, TokenKey)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "abc", val)

			require.NoError(t, s.Delete(ctx, TokenKey))
			_, ok, err = s.Get(ctx, TokenKey)
			require.NoError(t, err)
			assert.False(t, ok)
			assert.True(t, b.Healthy(ctx))
		})
	}
}

func TestStorageScopesAreIsolated(t *testing.T) {
	ctx := context.Background()
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, b.Scope("v1").Set(ctx, TokenKey, "one"))
			_, ok, err := b.Scope("v2").Get(ctx, TokenKey)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemory(Options{TTL: time.Minute})
	m.now = func() time.Time { return now }

	s := m.Scope("v")
	require.NoError(t, s.Set(ctx, TokenKey, "abc"))
	now = now.Add(2 * time.Minute)
	_, ok, err := s.Get(ctx, TokenKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisKeyLayoutAndTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	r := NewRedis(mr.Addr(), Options{TTL: time.Hour})
	t.Cleanup(func() { _ = r.Close() })

	require.NoError(t, r.Scope("v9").Set(context.Background(), TokenKey, "abc"))
	got, err := mr.Get("idcard:visitor:v9:token")
	require.NoError(t, err)
	assert.Equal(t, "abc", got)
	assert.Equal(t, time.Hour, mr.TTL("idcard:visitor:v9:token"))
}
