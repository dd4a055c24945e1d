package kv

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()
	key := Key("device-1", "sample")

	var got sample
	require.ErrorIs(t, store.Get(ctx, key, &got), ErrNotFound)

	require.NoError(t, store.Set(ctx, key, sample{Name: "a", Count: 2}))
	require.NoError(t, store.Get(ctx, key, &got))
	require.Equal(t, sample{Name: "a", Count: 2}, got)

	require.NoError(t, store.Set(ctx, key, sample{Name: "b"}))
	require.NoError(t, store.Get(ctx, key, &got))
	require.Equal(t, "b", got.Name)

	require.NoError(t, store.Remove(ctx, key, Key("device-1", "missing")))
	require.ErrorIs(t, store.Get(ctx, key, &got), ErrNotFound)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	exerciseStore(t, NewRedisStore(client))
	require.False(t, mr.Exists(redisPrefix+Key("device-1", "sample")))
}

func TestKeyScopesByOwner(t *testing.T) {
	require.Equal(t, "abc:savedAddresses", Key("abc", "savedAddresses"))
}
