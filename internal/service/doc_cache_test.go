package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newRedisCache(t *testing.T) (DocumentCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisDocumentCache(client), mr
}

func TestRedisDocumentCacheMissThenHit(t *testing.T) {
	cache, _ := newRedisCache(t)

	_, ok, err := cache.Get(context.Background(), "reportcard:doc:1")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, cache.Set(context.Background(), "reportcard:doc:1", []byte("<html/>"), time.Minute))

	value, ok, err := cache.Get(context.Background(), "reportcard:doc:1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("<html/>"), value)
}

func TestRedisDocumentCacheExpires(t *testing.T) {
	cache, mr := newRedisCache(t)

	require.NoError(t, cache.Set(context.Background(), "reportcard:doc:2", []byte("cached"), 10*time.Minute))

	mr.FastForward(11 * time.Minute)

	_, ok, err := cache.Get(context.Background(), "reportcard:doc:2")
	require.NoError(t, err)
	require.False(t, ok)
}
