package redis_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unifiedui/typed-docdb/internal/core/cache"
	rediscache "github.com/unifiedui/typed-docdb/internal/infrastructure/cache/redis"
)

func setupMiniredis(t *testing.T) (*miniredis.Miniredis, *rediscache.Cache) {
	t.Helper()

	mr := miniredis.RunT(t)
	c, err := rediscache.NewCache(context.Background(), rediscache.Config{
		Host:       mr.Host(),
		Port:       mr.Port(),
		DefaultTTL: time.Minute,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	return mr, c
}

func TestNewCache_ConnectionRefused(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	host, port := mr.Host(), mr.Port()
	mr.Close()

	_, err = rediscache.NewCache(context.Background(), rediscache.Config{Host: host, Port: port})
	assert.Error(t, err)
}

func TestCache_SetAndGet(t *testing.T) {
	_, c := setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "users:alice", []byte(`{"age":30}`), time.Minute))

	value, err := c.Get(ctx, "users:alice")
	assert.NoError(t, err)
	assert.Equal(t, []byte(`{"age":30}`), value)
}

func TestCache_GetMissing(t *testing.T) {
	_, c := setupMiniredis(t)

	value, err := c.Get(context.Background(), "missing")
	assert.NoError(t, err)
	assert.Nil(t, value)
}

func TestCache_DefaultTTL(t *testing.T) {
	mr, c := setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
	assert.Equal(t, time.Minute, mr.TTL("k"))

	mr.FastForward(2 * time.Minute)
	value, err := c.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Nil(t, value)
}

func TestCache_Delete(t *testing.T) {
	_, c := setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

	deleted, err := c.Delete(ctx, "k")
	assert.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = c.Delete(ctx, "k")
	assert.NoError(t, err)
	assert.False(t, deleted)
}

func TestCache_DeletePattern(t *testing.T) {
	mr, c := setupMiniredis(t)
	ctx := context.Background()

	for i := 0; i < 250; i++ {
		require.NoError(t, c.Set(ctx, cache.Key("docdb", "users", fmt.Sprint(i)), []byte("x"), time.Minute))
	}
	require.NoError(t, c.Set(ctx, cache.Key("docdb", "orders", "1"), []byte("x"), time.Minute))

	deleted, err := c.DeletePattern(ctx, cache.Key("docdb", "users", "*"))
	assert.NoError(t, err)
	assert.Equal(t, int64(250), deleted)
	assert.Equal(t, []string{"docdb:orders:1"}, mr.Keys())
}

func TestCache_Ping(t *testing.T) {
	mr, c := setupMiniredis(t)
	ctx := context.Background()

	assert.NoError(t, c.Ping(ctx))

	mr.SetError("server down")
	assert.Error(t, c.Ping(ctx))
}
