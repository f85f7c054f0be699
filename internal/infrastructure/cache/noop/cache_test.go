package noop_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/unifiedui/typed-docdb/internal/core/cache"
	"github.com/unifiedui/typed-docdb/internal/infrastructure/cache/noop"
)

func TestCache_AlwaysMisses(t *testing.T) {
	var c cache.Cache = noop.NewCache()
	ctx := context.Background()

	assert.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

	value, err := c.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Nil(t, value)

	deleted, err := c.Delete(ctx, "k")
	assert.NoError(t, err)
	assert.False(t, deleted)

	n, err := c.DeletePattern(ctx, "*")
	assert.NoError(t, err)
	assert.Zero(t, n)

	assert.NoError(t, c.Ping(ctx))
	assert.NoError(t, c.Close())
}
