package notify

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCache(t *testing.T) (*CountCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewCountCache(rdb, time.Minute), mr
}

func TestCountCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, mr := newCache(t)
	user := uuid.New()

	_, ok, err := c.Get(ctx, user)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, user, 3))
	n, ok, err := c.Get(ctx, user)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(3), n)

	mr.FastForward(2 * time.Minute)
	_, ok, _ = c.Get(ctx, user)
	assert.False(t, ok, "entry expires after ttl")
}

func TestCountCacheInvalidate(t *testing.T) {
	ctx := context.Background()
	c, _ := newCache(t)
	a, b := uuid.New(), uuid.New()

	require.NoError(t, c.Set(ctx, a, 1))
	require.NoError(t, c.Set(ctx, b, 2))
	require.NoError(t, c.Invalidate(ctx, a))

	_, ok, _ := c.Get(ctx, a)
	assert.False(t, ok)
	n, ok, _ := c.Get(ctx, b)
	assert.True(t, ok)
	assert.Equal(t, int64(2), n)
}

func TestNilCacheIsNoop(t *testing.T) {
	var c *CountCache
	ctx := context.Background()

	assert.Nil(t, NewCountCache(nil, time.Minute))
	assert.NoError(t, c.Set(ctx, uuid.New(), 1))
	assert.NoError(t, c.Invalidate(ctx, uuid.New()))
	_, ok, err := c.Get(ctx, uuid.New())
	assert.NoError(t, err)
	assert.False(t, ok)
}
