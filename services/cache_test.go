package services

import (
	"context"
	"testing"
	"time"

	"erp-access/permissions"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Minute).(*memoryCache)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_, gen, ok, err := c.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, gen)

	require.NoError(t, c.Set(ctx, 1, 0, permissions.SetOf("SS_SALES")))
	require.NoError(t, c.Set(ctx, 2, 0, permissions.SetOf("SS_GL")))

	perms, _, ok, err := c.Get(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, perms.Has("SS_SALES"))

	require.NoError(t, c.Invalidate(ctx, 1))
	_, gen, ok, _ = c.Get(ctx, 1)
	assert.False(t, ok)
	assert.Equal(t, uint64(1), gen)

	now = now.Add(2 * time.Minute)
	_, _, ok, _ = c.Get(ctx, 2)
	assert.False(t, ok, "entry should expire after ttl")
}

func TestMemoryCacheRejectsStaleGeneration(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(0)

	_, gen, _, err := c.Get(ctx, 4)
	require.NoError(t, err)
	require.NoError(t, c.Invalidate(ctx, 4))

	// Loaded before the invalidation: dropped.
	require.NoError(t, c.Set(ctx, 4, gen, permissions.SetOf("SA_SALESORDER")))
	_, gen, ok, _ := c.Get(ctx, 4)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, 4, gen, permissions.SetOf("SS_SALES")))
	perms, _, ok, _ := c.Get(ctx, 4)
	require.True(t, ok)
	assert.Equal(t, []string{"SS_SALES"}, perms.Codes())
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	c := NewRedisCache(rdb, time.Minute)

	_, gen, ok, err := c.Get(ctx, 7)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, gen)

	require.NoError(t, c.Set(ctx, 7, 0, permissions.SetOf("SA_SALESORDER", "SS_SALES")))
	assert.True(t, mr.Exists("erp-access:perm:7"))

	perms, _, ok, err := c.Get(ctx, 7)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"SA_SALESORDER", "SS_SALES"}, perms.Codes())

	// An empty object is cached as such, distinct from a miss.
	require.NoError(t, c.Set(ctx, 8, 0, permissions.Set{}))
	perms, _, ok, err = c.Get(ctx, 8)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, perms)

	require.NoError(t, c.Invalidate(ctx, 7, 8))
	assert.False(t, mr.Exists("erp-access:perm:7"))
	_, gen, _, err = c.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), gen)

	require.NoError(t, c.Set(ctx, 9, 0, permissions.SetOf("SS_GL")))
	mr.FastForward(2 * time.Minute)
	_, _, ok, err = c.Get(ctx, 9)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCacheRejectsStaleGeneration(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	c := NewRedisCache(rdb, 0)

	_, gen, _, err := c.Get(ctx, 5)
	require.NoError(t, err)
	require.NoError(t, c.Invalidate(ctx, 5))

	require.NoError(t, c.Set(ctx, 5, gen, permissions.SetOf("SA_SALESORDER")))
	assert.False(t, mr.Exists("erp-access:perm:5"))

	_, gen, _, err = c.Get(ctx, 5)
	require.NoError(t, err)
	require.NoError(t, c.Set(ctx, 5, gen, permissions.SetOf("SS_SALES")))
	assert.True(t, mr.Exists("erp-access:perm:5"))
	assert.Zero(t, mr.TTL("erp-access:perm:5"), "ttl 0 stores without expiry")
}

func TestRedisCacheCorruptValue(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	require.NoError(t, mr.Set("erp-access:perm:3", "not json"))

	_, _, ok, err := NewRedisCache(rdb, time.Minute).Get(context.Background(), 3)
	assert.Error(t, err)
	assert.False(t, ok)
}
