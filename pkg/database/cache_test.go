package database

import (
	"context"
	"testing"
	"time"

	"digitalwill-backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemoryCache()
	c.now = func() time.Time { return now }
	ctx := context.Background()

	_, err := c.Get(ctx, "k")
	require.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	now = now.Add(time.Minute)
	_, err = c.Get(ctx, "k")
	require.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "forever", []byte("x"), 0))
	require.NoError(t, c.Delete(ctx, "forever"))
	_, err = c.Get(ctx, "forever")
	require.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisOptions(t *testing.T) {
	t.Parallel()

	opts := redisOptions(&config.RedisConfig{
		Host:         "cache.internal",
		Port:         6380,
		DB:           2,
		PoolSize:     16,
		MinIdleConns: 4,
		DialTimeout:  time.Second,
		ReadTimeout:  500 * time.Millisecond,
	})
	assert.Equal(t, "cache.internal:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 16, opts.PoolSize)
	assert.Equal(t, 4, opts.MinIdleConns)
	assert.Equal(t, time.Second, opts.DialTimeout)
	assert.Equal(t, 500*time.Millisecond, opts.ReadTimeout)
	assert.Equal(t, 500*time.Millisecond, opts.WriteTimeout)

	opts = redisOptions(&config.RedisConfig{Host: "localhost", Port: 6379})
	assert.Zero(t, opts.DialTimeout)
	assert.Zero(t, opts.PoolSize)
}

func TestRedisCache_KeyPrefix(t *testing.T) {
	t.Parallel()

	c := NewRedisCache(nil, "digitalwill:").(*redisCache)
	assert.Equal(t, "digitalwill:will:record:0x1", c.key("will:record:0x1"))

	bare := NewRedisCache(nil, "").(*redisCache)
	assert.Equal(t, "k", bare.key("k"))
}
