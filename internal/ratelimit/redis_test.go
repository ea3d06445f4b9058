package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisStore(rdb), mr
}

func TestRedisStore_IncrementSetsExpiry(t *testing.T) {
	s, mr := newRedisStore(t)
	ctx := context.Background()

	count, resetAt, err := s.Increment(ctx, "1.2.3.4", 15*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), resetAt, 2*time.Second)
	assert.Equal(t, 15*time.Minute, mr.TTL(defaultKeyPrefix+"1.2.3.4"))

	count, _, err = s.Increment(ctx, "1.2.3.4", 15*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestRedisStore_WindowExpires(t *testing.T) {
	s, mr := newRedisStore(t)
	ctx := context.Background()

	_, _, err := s.Increment(ctx, "k", time.Minute)
	require.NoError(t, err)
	_, _, err = s.Increment(ctx, "k", time.Minute)
	require.NoError(t, err)

	mr.FastForward(time.Minute + time.Second)

	count, _, err := s.Increment(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRedisStore_WithLimiter(t *testing.T) {
	s, _ := newRedisStore(t)
	l := NewLimiter(s, 2, time.Minute)
	ctx := context.Background()

	d1, _ := l.Allow(ctx, "ip")
	d2, _ := l.Allow(ctx, "ip")
	d3, err := l.Allow(ctx, "ip")

	require.NoError(t, err)
	assert.True(t, d1.Allowed)
	assert.True(t, d2.Allowed)
	assert.False(t, d3.Allowed)
}

func TestRedisStore_Unavailable(t *testing.T) {
	s, mr := newRedisStore(t)
	mr.Close()

	_, _, err := s.Increment(context.Background(), "k", time.Minute)
	assert.Error(t, err)
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	rdb, err := NewRedisClient(context.Background(), mr.Addr())
	require.NoError(t, err)
	_ = rdb.Close()

	_, err = NewRedisClient(context.Background(), "127.0.0.1:1")
	assert.Error(t, err)
}
