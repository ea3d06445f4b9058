package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestLimiter_AllowsUpToLimitThenRejects(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 12, 2, 10, 0, 0, 0, time.UTC)}
	l := NewLimiter(newMemoryStoreWithBounds(100, 256, clock.now), 3, time.Minute)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		d, err := l.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, d.Allowed, "request %d", i)
		assert.Equal(t, 3-i, d.Remaining)
	}

	d, err := l.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 4, d.Count)
	assert.Equal(t, 0, d.Remaining)
	assert.Equal(t, clock.t.Add(time.Minute), d.ResetAt)

	other, err := l.Allow(ctx, "5.6.7.8")
	require.NoError(t, err)
	assert.True(t, other.Allowed)
}

func TestLimiter_WindowResets(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 12, 2, 10, 0, 0, 0, time.UTC)}
	l := NewLimiter(newMemoryStoreWithBounds(100, 256, clock.now), 1, time.Minute)
	ctx := context.Background()

	d, _ := l.Allow(ctx, "k")
	assert.True(t, d.Allowed)
	d, _ = l.Allow(ctx, "k")
	assert.False(t, d.Allowed)

	clock.advance(time.Minute)
	d, _ = l.Allow(ctx, "k")
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.Count)
}

func TestLimiter_Defaults(t *testing.T) {
	l := NewLimiter(NewMemoryStore(), 0, 0)

	assert.Equal(t, DefaultLimit, l.Limit())
	assert.Equal(t, DefaultWindow, l.Window())
}

type failingStore struct{}

func (failingStore) Increment(context.Context, string, time.Duration) (int, time.Time, error) {
	return 0, time.Time{}, errors.New("down")
}

func TestLimiter_StoreError(t *testing.T) {
	_, err := NewLimiter(failingStore{}, 1, time.Minute).Allow(context.Background(), "k")
	assert.Error(t, err)
}

func TestDecision_RetryAfter(t *testing.T) {
	now := time.Date(2024, 12, 2, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		reset time.Time
		want  time.Duration
	}{
		{now.Add(-time.Second), time.Second},
		{now.Add(500 * time.Millisecond), time.Second},
		{now.Add(90 * time.Second), 90 * time.Second},
		{now.Add(90*time.Second + time.Millisecond), 91 * time.Second},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Decision{ResetAt: tt.reset}.RetryAfter(now))
	}
}
