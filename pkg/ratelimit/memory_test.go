package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestLimiter() (*MemoryLimiter, *clock) {
	c := &clock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	return newMemoryLimiter(5, 15*time.Minute, c.now), c
}

func TestSixthAttemptIsRefused(t *testing.T) {
	l, _ := newTestLimiter()
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		ok, err := l.Check(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, ok, "attempt %d", i)
	}
	ok, err := l.Check(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRefusedAttemptsAreNotCounted(t *testing.T) {
	l, c := newTestLimiter()
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		_, _ = l.Check(ctx, "k")
	}
	assert.Equal(t, 5, l.entries["k"].count)

	c.advance(15*time.Minute + time.Second)
	ok, _ := l.Check(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, 1, l.entries["k"].count)
}

func TestWindowBoundaryIsInclusive(t *testing.T) {
	l, c := newTestLimiter()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, _ = l.Check(ctx, "k")
	}
	c.advance(15 * time.Minute)
	ok, _ := l.Check(ctx, "k")
	assert.False(t, ok, "reset only once now is strictly after resetAt")
}

func TestKeysAreIndependent(t *testing.T) {
	l, _ := newTestLimiter()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, _ = l.Check(ctx, "a")
	}
	ok, _ := l.Check(ctx, "b")
	assert.True(t, ok)
}

func TestClearResetsKey(t *testing.T) {
	l, _ := newTestLimiter()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, _ = l.Check(ctx, "k")
	}
	require.NoError(t, l.Clear(ctx, "k"))

	ok, _ := l.Check(ctx, "k")
	assert.True(t, ok)
}

func TestEvictExpired(t *testing.T) {
	l, c := newTestLimiter()
	ctx := context.Background()

	_, _ = l.Check(ctx, "old")
	c.advance(10 * time.Minute)
	_, _ = l.Check(ctx, "new")
	c.advance(6 * time.Minute)

	l.evictExpired()
	assert.Equal(t, 1, l.size())
	_, stillThere := l.entries["new"]
	assert.True(t, stillThere)
}

func TestConcurrentChecksAdmitExactlyMax(t *testing.T) {
	l, _ := newTestLimiter()
	ctx := context.Background()

	var admitted atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := l.Check(ctx, "k"); ok {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(5), admitted.Load())
}

func TestStopIsIdempotent(t *testing.T) {
	l := NewMemoryLimiter(0, 0)
	assert.Equal(t, DefaultMax, l.max)
	assert.Equal(t, DefaultWindow, l.window)
	l.Stop()
	l.Stop()
}
