package ratelimit

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter keeps counters in process memory. Counters are lost on
// restart and are not shared between instances.
type MemoryLimiter struct {
	max    int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]*entry

	stop     chan struct{}
	stopOnce sync.Once
}

// NewMemoryLimiter starts a limiter with a janitor goroutine that evicts
// expired keys every minute. Call Stop to end it.
func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	l := newMemoryLimiter(max, window, time.Now)
	go l.janitor(time.Minute)
	return l
}

func newMemoryLimiter(max int, window time.Duration, now func() time.Time) *MemoryLimiter {
	if max <= 0 {
		max = DefaultMax
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &MemoryLimiter{
		max:     max,
		window:  window,
		now:     now,
		entries: map[string]*entry{},
		stop:    make(chan struct{}),
	}
}

func (l *MemoryLimiter) Check(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[key]
	if !ok {
		e = &entry{resetAt: now.Add(l.window)}
		l.entries[key] = e
	}
	if now.After(e.resetAt) {
		e.count = 0
		e.resetAt = now.Add(l.window)
	}
	if e.count >= l.max {
		return false, nil
	}
	e.count++
	return true, nil
}

func (l *MemoryLimiter) Clear(_ context.Context, key string) error {
	l.mu.Lock()
	delete(l.entries, key)
	l.mu.Unlock()
	return nil
}

// Stop ends the janitor goroutine.
func (l *MemoryLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

func (l *MemoryLimiter) janitor(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.evictExpired()
		case <-l.stop:
			return
		}
	}
}

func (l *MemoryLimiter) evictExpired() {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, e := range l.entries {
		if now.After(e.resetAt) {
			delete(l.entries, key)
		}
	}
}

func (l *MemoryLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
