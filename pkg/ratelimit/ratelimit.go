// Package ratelimit counts attempts per key inside a fixed window.
//
// Check admits an attempt and counts it, or refuses it once max attempts
// were admitted in the current window. Refused attempts are not counted.
// Clear forgets a key, typically after a successful login.
package ratelimit

import (
	"context"
	"time"
)

const (
	DefaultMax    = 5
	DefaultWindow = 15 * time.Minute
)

// Limiter is implemented by MemoryLimiter and RedisLimiter.
type Limiter interface {
	Check(ctx context.Context, key string) (bool, error)
	Clear(ctx context.Context, key string) error
}
