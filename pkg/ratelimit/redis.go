package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "catalog:login:"

// checkScript mirrors MemoryLimiter.Check atomically: the key's TTL is the
// window, set on the first admitted attempt.
var checkScript = redis.NewScript(`
local current = tonumber(redis.call("GET", KEYS[1]) or "0")
if current >= tonumber(ARGV[1]) then
  return 0
end
current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 1
`)

// RedisLimiter shares counters between every instance using the same Redis.
type RedisLimiter struct {
	client redis.UniversalClient
	max    int
	window time.Duration
}

func NewRedisLimiter(client redis.UniversalClient, max int, window time.Duration) *RedisLimiter {
	if max <= 0 {
		max = DefaultMax
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &RedisLimiter{client: client, max: max, window: window}
}

// Dial connects to addr and pings it.
func Dial(ctx context.Context, addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

func (l *RedisLimiter) Check(ctx context.Context, key string) (bool, error) {
	n, err := checkScript.Run(ctx, l.client, []string{redisKeyPrefix + key}, l.max, l.window.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("rate limit check: %w", err)
	}
	return n == 1, nil
}

func (l *RedisLimiter) Clear(ctx context.Context, key string) error {
	if err := l.client.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("rate limit clear: %w", err)
	}
	return nil
}
