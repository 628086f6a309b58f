// Package ratelimit caps how many folders a single client address may
// publish per fixed window. Counters live in Redis so every instance sees
// the same totals.
package ratelimit

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/dmitrijs2005/foldershare/internal/logging"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/blake2b"
)

const (
	DefaultLimit  = 10
	DefaultWindow = time.Hour
)

type Limiter interface {
	// Allow records one attempt from ip and reports whether it is within
	// the limit.
	Allow(ctx context.Context, ip string) bool
}

// Noop allows everything. It is used when no Redis address is configured.
type Noop struct{}

func (Noop) Allow(context.Context, string) bool { return true }

type windowCounter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

type RedisLimiter struct {
	counter windowCounter
	limit   int64
	window  time.Duration
	log     logging.Logger
	now     func() time.Time
}

func NewRedisLimiter(client redis.Cmdable, limit int, window time.Duration, log logging.Logger) *RedisLimiter {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &RedisLimiter{
		counter: &redisCounter{c: client},
		limit:   int64(limit),
		window:  window,
		log:     log.With("module", "ratelimit"),
		now:     time.Now,
	}
}

// Allow fails open: a Redis error is logged and the request goes through.
func (l *RedisLimiter) Allow(ctx context.Context, ip string) bool {
	key := l.key(ip)
	n, err := l.counter.Incr(ctx, key, l.window)
	if err != nil {
		l.log.Warn(ctx, "rate limit check failed", "error", err)
		return true
	}
	return n <= l.limit
}

// key never contains the raw address.
func (l *RedisLimiter) key(ip string) string {
	sum := blake2b.Sum256([]byte(ip))
	bucket := l.now().UnixNano() / int64(l.window)
	return fmt.Sprintf("rl:%s:%d", hex.EncodeToString(sum[:16]), bucket)
}

type redisCounter struct {
	c redis.Cmdable
}

func (r *redisCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	n, err := r.c.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("incr %s: %w", key, err)
	}
	if n == 1 {
		if err := r.c.Expire(ctx, key, window).Err(); err != nil {
			return n, fmt.Errorf("expire %s: %w", key, err)
		}
	}
	return n, nil
}
