package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// AttemptLimiter counts attempts per key inside a sliding window.
type AttemptLimiter interface {
	Allow(ctx context.Context, key string) (allowed bool, resetAt time.Time)
}

// rateLimitScript is a Lua script for sliding window rate limiting
var rateLimitScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

local windowStart = now - window

redis.call('ZREMRANGEBYSCORE', key, '-inf', windowStart)

local count = redis.call('ZCARD', key)

if count >= limit then
    local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
    local resetAt = 0
    if #oldest >= 2 then
        resetAt = tonumber(oldest[2]) + window
    else
        resetAt = now + window
    end
    return {0, resetAt}
end

redis.call('ZADD', key, now, now .. '-' .. math.random())
redis.call('EXPIRE', key, window + 10)

local resetAt = now + window
return {1, resetAt}
`)

// RedisLimiter shares attempt counts between server instances through Redis.
type RedisLimiter struct {
	client *redis.Client
	prefix string
	limit  int
	window time.Duration
}

func NewRedisLimiter(client *redis.Client, prefix string, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, prefix: prefix, limit: limit, window: window}
}

// Allow denies the attempt when Redis cannot be reached.
func (rl *RedisLimiter) Allow(ctx context.Context, key string) (bool, time.Time) {
	now := time.Now().Unix()
	fullKey := fmt.Sprintf("ratelimit:%s:%s", rl.prefix, key)

	result, err := rateLimitScript.Run(
		ctx,
		rl.client,
		[]string{fullKey},
		now,
		int64(rl.window.Seconds()),
		rl.limit,
	).Int64Slice()

	if err != nil {
		log.Warn().
			Err(err).
			Str("key", key).
			Msg("rate limit check failed, denying request")
		return false, time.Now().Add(rl.window)
	}

	if len(result) != 2 {
		log.Warn().Str("key", key).Msg("unexpected rate limit result, denying request")
		return false, time.Now().Add(rl.window)
	}

	return result[0] == 1, time.Unix(result[1], 0)
}

// MemoryLimiter keeps attempt timestamps in process memory.
type MemoryLimiter struct {
	mu          sync.Mutex
	attempts    map[string][]time.Time
	limit       int
	window      time.Duration
	lastCleanup time.Time
	now         func() time.Time
}

func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		attempts:    make(map[string][]time.Time),
		limit:       limit,
		window:      window,
		lastCleanup: time.Now(),
		now:         time.Now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.cleanup(now)

	recent := l.prune(l.attempts[key], now)
	if len(recent) >= l.limit {
		l.attempts[key] = recent
		return false, recent[0].Add(l.window)
	}

	l.attempts[key] = append(recent, now)
	return true, now.Add(l.window)
}

func (l *MemoryLimiter) prune(stamps []time.Time, now time.Time) []time.Time {
	cutoff := now.Add(-l.window)
	i := 0
	for i < len(stamps) && !stamps[i].After(cutoff) {
		i++
	}
	return stamps[i:]
}

func (l *MemoryLimiter) cleanup(now time.Time) {
	if now.Sub(l.lastCleanup) < 5*l.window {
		return
	}
	l.lastCleanup = now

	for key, stamps := range l.attempts {
		if len(l.prune(stamps, now)) == 0 {
			delete(l.attempts, key)
		}
	}
}
