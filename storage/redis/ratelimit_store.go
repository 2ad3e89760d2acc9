package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/authkit/pkg/ratelimiter"
)

const ratelimitKeyPrefix = "ratelimit:"

// consumeScript implements a lazy-refill token bucket atomically. Keys:
// bucket hash. Args: capacity, refill rate, refill interval (ms), tokens
// requested, now (ms). Returns {allowed, remaining, reset_at_ms}.
var consumeScript = redis.NewScript(`
local key = KEYS[1]
local capacity = tonumber(ARGV[1])
local rate = tonumber(ARGV[2])
local interval = tonumber(ARGV[3])
local requested = tonumber(ARGV[4])
local now = tonumber(ARGV[5])

local bucket = redis.call('HMGET', key, 'tokens', 'updated_at')
local tokens = tonumber(bucket[1])
local updated = tonumber(bucket[2])
if tokens == nil then
    tokens = capacity
    updated = now
end

local elapsed = now - updated
if elapsed >= interval then
    local intervals = math.floor(elapsed / interval)
    tokens = math.min(capacity, tokens + intervals * rate)
    updated = updated + intervals * interval
end

local allowed = 0
if tokens >= requested then
    tokens = tokens - requested
    allowed = 1
end

redis.call('HSET', key, 'tokens', tokens, 'updated_at', updated)
redis.call('PEXPIRE', key, interval * math.ceil(capacity / rate) * 2)

local reset_at = updated + interval
if tokens >= capacity then
    reset_at = now
end
return {allowed, tokens, reset_at}
`)

// RateLimitStore backs the token bucket rate limiter with Redis, so limits
// hold across replicas.
type RateLimitStore struct {
	client *redis.Client
}

var _ ratelimiter.Store = (*RateLimitStore)(nil)

// NewRateLimitStore creates a Redis-backed rate limit store.
func NewRateLimitStore(client *redis.Client) *RateLimitStore {
	if client == nil {
		panic("redis: client is required")
	}
	return &RateLimitStore{client: client}
}

func (s *RateLimitStore) ConsumeTokens(ctx context.Context, key string, n int64, cfg ratelimiter.Config) (bool, int64, time.Time, error) {
	now := time.Now()
	res, err := consumeScript.Run(ctx, s.client,
		[]string{ratelimitKeyPrefix + key},
		cfg.Capacity, cfg.RefillRate, cfg.RefillInterval.Milliseconds(), n, now.UnixMilli(),
	).Int64Slice()
	if err != nil {
		return false, 0, time.Time{}, fmt.Errorf("redis: consume tokens: %w", err)
	}
	if len(res) != 3 {
		return false, 0, time.Time{}, fmt.Errorf("redis: unexpected script result length %d", len(res))
	}

	return res[0] == 1, res[1], time.UnixMilli(res[2]), nil
}

func (s *RateLimitStore) Reset(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, ratelimitKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis: reset bucket: %w", err)
	}
	return nil
}
