package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"
)

var (
	ErrNotConfigured = errors.New("rate_limiter_not_configured")
	ErrInvalidLimit  = errors.New("invalid_rate_limit")
	ErrEmptyKey      = errors.New("rate_limit_key_empty")
)

// takeScript refills the bucket from the redis clock, then takes cost tokens
// if available. Tokens are returned as a string because Lua numbers are
// truncated to integers on the way out.
const takeScript = `
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local ttl = tonumber(ARGV[3])
local cost = tonumber(ARGV[4])

local t = redis.call("TIME")
local now = (t[1] * 1000) + math.floor(t[2] / 1000)

local state = redis.call("HMGET", KEYS[1], "tokens", "ts")
local tokens = tonumber(state[1]) or burst
local ts = tonumber(state[2]) or now
local elapsed = math.max(now - ts, 0)
tokens = math.min(burst, tokens + (elapsed / 1000) * rate)

local allowed = 0
if tokens >= cost then
  allowed = 1
  tokens = tokens - cost
end

redis.call("HSET", KEYS[1], "tokens", tokens, "ts", now)
redis.call("PEXPIRE", KEYS[1], ttl)
return {allowed, tostring(tokens)}
`

// Limit is a refill rate in tokens per second and a bucket size.
type Limit struct {
	Rate  float64
	Burst int
}

func (l Limit) valid() bool {
	return l.Rate > 0 && l.Burst > 0
}

// TokenBucket is a redis-backed token bucket shared by all API replicas.
type TokenBucket struct {
	client *redis.Client
	script *redis.Script
}

type RateLimitResult struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

func NewTokenBucket(client *redis.Client) *TokenBucket {
	if client == nil {
		return nil
	}
	return &TokenBucket{client: client, script: redis.NewScript(takeScript)}
}

// Take removes cost tokens from the bucket at key. A denied take leaves the
// bucket untouched apart from the refill.
func (t *TokenBucket) Take(ctx context.Context, key string, limit Limit, cost int) (*RateLimitResult, error) {
	switch {
	case t == nil || t.client == nil:
		return nil, ErrNotConfigured
	case key == "":
		return nil, ErrEmptyKey
	case !limit.valid() || cost <= 0 || cost > limit.Burst:
		return nil, ErrInvalidLimit
	}

	ttl := bucketTTL(limit)
	res, err := t.script.Run(ctx, t.client, []string{key},
		limit.Rate, limit.Burst, ttl.Milliseconds(), cost).Slice()
	if err != nil {
		return nil, fmt.Errorf("take %s: %w", key, err)
	}
	if len(res) < 2 {
		return nil, fmt.Errorf("take %s: unexpected script reply %v", key, res)
	}

	allowed := toInt(res[0]) == 1
	remaining := toFloat(res[1])
	return &RateLimitResult{
		Allowed:    allowed,
		Limit:      limit.Burst,
		Remaining:  int(remaining),
		RetryAfter: retryAfter(allowed, remaining, float64(cost), limit.Rate),
	}, nil
}

func retryAfter(allowed bool, remaining, cost, rate float64) time.Duration {
	if allowed || rate <= 0 {
		return 0
	}
	missing := cost - remaining
	if missing <= 0 {
		return 0
	}
	return time.Duration(missing / rate * float64(time.Second))
}

// bucketTTL keeps idle buckets for twice the time a full refill takes.
func bucketTTL(limit Limit) time.Duration {
	if !limit.valid() {
		return time.Second
	}
	seconds := math.Max(math.Ceil(float64(limit.Burst)/limit.Rate*2), 1)
	return time.Duration(seconds) * time.Second
}

func toInt(v interface{}) int64 {
	switch val := v.(type) {
	case int64:
		return val
	case float64:
		return int64(val)
	}
	return 0
}

func toFloat(v interface{}) float64 {
	switch val := v.(type) {
	case string:
		parsed, err := strconv.ParseFloat(val, 64)
		if err == nil {
			return parsed
		}
	case int64:
		return float64(val)
	case float64:
		return val
	}
	return 0
}
