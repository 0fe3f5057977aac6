package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/tapledger/internal/config"
)

const keyOrderMember = "orders:member:%s"

// OrderLimiter throttles order placement per member so a double tap on the
// bar tablet does not book two rounds.
type OrderLimiter struct {
	bucket *TokenBucket
	limit  Limit
}

// NewOrderLimiter returns nil when throttling is off or redis is unavailable.
func NewOrderLimiter(cfg config.Config, client *redis.Client) (*OrderLimiter, error) {
	limitCfg := cfg.OrderRateLimit
	if !limitCfg.Enabled {
		return nil, nil
	}
	if client == nil {
		return nil, errors.New("order rate limit requires redis")
	}
	limit := Limit{Rate: limitCfg.Rate, Burst: limitCfg.Burst}
	if !limit.valid() {
		return nil, ErrInvalidLimit
	}
	return &OrderLimiter{bucket: NewTokenBucket(client), limit: limit}, nil
}

func (l *OrderLimiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

func (l *OrderLimiter) AllowMember(ctx context.Context, memberID string) (*RateLimitResult, error) {
	if !l.Enabled() {
		return &RateLimitResult{Allowed: true}, nil
	}
	return l.bucket.Take(ctx, fmt.Sprintf(keyOrderMember, strings.TrimSpace(memberID)), l.limit, 1)
}
