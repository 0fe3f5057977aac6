package domain

import (
	"context"
	"time"
)

// LeaderboardCache stores computed leaderboards. A miss is (nil, false, nil).
type LeaderboardCache interface {
	Get(ctx context.Context, key string) (*LeaderboardResponse, bool, error)
	Set(ctx context.Context, key string, value LeaderboardResponse, ttl time.Duration) error
}
