package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/golang/snappy"
	redis "github.com/redis/go-redis/v9"
	statsdomain "github.com/smallbiznis/tapledger/internal/stats/domain"
	"go.uber.org/fx"
)

const leaderboardKeyPrefix = "stats:leaderboard:"

var Module = fx.Module("cache",
	fx.Provide(NewLeaderboardCache),
)

// NewLeaderboardCache stores leaderboards in redis when a client is
// configured and in process memory otherwise.
func NewLeaderboardCache(client *redis.Client) statsdomain.LeaderboardCache {
	if client == nil {
		return &memoryLeaderboardCache{items: NewTTLCache[string, statsdomain.LeaderboardResponse]()}
	}
	return &redisLeaderboardCache{client: client}
}

// redisLeaderboardCache stores snappy-compressed JSON.
type redisLeaderboardCache struct {
	client *redis.Client
}

func (c *redisLeaderboardCache) Get(ctx context.Context, key string) (*statsdomain.LeaderboardResponse, bool, error) {
	raw, err := c.client.Get(ctx, leaderboardKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	resp, err := decodeLeaderboard(raw)
	if err != nil {
		return nil, false, err
	}
	return resp, true, nil
}

func (c *redisLeaderboardCache) Set(ctx context.Context, key string, value statsdomain.LeaderboardResponse, ttl time.Duration) error {
	payload, err := encodeLeaderboard(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, leaderboardKeyPrefix+key, payload, ttl).Err()
}

func encodeLeaderboard(value statsdomain.LeaderboardResponse) ([]byte, error) {
	payload, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return snappy.Encode(nil, payload), nil
}

func decodeLeaderboard(raw []byte) (*statsdomain.LeaderboardResponse, error) {
	payload, err := snappy.Decode(nil, raw)
	if err != nil {
		return nil, err
	}
	var resp statsdomain.LeaderboardResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

type memoryLeaderboardCache struct {
	items Cache[string, statsdomain.LeaderboardResponse]
}

func (c *memoryLeaderboardCache) Get(_ context.Context, key string) (*statsdomain.LeaderboardResponse, bool, error) {
	value, ok := c.items.Get(key)
	if !ok {
		return nil, false, nil
	}
	return &value, true, nil
}

func (c *memoryLeaderboardCache) Set(_ context.Context, key string, value statsdomain.LeaderboardResponse, ttl time.Duration) error {
	c.items.Set(key, value, ttl)
	return nil
}
