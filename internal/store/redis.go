package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/betbot/analytics-api/internal/logic"
	"github.com/betbot/analytics-api/internal/models"
)

const (
	predictionKeyPrefix = "mlb:prediction:"
	trendBoardKey       = "mlb:trends"
	scanBatch           = 500
)

// RedisClient defines the interface for Redis client
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisCache implements logic.PredictionCache with JSON values and a TTL
type RedisCache struct {
	redis RedisClient
}

var _ logic.PredictionCache = (*RedisCache)(nil)

func NewRedisCache(client RedisClient) *RedisCache {
	return &RedisCache{redis: client}
}

// GetPrediction returns nil, nil on a cache miss
func (c *RedisCache) GetPrediction(ctx context.Context, gameID string) (*models.GamePrediction, error) {
	var p models.GamePrediction
	ok, err := c.get(ctx, predictionKeyPrefix+gameID, &p)
	if err != nil || !ok {
		return nil, err
	}
	return &p, nil
}

func (c *RedisCache) SetPrediction(ctx context.Context, p *models.GamePrediction, ttl time.Duration) error {
	return c.set(ctx, predictionKeyPrefix+p.ID, p, ttl)
}

// InvalidatePredictions deletes every cached prediction and returns the
// number of keys removed
func (c *RedisCache) InvalidatePredictions(ctx context.Context) (int, error) {
	var cursor uint64
	removed := 0
	for {
		keys, next, err := c.redis.Scan(ctx, cursor, predictionKeyPrefix+"*", scanBatch).Result()
		if err != nil {
			return removed, fmt.Errorf("redis scan %s*: %w", predictionKeyPrefix, err)
		}
		if len(keys) > 0 {
			n, err := c.redis.Del(ctx, keys...).Result()
			if err != nil {
				return removed, fmt.Errorf("redis del: %w", err)
			}
			removed += int(n)
		}
		if next == 0 {
			return removed, nil
		}
		cursor = next
	}
}

func (c *RedisCache) GetTrendBoard(ctx context.Context) (*models.TrendBoard, error) {
	var b models.TrendBoard
	ok, err := c.get(ctx, trendBoardKey, &b)
	if err != nil || !ok {
		return nil, err
	}
	return &b, nil
}

func (c *RedisCache) SetTrendBoard(ctx context.Context, b *models.TrendBoard, ttl time.Duration) error {
	return c.set(ctx, trendBoardKey, b, ttl)
}

func (c *RedisCache) get(ctx context.Context, key string, dest any) (bool, error) {
	raw, err := c.redis.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (c *RedisCache) set(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := c.redis.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
