package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"adsboard/internal/domain"

	"github.com/redis/go-redis/v9"
)

// RedisInsightCache implements domain.InsightCache. Upstream insight
// payloads change slowly relative to how often a dashboard refreshes, so
// a short TTL absorbs most repeat queries without going back to the
// platform.
type RedisInsightCache struct {
	client *redis.Client
}

// NewRedisInsightCache creates a Redis-backed insight cache.
func NewRedisInsightCache(client *redis.Client) *RedisInsightCache {
	return &RedisInsightCache{client: client}
}

func (c *RedisInsightCache) Get(ctx context.Context, key string) ([]domain.InsightRecord, error) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, domain.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}

	var records []domain.InsightRecord
	if err := json.Unmarshal(payload, &records); err != nil {
		// Treat a corrupt entry as a miss; it will be overwritten.
		return nil, domain.ErrCacheMiss
	}
	return records, nil
}

func (c *RedisInsightCache) Set(ctx context.Context, key string, records []domain.InsightRecord, ttl time.Duration) error {
	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}
