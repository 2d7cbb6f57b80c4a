// Package cache remembers which projects have already been bid on, so
// repeated runs skip them before spending scraping and scoring effort.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Peerapatfc/freelancer-auto-bid/models"
)

const keyPrefix = "autobid:bid:"

// SeenCache is a Redis-backed record of projects bid on, keyed by project id
// with a TTL so long-dead listings expire on their own.
type SeenCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to Redis at the given URL and returns a SeenCache.
// URL format: redis://localhost:6379
func New(redisURL string, ttl time.Duration) (*SeenCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("cache: invalid redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("cache: redis ping failed: %w", err)
	}

	return &SeenCache{client: client, ttl: ttl}, nil
}

// HasBid reports whether a bid was already recorded for projectID.
func (c *SeenCache) HasBid(ctx context.Context, projectID string) bool {
	n, err := c.client.Exists(ctx, keyPrefix+projectID).Result()
	return err == nil && n > 0
}

// MarkBid records a bid result against projectID with the configured TTL.
func (c *SeenCache) MarkBid(ctx context.Context, projectID string, result models.BidResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("cache: marshal error: %w", err)
	}
	return c.client.Set(ctx, keyPrefix+projectID, data, c.ttl).Err()
}

// Close closes the Redis connection.
func (c *SeenCache) Close() error {
	return c.client.Close()
}
