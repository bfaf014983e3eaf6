package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iho/goloan/internal/infrastructure/metrics"
)

// Cache implements usecase.Cache using Redis.
type Cache struct {
	client  *redis.Client
	prefix  string
	metrics *metrics.Metrics
}

// NewCache creates a new Cache. m may be nil.
func NewCache(client *redis.Client, m *metrics.Metrics) *Cache {
	return &Cache{
		client:  client,
		prefix:  "cache:",
		metrics: m,
	}
}

// Get retrieves a value by key. A missing key yields (nil, nil).
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.record("get", nil)
		return nil, nil
	}
	c.record("get", err)
	if err != nil {
		return nil, err
	}

	return val, nil
}

// Set stores a value with TTL.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := c.client.Set(ctx, c.prefix+key, value, ttl).Err()
	c.record("set", err)
	return err
}

// Delete removes a key.
func (c *Cache) Delete(ctx context.Context, key string) error {
	err := c.client.Del(ctx, c.prefix+key).Err()
	c.record("delete", err)
	return err
}

func (c *Cache) record(operation string, err error) {
	if c.metrics == nil {
		return
	}
	c.metrics.RedisOperations.WithLabelValues(operation).Inc()
	if err != nil {
		c.metrics.RedisErrors.WithLabelValues(operation).Inc()
	}
}
