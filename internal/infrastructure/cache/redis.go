package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"Zenframe/internal/domain"
	"Zenframe/internal/ports"
)

const keyPrefix = "zenframe:enrichment:"

var _ ports.EnrichmentCache = (*RedisCache)(nil)

// RedisCache stores successful enrichments as JSON values with a TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// Dial parses a redis:// URL and verifies the connection.
func Dial(ctx context.Context, url string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisCache(client, ttl), nil
}

// NewRedisCache wraps an existing client.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Get returns the cached enrichment for key, if any.
func (c *RedisCache) Get(ctx context.Context, key string) (domain.Enrichment, bool, error) {
	raw, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Enrichment{}, false, nil
	}
	if err != nil {
		return domain.Enrichment{}, false, fmt.Errorf("redis get: %w", err)
	}

	var e domain.Enrichment
	if err := json.Unmarshal(raw, &e); err != nil {
		return domain.Enrichment{}, false, fmt.Errorf("decode cached enrichment: %w", err)
	}
	return e, true, nil
}

// Set stores e under key for the configured TTL.
func (c *RedisCache) Set(ctx context.Context, key string, e domain.Enrichment) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode enrichment: %w", err)
	}
	if err := c.client.Set(ctx, keyPrefix+key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
