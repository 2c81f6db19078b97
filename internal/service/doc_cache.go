package service

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// DocumentCache is the injected capability backing the short-lived document
// and list caches. Implementations must be safe for concurrent use.
type DocumentCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type redisDocumentCache struct {
	client *redis.Client
}

// NewRedisDocumentCache wraps a Redis client as a DocumentCache.
func NewRedisDocumentCache(client *redis.Client) DocumentCache {
	return &redisDocumentCache{client: client}
}

func (c *redisDocumentCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (c *redisDocumentCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}
