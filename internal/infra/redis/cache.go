package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const (
	cacheKeyPrefix  = "folio:cache"
	defaultCacheTTL = 10 * time.Minute
)

// ErrCacheMiss is returned by Get when the key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// ResponseCache stores JSON snapshots of upstream provider responses so public
// pages do not hit GitHub or LinkedIn on every request.
type ResponseCache struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewResponseCache(client *goredis.Client, ttl time.Duration) (*ResponseCache, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &ResponseCache{client: client, ttl: ttl}, nil
}

func (c *ResponseCache) TTL() time.Duration {
	return c.ttl
}

// Get decodes the cached value for key into dest.
func (c *ResponseCache) Get(ctx context.Context, key string, dest any) error {
	raw, err := c.client.Get(ctx, cacheKey(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("failed to read cache key %q: %w", key, err)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("failed to decode cache key %q: %w", key, err)
	}
	return nil
}

func (c *ResponseCache) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache key %q: %w", key, err)
	}

	if err := c.client.Set(ctx, cacheKey(key), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache key %q: %w", key, err)
	}
	return nil
}

func (c *ResponseCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, cacheKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete cache key %q: %w", key, err)
	}
	return nil
}

func cacheKey(key string) string {
	return cacheKeyPrefix + ":" + strings.ToLower(strings.TrimSpace(key))
}
