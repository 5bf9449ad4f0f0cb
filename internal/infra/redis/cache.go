package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache implements the domain.Cache interface using Redis. Keys are
// namespaced with a configurable prefix so several deployments can
// share one Redis instance.
type Cache struct {
	client    *redis.Client
	logger    *zap.Logger
	keyPrefix string
}

// NewCache creates a new Redis cache instance.
func NewCache(client *redis.Client, logger *zap.Logger, keyPrefix string) *Cache {
	return &Cache{
		client:    client,
		logger:    logger,
		keyPrefix: keyPrefix,
	}
}

// Get retrieves a value by key. Returns nil, nil on a miss so callers
// can distinguish absence from transport errors.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, c.buildKey(key)).Bytes()
	switch {
	case err == redis.Nil:
		return nil, nil
	case err != nil:
		c.logger.Error("cache get failed", zap.String("key", key), zap.Error(err))
		return nil, err
	}

	c.logger.Debug("cache hit", zap.String("key", key), zap.Int("bytes", len(data)))

	return data, nil
}

// Set stores a value under the namespaced key with the given TTL.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.buildKey(key), value, ttl).Err(); err != nil {
		c.logger.Error("cache set failed",
			zap.String("key", key),
			zap.Int("bytes", len(value)),
			zap.Duration("ttl", ttl),
			zap.Error(err),
		)

		return err
	}

	c.logger.Debug("cache set",
		zap.String("key", key),
		zap.Int("bytes", len(value)),
		zap.Duration("ttl", ttl),
	)

	return nil
}

// Delete removes a value by key. Deleting a missing key is a no-op.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.buildKey(key)).Err(); err != nil {
		c.logger.Error("cache delete failed", zap.String("key", key), zap.Error(err))
		return err
	}

	c.logger.Debug("cache delete", zap.String("key", key))

	return nil
}

// DeletePrefix removes every key under the given prefix, e.g. one
// viewer's cached search pages after a bookmark write.
func (c *Cache) DeletePrefix(ctx context.Context, prefix string) error {
	deleted, err := c.deleteByPattern(ctx, c.buildKey(prefix)+"*")
	if err != nil {
		return err
	}

	c.logger.Debug("cache prefix invalidated",
		zap.String("prefix", prefix),
		zap.Int("key_count", deleted),
	)

	return nil
}

// Clear removes all cached values under the keyPrefix namespace.
func (c *Cache) Clear(ctx context.Context) error {
	deleted, err := c.deleteByPattern(ctx, c.keyPrefix+":*")
	if err != nil {
		return err
	}

	if deleted > 0 {
		c.logger.Info("cache cleared", zap.Int("key_count", deleted))
	}

	return nil
}

// deleteByPattern collects matching keys with SCAN, which does not
// block Redis the way KEYS would, then deletes them in one call.
func (c *Cache) deleteByPattern(ctx context.Context, pattern string) (int, error) {
	var keys []string

	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.Error("cache scan failed",
			zap.String("pattern", pattern),
			zap.Error(err),
		)

		return 0, err
	}

	if len(keys) == 0 {
		return 0, nil
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Error("cache bulk delete failed",
			zap.Int("key_count", len(keys)),
			zap.Error(err),
		)

		return 0, err
	}

	return len(keys), nil
}

func (c *Cache) buildKey(key string) string {
	return c.keyPrefix + ":" + key
}
