package tokencache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	tokenKeyPrefix = "hashtoken:"
	shareKeyPrefix = "shareinfo:"
)

// RedisCache implements Cache on a Redis instance, for deployments
// where the engine and the media proxy run in separate processes on
// separate hosts.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisCache creates a Redis-backed cache. A zero ttl stores keys
// without expiry, matching the contract that server-issued expiry is
// authoritative.
func NewRedisCache(addr string, db int, ttl time.Duration, logger *zap.Logger) (*RedisCache, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	logger.Info("Connected to redis token cache", zap.String("addr", addr), zap.Int("db", db))
	return &RedisCache{client: client, ttl: ttl, logger: logger}, nil
}

// Put stores a token for a content identifier
func (c *RedisCache) Put(key, token string) error {
	ctx, cancel := opContext()
	defer cancel()
	return c.client.Set(ctx, tokenKeyPrefix+key, token, c.ttl).Err()
}

// Get retrieves the token for a content identifier
func (c *RedisCache) Get(key string) (string, bool) {
	ctx, cancel := opContext()
	defer cancel()
	token, err := c.client.Get(ctx, tokenKeyPrefix+key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("Redis token lookup failed", zap.String("key", key), zap.Error(err))
		}
		return "", false
	}
	return token, true
}

// Delete removes the token for a content identifier
func (c *RedisCache) Delete(key string) error {
	ctx, cancel := opContext()
	defer cancel()
	return c.client.Del(ctx, tokenKeyPrefix+key).Err()
}

// PutShare stores a share descriptor under its composite key
func (c *RedisCache) PutShare(info ShareInfo) error {
	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal share info: %w", err)
	}
	ctx, cancel := opContext()
	defer cancel()
	return c.client.Set(ctx, shareKeyPrefix+ShareKey(info.AlbumId, info.ShareId), data, c.ttl).Err()
}

// GetShare retrieves the share descriptor for a composite key
func (c *RedisCache) GetShare(albumId, shareId string) (ShareInfo, bool) {
	ctx, cancel := opContext()
	defer cancel()
	data, err := c.client.Get(ctx, shareKeyPrefix+ShareKey(albumId, shareId)).Bytes()
	if err != nil {
		return ShareInfo{}, false
	}
	var info ShareInfo
	if err := json.Unmarshal(data, &info); err != nil {
		c.logger.Warn("Corrupt share info in redis",
			zap.String("albumId", albumId),
			zap.String("shareId", shareId),
			zap.Error(err))
		return ShareInfo{}, false
	}
	return info, true
}

// DeleteShare removes the share descriptor for a composite key
func (c *RedisCache) DeleteShare(albumId, shareId string) error {
	ctx, cancel := opContext()
	defer cancel()
	return c.client.Del(ctx, shareKeyPrefix+ShareKey(albumId, shareId)).Err()
}

// Close closes the underlying client
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 3*time.Second)
}
