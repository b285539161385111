// Package cache keeps the last-known-good rate configuration in Redis so a
// freshly started instance can quote while its configuration source is down.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/bibbank/pricing-service/internal/domain/model"
	"github.com/bibbank/pricing-service/internal/domain/valueobject"
)

// DefaultKey is used when no key is configured.
const DefaultKey = "pricing:rate-config:last-known-good"

// RedisRateConfigCache implements port.RateConfigCache. Entries never
// expire; each successful load overwrites the previous one.
type RedisRateConfigCache struct {
	client redis.UniversalClient
	key    string
}

func NewRedisRateConfigCache(client redis.UniversalClient, key string) *RedisRateConfigCache {
	if key == "" {
		key = DefaultKey
	}
	return &RedisRateConfigCache{client: client, key: key}
}

// NewClient builds a Redis client from connection settings.
func NewClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// Get returns valueobject.ErrConfigurationUnavailable when nothing is cached.
func (c *RedisRateConfigCache) Get(ctx context.Context) (model.RateConfig, error) {
	raw, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.RateConfig{}, fmt.Errorf("%w: no cached rate config", valueobject.ErrConfigurationUnavailable)
	}
	if err != nil {
		return model.RateConfig{}, fmt.Errorf("get cached rate config: %w", err)
	}

	var cfg model.RateConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return model.RateConfig{}, fmt.Errorf("decode cached rate config: %w", err)
	}
	return cfg, nil
}

func (c *RedisRateConfigCache) Put(ctx context.Context, cfg model.RateConfig) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode rate config: %w", err)
	}
	if err := c.client.Set(ctx, c.key, raw, 0).Err(); err != nil {
		return fmt.Errorf("cache rate config: %w", err)
	}
	return nil
}

// Ping checks the Redis connection for readiness probes.
func (c *RedisRateConfigCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
