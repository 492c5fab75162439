// Package redisinfra caches catalog documents in Redis.
package redisinfra

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/plant-catalog-api/internal/config"
	"github.com/plant-catalog-api/internal/domain"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "plant:"

// PlantCache is a read-through cache of plant documents keyed by id.
type PlantCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewClient returns a Redis client for cfg.RedisAddr.
func NewClient(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

func NewPlantCache(client redis.Cmdable, ttl time.Duration) *PlantCache {
	return &PlantCache{client: client, ttl: ttl}
}

// Get returns the cached document. ok is false on a miss.
func (c *PlantCache) Get(ctx context.Context, plantID string) (domain.Plant, bool, error) {
	raw, err := c.client.Get(ctx, keyPrefix+plantID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get plant %s: %w", plantID, err)
	}
	var p domain.Plant
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, false, fmt.Errorf("decode cached plant %s: %w", plantID, err)
	}
	return p, true, nil
}

func (c *PlantCache) Set(ctx context.Context, plantID string, p domain.Plant) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode plant %s: %w", plantID, err)
	}
	if err := c.client.Set(ctx, keyPrefix+plantID, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set plant %s: %w", plantID, err)
	}
	return nil
}

// Delete drops the cached document so the next read goes to the store.
func (c *PlantCache) Delete(ctx context.Context, plantID string) error {
	if err := c.client.Del(ctx, keyPrefix+plantID).Err(); err != nil {
		return fmt.Errorf("redis delete plant %s: %w", plantID, err)
	}
	return nil
}
