package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"lapak/internal/models"

	"github.com/redis/go-redis/v9"
)

func NewRedisStoreCache(client *redis.Client, ttl time.Duration) *RedisStoreCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisStoreCache{
		client:  client,
		baseTTL: ttl,
	}
}

type RedisStoreCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func (r RedisStoreCache) Get(ctx context.Context, storeID string) (*models.Store, error) {
	data, err := r.client.Get(ctx, cacheKey(storeID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var store models.Store
	if err := json.Unmarshal(data, &store); err != nil {
		return nil, fmt.Errorf("unmarshal store failed: %w", err)
	}
	return &store, nil
}

func (r RedisStoreCache) Set(ctx context.Context, store *models.Store) error {
	data, err := json.Marshal(store)
	if err != nil {
		return fmt.Errorf("marshal store failed: %w", err)
	}

	// jitter spreads expiry of stores cached together
	jitter := time.Duration(rand.Int63n(int64(r.baseTTL/10) + 1))
	if err := r.client.Set(ctx, cacheKey(store.ID), data, r.baseTTL+jitter).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r RedisStoreCache) Delete(ctx context.Context, storeID string) error {
	if err := r.client.Del(ctx, cacheKey(storeID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func cacheKey(storeID string) string {
	return fmt.Sprintf("store:%s", storeID)
}
