package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"

	"stash/internal/domain"
)

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client:  client,
		baseTTL: 5 * time.Minute,
	}
}

type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func (r *RedisCache) Get(ctx context.Context, userID string, kind domain.Kind) ([]domain.EnrichedItem, error) {
	data, err := r.client.Get(ctx, cacheKey(userID, kind)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	var items []domain.EnrichedItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *RedisCache) Set(ctx context.Context, userID string, kind domain.Kind, items []domain.EnrichedItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, cacheKey(userID, kind), data, r.ttl()).Err()
}

func (r *RedisCache) Delete(ctx context.Context, userID string, kind domain.Kind) error {
	return r.client.Del(ctx, cacheKey(userID, kind)).Err()
}

// ttl jitters the expiry so a burst of fills does not expire in lockstep.
func (r *RedisCache) ttl() time.Duration {
	jitter := time.Duration(rand.Int63n(int64(30 * time.Second)))
	return r.baseTTL + jitter
}

func cacheKey(userID string, kind domain.Kind) string {
	return fmt.Sprintf("view:%s:%s", kind, userID)
}
