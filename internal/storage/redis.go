package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/redis/go-redis/v9"
)

const DefaultCartTTL = 30 * 24 * time.Hour

func NewRedisStorage(client *redis.Client, ttl time.Duration) *RedisStorage {
	if ttl <= 0 {
		ttl = DefaultCartTTL
	}
	return &RedisStorage{
		client:  client,
		baseTTL: ttl,
	}
}

// RedisStorage keeps each cart as a JSON document. Every save refreshes the
// expiry so active carts never lapse.
type RedisStorage struct {
	client  *redis.Client
	baseTTL time.Duration
}

func (r *RedisStorage) Load(ctx context.Context, key string) (*domain.CartState, error) {
	data, err := r.client.Get(ctx, cartKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	return decodeCart(data)
}

func (r *RedisStorage) Save(ctx context.Context, key string, state domain.CartState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}

	jitter := time.Duration(rand.Intn(60)) * time.Minute
	if err := r.client.Set(ctx, cartKey(key), data, r.baseTTL+jitter).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, cartKey(key)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func cartKey(key string) string {
	return fmt.Sprintf("cart:%s", key)
}

func decodeCart(data []byte) (*domain.CartState, error) {
	var state domain.CartState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return &state, nil
}
