package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Muntazir86/short-it/internal/models"
)

type CacheRepository interface {
	Get(ctx context.Context, code string) (*models.URL, error)
	Set(ctx context.Context, code string, url *models.URL, ttl time.Duration) error
	Delete(ctx context.Context, code string) error
}

type cacheRepository struct {
	redis *RedisDB
}

func NewCacheRepository(redis *RedisDB) CacheRepository {
	return &cacheRepository{redis: redis}
}

func (r *cacheRepository) Get(ctx context.Context, code string) (*models.URL, error) {
	data, err := r.redis.Client.Get(ctx, r.key(code)).Bytes()
	if err != nil {
		return nil, err
	}

	var url models.URL
	if err := json.Unmarshal(data, &url); err != nil {
		return nil, fmt.Errorf("failed to unmarshal url: %w", err)
	}

	return &url, nil
}

func (r *cacheRepository) Set(ctx context.Context, code string, url *models.URL, ttl time.Duration) error {
	data, err := json.Marshal(url)
	if err != nil {
		return fmt.Errorf("failed to marshal url: %w", err)
	}

	return r.redis.Client.Set(ctx, r.key(code), data, ttl).Err()
}

func (r *cacheRepository) Delete(ctx context.Context, code string) error {
	return r.redis.Client.Del(ctx, r.key(code)).Err()
}

func (r *cacheRepository) key(code string) string {
	return "url:" + code
}
