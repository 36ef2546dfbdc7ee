package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/Deven107/weather-etl-pipeline/internal/config"
	"github.com/Deven107/weather-etl-pipeline/internal/pkg/logger"
)

// Cache is a byte-oriented cache for API responses. Get returns (nil, nil)
// on a miss.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeleteByPattern(ctx context.Context, pattern string) error
	HealthCheck(ctx context.Context) error
	Close() error
}

type RedisCache struct {
	client *redis.Client
	logger logger.Logger
}

func NewRedisCache(cfg config.RedisConfig, log logger.Logger) (*RedisCache, error) {
	cacheLog := log.WithField("component", "redis_cache")

	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	cacheLog.Info("Redis cache initialized successfully")
	return &RedisCache{
		client: client,
		logger: cacheLog,
	}, nil
}

func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get from Redis: %w", err)
	}
	return data, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set data in Redis: %w", err)
	}
	return nil
}

func (r *RedisCache) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete from Redis: %w", err)
	}
	return nil
}

// DeleteByPattern drops every key matching the pattern. Used to invalidate
// a city's cached stats after a recompute.
func (r *RedisCache) DeleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64

	for {
		keys, next, err := r.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return fmt.Errorf("failed to scan keys: %w", err)
		}

		if len(keys) > 0 {
			if _, err := r.client.Del(ctx, keys...).Result(); err != nil {
				return fmt.Errorf("failed to delete keys: %w", err)
			}
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	return nil
}

func (r *RedisCache) HealthCheck(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("Redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisCache) Close() error {
	r.logger.Info("Closing Redis cache...")
	return r.client.Close()
}
