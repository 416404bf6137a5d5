package utils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/angelolev/tech-calendar/config"
)

var ErrCacheMiss = errors.New("cache miss")

var redisClient *redis.Client

// InitRedis connects the shared Redis client. Redis is optional: when
// REDIS_ADDR is empty the client stays nil and cache calls miss.
func InitRedis(cfg *config.Config) error {
	if cfg.RedisAddr == "" {
		return nil
	}

	redisClient = redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		redisClient = nil
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

func RedisEnabled() bool {
	return redisClient != nil
}

// CacheGetJSON loads the value stored under key into dest.
func CacheGetJSON(ctx context.Context, key string, dest any) error {
	if redisClient == nil {
		return ErrCacheMiss
	}
	raw, err := redisClient.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return fmt.Errorf("cache get: %w", err)
	}
	return json.Unmarshal(raw, dest)
}

// CacheSetJSON stores value under key with the given TTL.
func CacheSetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	if redisClient == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal: %w", err)
	}
	if err := redisClient.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// CacheInvalidate drops the given keys.
func CacheInvalidate(ctx context.Context, keys ...string) error {
	if redisClient == nil || len(keys) == 0 {
		return nil
	}
	if err := redisClient.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}
