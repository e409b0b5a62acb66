package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hammamikhairi/recipebot/internal/domain"
	"github.com/hammamikhairi/recipebot/internal/logger"
)

// Compile-time interface check.
var _ KV = (*RedisKV)(nil)

// RedisKV is a key-value store backed by Redis. Keys are namespaced
// with a prefix so several tools can share one database.
type RedisKV struct {
	client *redis.Client
	prefix string
	log    *logger.Logger
}

// NewRedisKV connects to Redis. A failed ping is logged, not returned:
// the cache is optional and every later call reports its own error.
func NewRedisKV(addr, password string, db int, log *logger.Logger) *RedisKV {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("redis kv: ping %s failed: %v", addr, err)
	} else {
		log.Info("redis kv: connected to %s (db=%d)", addr, db)
	}

	return &RedisKV{client: client, prefix: "recipebot:", log: log}
}

// Get returns the value stored under key.
func (s *RedisKV) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		s.log.Debug("redis kv: %s not found", key)
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, nil
}

// Set stores value under key with no expiry.
func (s *RedisKV) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	s.log.Debug("redis kv: set %s (%d bytes)", key, len(value))
	return nil
}

// Close closes the client.
func (s *RedisKV) Close() error { return s.client.Close() }
