package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fridge-recipes/internal/infrastructure/config"
	"fridge-recipes/internal/pkg/common"
	"fridge-recipes/internal/pkg/metrics"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisStore is an optional recipe tier shared between instances. It is only
// a performance layer; callers treat every error as a miss.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisStore connects to redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg config.RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	common.LogInfo("Shared recipe cache connected",
		zap.String("addr", cfg.Addr),
		zap.Duration("ttl", cfg.TTL),
	)

	return newRedisStore(client, cfg.TTL, cfg.Prefix), nil
}

func newRedisStore(client *redis.Client, ttl time.Duration, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "fridge:recipes"
	}
	return &RedisStore{client: client, ttl: ttl, prefix: prefix}
}

// Get returns the recipes stored under the ingredient-set key.
func (s *RedisStore) Get(ctx context.Context, key string) ([]common.Recipe, bool, error) {
	data, err := s.client.Get(ctx, s.redisKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.CacheOperations.WithLabelValues("redis", "miss").Inc()
			return nil, false, nil
		}
		metrics.CacheOperations.WithLabelValues("redis", "error").Inc()
		return nil, false, fmt.Errorf("failed to get shared cache entry: %w", err)
	}

	var recipes []common.Recipe
	if err := json.Unmarshal(data, &recipes); err != nil {
		metrics.CacheOperations.WithLabelValues("redis", "error").Inc()
		return nil, false, fmt.Errorf("failed to decode shared cache entry: %w", err)
	}

	metrics.CacheOperations.WithLabelValues("redis", "hit").Inc()
	return recipes, true, nil
}

// Set stores recipes under the ingredient-set key with the configured TTL.
func (s *RedisStore) Set(ctx context.Context, key string, recipes []common.Recipe) error {
	data, err := json.Marshal(recipes)
	if err != nil {
		return fmt.Errorf("failed to encode shared cache entry: %w", err)
	}
	if err := s.client.Set(ctx, s.redisKey(key), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set shared cache entry: %w", err)
	}
	return nil
}

// Ping checks the connection, for readiness probes.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// redisKey hashes the ingredient key so arbitrary user text never lands in key names.
func (s *RedisStore) redisKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return s.prefix + ":" + hex.EncodeToString(sum[:])
}
