// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache memoizes read-only tool lookups in Redis.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/agent"
)

const (
	keyPrefix  = "research-assistant:tool:"
	defaultTTL = time.Hour
)

// Store is a string key/value store with expiry.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// RedisStore is a Store backed by a Redis server.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to the server at redisURL and pings it.
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

// Close releases the connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Tool wraps an agent tool so successful outputs are cached per input.
// Store failures fall through to the wrapped tool.
type Tool struct {
	agent.Tool
	store  Store
	ttl    time.Duration
	logger *zap.Logger
}

// Wrap returns t decorated with a cache in store. A zero ttl means one hour.
func Wrap(t agent.Tool, store Store, ttl time.Duration, logger *zap.Logger) *Tool {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tool{Tool: t, store: store, ttl: ttl, logger: logger.With(zap.String("tool", t.Name()))}
}

// Run returns the cached output for input, or runs the tool and caches the
// result on success.
func (c *Tool) Run(ctx context.Context, input string) (string, error) {
	key := Key(c.Name(), input)

	if val, ok, err := c.store.Get(ctx, key); err != nil {
		c.logger.Warn("cache read failed", zap.Error(err))
	} else if ok {
		c.logger.Debug("cache hit")
		return val, nil
	}

	out, err := c.Tool.Run(ctx, input)
	if err != nil {
		return "", err
	}
	if err := c.store.Set(ctx, key, out, c.ttl); err != nil {
		c.logger.Warn("cache write failed", zap.Error(err))
	}
	return out, nil
}

// Key derives the cache key for a tool invocation.
func Key(tool, input string) string {
	sum := sha256.Sum256([]byte(input))
	return keyPrefix + tool + ":" + hex.EncodeToString(sum[:])
}
