package redis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hero-tracker/internal/config"
	"github.com/redis/go-redis/v9"
)

// DocStore is the Redis-backed document store. Each document key holds one
// JSON snapshot; Save replaces the whole value.
type DocStore struct {
	client *redis.Client
	logger *slog.Logger
}

// NewDocStore connects to Redis and returns a document store
func NewDocStore(cfg *config.RedisConfig, logger *slog.Logger) (*DocStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	// Test connection
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return &DocStore{
		client: client,
		logger: logger,
	}, nil
}

// Close closes the Redis connection
func (s *DocStore) Close() error {
	return s.client.Close()
}

// Client returns the underlying Redis client
func (s *DocStore) Client() *redis.Client {
	return s.client
}

// Load returns the snapshot stored at key. A missing key is reported
// through the ok flag, not as an error.
func (s *DocStore) Load(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("loading document: %w", err)
	}
	return data, true, nil
}

// Save replaces the snapshot stored at key
func (s *DocStore) Save(ctx context.Context, key string, data []byte) error {
	if err := s.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// Delete removes the snapshot stored at key; deleting a missing key is a no-op
func (s *DocStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}
