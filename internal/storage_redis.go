package internal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisKeyPrefix = "subtrack:"

// RedisStorage keeps blobs as plain Redis string values under a key prefix
type RedisStorage struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisStorage connects to Redis and verifies the connection with a ping
func NewRedisStorage(cfg RedisConfig) (*RedisStorage, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", cfg.Addr, err)
	}

	return NewRedisStorageWithClient(client, cfg.KeyPrefix), nil
}

// NewRedisStorageWithClient wraps an existing client
func NewRedisStorageWithClient(client *redis.Client, keyPrefix string) *RedisStorage {
	if keyPrefix == "" {
		keyPrefix = defaultRedisKeyPrefix
	}
	return &RedisStorage{client: client, keyPrefix: keyPrefix}
}

func (r *RedisStorage) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := r.client.Get(ctx, r.keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return data, true, nil
}

// Set stores the blob without expiry
func (r *RedisStorage) Set(ctx context.Context, key string, blob []byte) error {
	if err := r.client.Set(ctx, r.keyPrefix+key, blob, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	return r.client.Close()
}
