package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultRedisPrefix = "shelf:"
	redisOpTimeout     = 2 * time.Second
)

// RedisBackend stores values as plain Redis strings under a key prefix.
type RedisBackend struct {
	client *redis.Client
	prefix string
}

// NewRedisBackend connects to addr and verifies the connection with PING.
func NewRedisBackend(addr, prefix string) (*RedisBackend, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", addr, err)
	}
	return NewRedisBackendFromClient(client, prefix), nil
}

// NewRedisBackendFromClient wraps an existing client.
func NewRedisBackendFromClient(client *redis.Client, prefix string) *RedisBackend {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisBackend{client: client, prefix: prefix}
}

func (r *RedisBackend) Get(key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	v, err := r.client.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (r *RedisBackend) Set(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	return r.client.Set(ctx, r.prefix+key, value, 0).Err()
}

func (r *RedisBackend) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	return r.client.Del(ctx, r.prefix+key).Err()
}

// Clear deletes every key under the prefix.
func (r *RedisBackend) Clear() error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}

// Close releases the underlying connection pool.
func (r *RedisBackend) Close() error {
	return r.client.Close()
}
