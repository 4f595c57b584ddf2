package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable wraps connectivity failures of the redis backend.
var ErrRedisUnavailable = errors.New("redis unavailable")

const defaultRedisTimeout = 2 * time.Second

// RedisPrefs keeps one preference namespace in a redis hash.
type RedisPrefs struct {
	client  redis.UniversalClient
	key     string
	timeout time.Duration
}

// NewRedisPrefs returns a store for namespace backed by the hash "<prefix>:<namespace>".
func NewRedisPrefs(client redis.UniversalClient, prefix, namespace string) *RedisPrefs {
	key := namespace
	if prefix != "" {
		key = prefix + ":" + namespace
	}
	return &RedisPrefs{
		client:  client,
		key:     key,
		timeout: defaultRedisTimeout,
	}
}

func (p *RedisPrefs) GetString(key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	value, err := p.client.HGet(ctx, p.key, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read preference: %w: %w", ErrRedisUnavailable, err)
	}
	return value, true, nil
}

func (p *RedisPrefs) PutString(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	if err := p.client.HSet(ctx, p.key, key, value).Err(); err != nil {
		return fmt.Errorf("failed to save preference: %w: %w", ErrRedisUnavailable, err)
	}
	return nil
}

func (p *RedisPrefs) Clear() error {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	if err := p.client.Del(ctx, p.key).Err(); err != nil {
		return fmt.Errorf("failed to clear preferences: %w: %w", ErrRedisUnavailable, err)
	}
	return nil
}
