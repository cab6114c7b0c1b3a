package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis keeps responses under "<prefix>:cache:<key>" so Clear can find them
// without touching anything else in the database.
type Redis struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewRedis(client redis.UniversalClient, prefix string, c Config) *Redis {
	if c.TTL <= 0 {
		c = DefaultConfig()
	}
	if len(prefix) == 0 {
		prefix = "bolsillo"
	}
	return &Redis{
		client: client,
		prefix: fmt.Sprintf("%s:cache:", prefix),
		ttl:    c.TTL,
	}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if len(key) == 0 {
		return nil, false, ErrEmptyKey
	}

	value, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	return value, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	if len(key) == 0 {
		return ErrEmptyKey
	}
	return r.client.Set(ctx, r.prefix+key, value, r.ttl).Err()
}

func (r *Redis) Clear(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan: %w", err)
	}

	if len(keys) == 0 {
		return nil
	}

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Close releases the redis client.
func (r *Redis) Close() error {
	return r.client.Close()
}
