package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStorage keeps values in Redis under "<prefix>:<key>", which lets
// several clients on different machines share one session.
type RedisStorage struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisStorage(client redis.UniversalClient, prefix string) *RedisStorage {
	if len(prefix) == 0 {
		prefix = "bolsillo"
	}
	return &RedisStorage{
		client: client,
		prefix: prefix,
	}
}

func (r *RedisStorage) key(key string) string {
	return fmt.Sprintf("%s:%s", r.prefix, key)
}

func (r *RedisStorage) Get(ctx context.Context, key string) (string, bool, error) {
	if len(key) == 0 {
		return "", false, ErrEmptyKey
	}

	value, err := r.client.Get(ctx, r.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis get: %w", err)
	}

	return value, true, nil
}

func (r *RedisStorage) Update(ctx context.Context, set map[string]string, remove ...string) error {
	if err := checkKeys(set, remove); err != nil {
		return err
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if len(remove) > 0 {
			keys := make([]string, 0, len(remove))
			for _, key := range remove {
				keys = append(keys, r.key(key))
			}
			pipe.Del(ctx, keys...)
		}
		for key, value := range set {
			pipe.Set(ctx, r.key(key), value, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis update: %w", err)
	}

	return nil
}

func (r *RedisStorage) Close() error {
	return r.client.Close()
}
