package config

import (
	"context"
	"fmt"
	"time"

	"github.com/bolsillo-claro/cli/internal/cache"
	"github.com/bolsillo-claro/cli/internal/storage"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func (c *Config) newRedisClient(ctx context.Context) (redis.UniversalClient, error) {
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    []string{c.Redis.Addr},
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", c.Redis.Addr, err)
	}

	return client, nil
}

// OpenStorage opens the durable storage the session lives in.
func (c *Config) OpenStorage(ctx context.Context) (storage.Storage, error) {

	host, err := c.APIHost()
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"driver": c.Storage.Driver,
		"host":   host,
	}).Debugln("Opening session storage")

	switch c.Storage.Driver {
	case StorageDriverMemory:
		return storage.NewMemoryStorage(), nil
	case StorageDriverRedis:
		client, err := c.newRedisClient(ctx)
		if err != nil {
			return nil, err
		}
		return storage.NewRedisStorage(client, fmt.Sprintf("%s:%s", c.Storage.Prefix, host)), nil
	case StorageDriverFile:
		dir := c.Storage.Path
		if len(dir) == 0 {
			dir, err = storage.DefaultDirectory()
			if err != nil {
				return nil, err
			}
		}
		return storage.OpenFileStorage(dir, host)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
}

// OpenCache returns the response cache, or a cache that keeps nothing when
// caching is disabled.
func (c *Config) OpenCache(ctx context.Context) (cache.Cache, error) {

	if !c.Cache.Enabled {
		return cache.Noop{}, nil
	}

	cfg := cache.DefaultConfig()
	if c.Cache.TTL > 0 {
		cfg.TTL = c.Cache.TTL
	}

	switch c.Cache.Driver {
	case CacheDriverMemory:
		return cache.NewMemory(cfg), nil
	case CacheDriverRedis:
		host, err := c.APIHost()
		if err != nil {
			return nil, err
		}
		client, err := c.newRedisClient(ctx)
		if err != nil {
			return nil, err
		}
		return cache.NewRedis(client, fmt.Sprintf("%s:%s", c.Storage.Prefix, host), cfg), nil
	default:
		return nil, fmt.Errorf("unknown cache driver %q", c.Cache.Driver)
	}
}
