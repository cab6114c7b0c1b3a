package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/bolsillo-claro/cli/internal/testing/redistest"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedis(t *testing.T) {
	ctx := context.Background()
	client := redistest.Setup(t)

	// something that is not a cached response
	require.NoError(t, client.Set(ctx, "test:access_token", "AT1", 0).Err())

	c := NewRedis(client, "test", Config{TTL: time.Minute})

	require.NoError(t, c.Set(ctx, "acc-1|/accounts", []byte(`{"count":0}`)))

	value, found, err := c.Get(ctx, "acc-1|/accounts")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"count":0}`, string(value))

	ttl := client.TTL(ctx, "test:cache:acc-1|/accounts").Val()
	assert.True(t, ttl > 0 && ttl <= time.Minute)

	require.NoError(t, c.Clear(ctx))

	_, found, err = c.Get(ctx, "acc-1|/accounts")
	require.NoError(t, err)
	assert.False(t, found)

	assert.Equal(t, "AT1", client.Get(ctx, "test:access_token").Val())
}

func TestRedis_CloseReleasesClient(t *testing.T) {
	redistest.Setup(t)

	client := redis.NewClient(&redis.Options{
		Addr: os.Getenv(redistest.AddrEnv),
		DB:   15,
	})
	c := NewRedis(client, "test", DefaultConfig())

	require.NoError(t, c.Close())
	assert.ErrorIs(t, client.Ping(context.Background()).Err(), redis.ErrClosed)
}
