package storage

import (
	"context"
	"testing"

	"github.com/bolsillo-claro/cli/internal/testing/redistest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStorage(t *testing.T) {
	ctx := context.Background()
	client := redistest.Setup(t)

	s := NewRedisStorage(client, "test:api.example.com")

	require.NoError(t, s.Update(ctx, map[string]string{
		KeyAccessToken:     "AT1",
		KeyActiveAccountID: "acc-1",
	}))
	assert.Equal(t, "AT1", client.Get(ctx, "test:api.example.com:access_token").Val())

	require.NoError(t, s.Update(ctx, map[string]string{
		KeyAccessToken: "AT2",
	}, KeyAccessToken, KeyActiveAccountID))

	assert.Equal(t, "AT2", GetString(ctx, s, KeyAccessToken))

	_, ok, err := s.Get(ctx, KeyActiveAccountID)
	require.NoError(t, err)
	assert.False(t, ok)

	// another prefix is another session
	other := NewRedisStorage(client, "test:other.example.com")
	assert.Empty(t, GetString(ctx, other, KeyAccessToken))
}
