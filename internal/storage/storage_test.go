package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storageDrivers(t *testing.T) map[string]Storage {
	t.Helper()

	fs, err := OpenFileStorage(t.TempDir(), "api.example.com")
	require.NoError(t, err)

	return map[string]Storage{
		"memory": NewMemoryStorage(),
		"file":   fs,
	}
}

func TestStorage_UpdateAndGet(t *testing.T) {
	ctx := context.Background()

	for name, s := range storageDrivers(t) {
		t.Run(name, func(t *testing.T) {
			err := s.Update(ctx, map[string]string{
				KeyAccessToken:  "AT1",
				KeyRefreshToken: "RT1",
			})
			require.NoError(t, err)

			value, ok, err := s.Get(ctx, KeyAccessToken)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "AT1", value)

			_, ok, err = s.Get(ctx, KeyUser)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestStorage_UpdateRemovesBeforeSetting(t *testing.T) {
	ctx := context.Background()

	for name, s := range storageDrivers(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Update(ctx, map[string]string{
				KeyAccessToken:     "AT1",
				KeyActiveAccountID: "acc-1",
			}))

			require.NoError(t, s.Update(ctx, map[string]string{
				KeyAccessToken: "AT2",
			}, KeyAccessToken, KeyActiveAccountID))

			assert.Equal(t, "AT2", GetString(ctx, s, KeyAccessToken))
			assert.Empty(t, GetString(ctx, s, KeyActiveAccountID))
		})
	}
}

func TestStorage_RejectsEmptyKeys(t *testing.T) {
	ctx := context.Background()

	for name, s := range storageDrivers(t) {
		t.Run(name, func(t *testing.T) {
			_, _, err := s.Get(ctx, "")
			assert.ErrorIs(t, err, ErrEmptyKey)

			assert.ErrorIs(t, s.Update(ctx, map[string]string{"": "x"}), ErrEmptyKey)
			assert.ErrorIs(t, s.Update(ctx, nil, ""), ErrEmptyKey)
		})
	}
}

func TestFileStorage_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first, err := OpenFileStorage(dir, "api.example.com")
	require.NoError(t, err)
	require.NoError(t, first.Update(ctx, map[string]string{KeyRefreshToken: "RT1"}))

	second, err := OpenFileStorage(dir, "api.example.com")
	require.NoError(t, err)
	assert.Equal(t, "RT1", GetString(ctx, second, KeyRefreshToken))

	info, err := os.Stat(second.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestFileStorage_CorruptFileIsReinitialized(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "api.example.com.yaml")
	require.NoError(t, os.WriteFile(path, []byte("values: [not: a map"), 0600))

	fs, err := OpenFileStorage(dir, "api.example.com")
	require.NoError(t, err)

	_, ok, err := fs.Get(context.Background(), KeyAccessToken)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStorage_SeparatesHosts(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	a, err := OpenFileStorage(dir, "a.example.com")
	require.NoError(t, err)
	b, err := OpenFileStorage(dir, "b.example.com")
	require.NoError(t, err)

	require.NoError(t, a.Update(ctx, map[string]string{KeyAccessToken: "A"}))
	assert.Empty(t, GetString(ctx, b, KeyAccessToken))
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "default.yaml", fileName(""))
	assert.Equal(t, "api.example.com_8080.yaml", fileName("api.example.com:8080"))
	assert.Equal(t, "_etc_passwd.yaml", fileName("/etc/passwd"))
}
