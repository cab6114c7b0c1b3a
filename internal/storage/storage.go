// Package storage provides the durable key/value storage that backs the
// session and active-account stores. It is the single source of truth for
// credentials: the HTTP client reads tokens from here directly.
package storage

import (
	"context"
	"errors"
)

// Keys shared by the session store, the account store and the HTTP client.
const (
	KeyAccessToken     = "access_token"
	KeyRefreshToken    = "refresh_token"
	KeyUser            = "user"
	KeyActiveAccountID = "active_account_id"

	// Snapshot keys hold the whole store state for rehydration.
	KeyAuthSnapshot    = "auth-storage"
	KeyAccountSnapshot = "account-storage"
)

var ErrEmptyKey = errors.New("key cannot be empty")

// Storage is a small durable key/value store.
//
// Update applies every set and remove as one unit: readers never observe a
// partially applied batch.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Update(ctx context.Context, set map[string]string, remove ...string) error
	Close() error
}

// GetString returns the value for key or an empty string when it is absent
// or cannot be read.
func GetString(ctx context.Context, s Storage, key string) string {
	value, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return ""
	}
	return value
}

func checkKeys(set map[string]string, remove []string) error {
	for key := range set {
		if len(key) == 0 {
			return ErrEmptyKey
		}
	}
	for _, key := range remove {
		if len(key) == 0 {
			return ErrEmptyKey
		}
	}
	return nil
}
