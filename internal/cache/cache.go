// Package cache stores successful GET responses so repeated reads of the
// same resource do not hit the API. The whole cache is dropped whenever the
// session changes hands.
package cache

import (
	"context"
	"errors"
	"time"
)

var ErrEmptyKey = errors.New("key cannot be empty")

// Cache is a response cache.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	// Clear removes every entry this cache owns.
	Clear(ctx context.Context) error
	Close() error
}

type Config struct {
	TTL time.Duration `json:"ttl"`
}

func DefaultConfig() Config {
	return Config{
		TTL: 5 * time.Minute,
	}
}

// Noop is used when caching is disabled.
type Noop struct{}

func (Noop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (Noop) Set(context.Context, string, []byte) error         { return nil }
func (Noop) Clear(context.Context) error                       { return nil }
func (Noop) Close() error                                      { return nil }
