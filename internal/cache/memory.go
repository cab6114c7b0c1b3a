package cache

import (
	"context"
	"slices"

	gocache "github.com/patrickmn/go-cache"
)

// Memory is an in-process cache with per entry expiry.
type Memory struct {
	items *gocache.Cache
}

func NewMemory(c Config) *Memory {
	if c.TTL <= 0 {
		c = DefaultConfig()
	}
	return &Memory{
		items: gocache.New(c.TTL, 2*c.TTL),
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	if len(key) == 0 {
		return nil, false, ErrEmptyKey
	}

	value, found := m.items.Get(key)
	if !found {
		return nil, false, nil
	}

	data, ok := value.([]byte)
	if !ok {
		return nil, false, nil
	}

	return slices.Clone(data), true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	if len(key) == 0 {
		return ErrEmptyKey
	}
	m.items.Set(key, slices.Clone(value), gocache.DefaultExpiration)
	return nil
}

func (m *Memory) Clear(context.Context) error {
	m.items.Flush()
	return nil
}

func (m *Memory) Close() error {
	m.items.Flush()
	return nil
}

func (m *Memory) Len() int {
	return m.items.ItemCount()
}
