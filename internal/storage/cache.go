package storage

import (
	"context"
	"fmt"
	"time"
)

// KeyValueCache is the subset of the application cache a CacheSlot needs.
// Get returns ("", nil) for a missing key.
type KeyValueCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

// CacheSlot keeps the value under one Redis key with no expiry. The collection
// is always a JSON document, so an empty string can only mean "absent".
type CacheSlot struct {
	cache KeyValueCache
	key   string
}

func NewCacheSlot(cache KeyValueCache, key string) (*CacheSlot, error) {
	if cache == nil {
		return nil, fmt.Errorf("storage: cache slot needs a cache")
	}
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	return &CacheSlot{cache: cache, key: key}, nil
}

func (s *CacheSlot) Key() string { return s.key }

func (s *CacheSlot) Read(ctx context.Context) ([]byte, bool, error) {
	value, err := s.cache.Get(ctx, s.key)
	if err != nil {
		return nil, false, fmt.Errorf("storage: get %q: %w", s.key, err)
	}
	if value == "" {
		return nil, false, nil
	}
	return []byte(value), true, nil
}

func (s *CacheSlot) Write(ctx context.Context, data []byte) error {
	if err := s.cache.Set(ctx, s.key, string(data), 0); err != nil {
		return fmt.Errorf("storage: set %q: %w", s.key, err)
	}
	return nil
}

func (s *CacheSlot) Remove(ctx context.Context) error {
	if err := s.cache.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("storage: delete %q: %w", s.key, err)
	}
	return nil
}

func (s *CacheSlot) Ping(ctx context.Context) error {
	return s.cache.Ping(ctx)
}
