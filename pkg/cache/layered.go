package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// LayeredOption configures LayeredCache.
type LayeredOption func(*LayeredCache)

// WithLayeredMemorySize bounds the L1 entry count.
func WithLayeredMemorySize(size int) LayeredOption {
	return func(lc *LayeredCache) {
		lc.l1Size = size
	}
}

// WithLayeredL1TTL caps how long L1 keeps a value read from Redis.
func WithLayeredL1TTL(ttl time.Duration) LayeredOption {
	return func(lc *LayeredCache) {
		if ttl > 0 {
			lc.l1TTL = ttl
		}
	}
}

// LayeredCache keeps a small memory cache (L1) in front of Redis (L2).
// Writes go through to Redis; L1 is filled on both writes and L2 hits.
type LayeredCache struct {
	l1     *MemoryCache
	l2     *RedisCache
	l1Size int
	l1TTL  time.Duration
}

func NewLayeredCache(l2 *RedisCache, opts ...LayeredOption) *LayeredCache {
	lc := &LayeredCache{l2: l2, l1Size: 1000, l1TTL: time.Minute}
	for _, opt := range opts {
		opt(lc)
	}
	lc.l1 = NewMemoryCache(WithMemoryMaxSize(lc.l1Size))
	return lc
}

func (lc *LayeredCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if err := lc.l2.Set(ctx, key, value, expiration); err != nil {
		return err
	}
	return lc.l1.Set(ctx, key, value, lc.l1Expiration(expiration))
}

func (lc *LayeredCache) Get(ctx context.Context, key string, dest interface{}) error {
	if err := lc.l1.Get(ctx, key, dest); err == nil {
		return nil
	}

	var raw json.RawMessage
	if err := lc.l2.Get(ctx, key, &raw); err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return err
	}
	lc.l1.setRaw(key, raw, lc.l1TTL)
	return nil
}

func (lc *LayeredCache) Delete(ctx context.Context, keys ...string) error {
	_ = lc.l1.Delete(ctx, keys...)
	return lc.l2.Delete(ctx, keys...)
}

// L1 entries never outlive the L2 entry they mirror.
func (lc *LayeredCache) l1Expiration(expiration time.Duration) time.Duration {
	if expiration > 0 && expiration < lc.l1TTL {
		return expiration
	}
	return lc.l1TTL
}

func (lc *LayeredCache) Close() error {
	return errors.Join(lc.l1.Close(), lc.l2.Close())
}

var _ Service = (*LayeredCache)(nil)
