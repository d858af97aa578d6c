package cache

import (
	"context"
	"time"
)

// LayeredCache fronts a shared cache (L2, usually Redis) with an in-process
// TTLCache (L1). Writes go through to L2 first.
type LayeredCache struct {
	l1    *TTLCache
	l2    BytesCache
	l1TTL time.Duration
}

// NewLayeredCache keeps L2 hits in memory for at most l1TTL; 0 means the
// TTL of the original write.
func NewLayeredCache(l2 BytesCache, l1TTL time.Duration) *LayeredCache {
	return &LayeredCache{l1: NewTTLCache(), l2: l2, l1TTL: l1TTL}
}

func (lc *LayeredCache) GetBytes(ctx context.Context, key string) ([]byte, bool, error) {
	if b, ok, _ := lc.l1.GetBytes(ctx, key); ok {
		return b, true, nil
	}
	b, ok, err := lc.l2.GetBytes(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	_ = lc.l1.SetBytes(ctx, key, b, lc.l1TTL)
	return b, true, nil
}

func (lc *LayeredCache) SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := lc.l2.SetBytes(ctx, key, value, ttl); err != nil {
		return err
	}
	l1TTL := ttl
	if lc.l1TTL > 0 && (ttl <= 0 || lc.l1TTL < ttl) {
		l1TTL = lc.l1TTL
	}
	return lc.l1.SetBytes(ctx, key, value, l1TTL)
}

// Purge drops expired L1 entries.
func (lc *LayeredCache) Purge() int { return lc.l1.Purge() }
