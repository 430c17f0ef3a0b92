package store

import (
	"context"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/jpillora/backoff"

	"github.com/mashing-pumpkins/gosketch/src/sketch"
)

// MemcachedStore is a SketchStore backed by Memcached, interchangeable
// with RedisStore.
type MemcachedStore struct {
	client  *memcache.Client
	ttl     int32
	retries int
}

// NewMemcachedStore connects to the given servers and returns a
// MemcachedStore. ttl is the expiration (in seconds, 0 means never
// expire) applied to every Put.
func NewMemcachedStore(servers []string, ttl int32, retries int) *MemcachedStore {
	if retries < 0 {
		retries = 0
	}
	return &MemcachedStore{client: memcache.New(servers...), ttl: ttl, retries: retries}
}

func (m *MemcachedStore) withRetry(ctx context.Context, fn func() error) error {
	b := &backoff.Backoff{Min: 10 * time.Millisecond, Max: 500 * time.Millisecond, Factor: 2, Jitter: true}
	var lastErr error
	for attempt := 0; attempt <= m.retries; attempt++ {
		if lastErr != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(b.Duration()):
			}
		}
		if err := fn(); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}

// Put stores f under key.
func (m *MemcachedStore) Put(ctx context.Context, key string, f *sketch.Frozen) error {
	data, err := encode(f)
	if err != nil {
		return err
	}
	return m.withRetry(ctx, func() error {
		return m.client.Set(&memcache.Item{Key: key, Value: data, Expiration: m.ttl})
	})
}

// Get retrieves the sketch stored under key. The second return value is
// false, with a nil error, when key is not present.
func (m *MemcachedStore) Get(ctx context.Context, key string) (*sketch.Frozen, bool, error) {
	var item *memcache.Item
	err := m.withRetry(ctx, func() error {
		it, getErr := m.client.Get(key)
		if getErr == memcache.ErrCacheMiss {
			return nil
		}
		if getErr != nil {
			return getErr
		}
		item = it
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if item == nil {
		return nil, false, nil
	}
	f, err := decode(item.Value)
	if err != nil {
		return nil, false, err
	}
	return f, true, nil
}
