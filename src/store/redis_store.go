package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jpillora/backoff"
	"github.com/mediocregopher/radix/v4"

	"github.com/mashing-pumpkins/gosketch/src/sketch"
)

// RedisStore is a SketchStore backed by Redis, holding JSON-encoded
// sketch signatures.
type RedisStore struct {
	client  radix.Client
	retries int
}

// NewRedisStore dials addr (e.g. "127.0.0.1:6379") with a small connection
// pool and returns a RedisStore. retries bounds how many times a Put/Get
// retries on a transient connection error before giving up, backing off
// per jpillora/backoff between attempts.
func NewRedisStore(ctx context.Context, addr string, poolSize, retries int) (*RedisStore, error) {
	if poolSize < 1 {
		poolSize = 1
	}
	client, err := (radix.PoolConfig{Size: poolSize}).New(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("store: failed to dial redis %s: %w", addr, err)
	}
	if retries < 0 {
		retries = 0
	}
	return &RedisStore{client: client, retries: retries}, nil
}

func (r *RedisStore) withRetry(ctx context.Context, fn func() error) error {
	b := &backoff.Backoff{Min: 10 * time.Millisecond, Max: 500 * time.Millisecond, Factor: 2, Jitter: true}
	var lastErr error
	for attempt := 0; attempt <= r.retries; attempt++ {
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

// Put stores f under key, overwriting any previous value.
func (r *RedisStore) Put(ctx context.Context, key string, f *sketch.Frozen) error {
	data, err := encode(f)
	if err != nil {
		return err
	}
	return r.withRetry(ctx, func() error {
		return r.client.Do(ctx, radix.FlatCmd(nil, "SET", key, data))
	})
}

// Get retrieves the sketch stored under key. The second return value is
// false, with a nil error, when key is not present.
func (r *RedisStore) Get(ctx context.Context, key string) (*sketch.Frozen, bool, error) {
	var data []byte
	var notFound bool
	err := r.withRetry(ctx, func() error {
		var mb radix.Maybe
		mb.Rcv = &data
		if err := r.client.Do(ctx, radix.Cmd(&mb, "GET", key)); err != nil {
			return err
		}
		notFound = mb.Null
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if notFound {
		return nil, false, nil
	}
	f, err := decode(data)
	if err != nil {
		return nil, false, err
	}
	return f, true, nil
}

// Close releases the underlying connection pool.
func (r *RedisStore) Close() error {
	if closer, ok := r.client.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
