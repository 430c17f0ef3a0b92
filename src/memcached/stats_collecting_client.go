// Package memcached wraps any store.SketchStore with Put/Get
// success/miss/error counters.
package memcached

import (
	"context"

	"github.com/mashing-pumpkins/gosketch/src/metrics"
	"github.com/mashing-pumpkins/gosketch/src/sketch"
	"github.com/mashing-pumpkins/gosketch/src/store"
)

type statsCollectingStore struct {
	s store.SketchStore

	putSuccess metrics.Counter
	putError   metrics.Counter
	getHit     metrics.Counter
	getMiss    metrics.Counter
	getError   metrics.Counter
}

// CollectStats wraps s so every Put/Get outcome is also counted through
// sink.
func CollectStats(s store.SketchStore, sink metrics.Sink) store.SketchStore {
	return statsCollectingStore{
		s:          s,
		putSuccess: sink.Counter("store.put.success"),
		putError:   sink.Counter("store.put.error"),
		getHit:     sink.Counter("store.get.hit"),
		getMiss:    sink.Counter("store.get.miss"),
		getError:   sink.Counter("store.get.error"),
	}
}

func (scs statsCollectingStore) Put(ctx context.Context, key string, f *sketch.Frozen) error {
	err := scs.s.Put(ctx, key, f)
	if err != nil {
		scs.putError.Inc()
	} else {
		scs.putSuccess.Inc()
	}
	return err
}

func (scs statsCollectingStore) Get(ctx context.Context, key string) (*sketch.Frozen, bool, error) {
	f, ok, err := scs.s.Get(ctx, key)
	switch {
	case err != nil:
		scs.getError.Inc()
	case ok:
		scs.getHit.Inc()
	default:
		scs.getMiss.Inc()
	}
	return f, ok, err
}
