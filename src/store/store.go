// Package store provides optional, swappable signature-export adapters
// for FrozenSketch: a thin Put/Get contract over a backend, never a
// participant in sketch construction or merging. Redis and Memcached
// backends are provided.
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mashing-pumpkins/gosketch/src/sketch"
)

// SketchStore persists and retrieves FrozenSketch snapshots by key. It is
// an adapter, not core: sketch construction and merging never depend on
// it.
type SketchStore interface {
	Put(ctx context.Context, key string, f *sketch.Frozen) error
	Get(ctx context.Context, key string) (*sketch.Frozen, bool, error)
}

// wireFormat is the backend-agnostic JSON encoding of the
// (hashes, k, m, nvisited, seed, hashfun_id, counts) signature
// contract.
type wireFormat struct {
	K         int               `json:"k"`
	M         int               `json:"m"`
	Seed      uint64            `json:"seed"`
	HashFunID string            `json:"hashfun_id"`
	TopK      bool              `json:"top_k"`
	NVisited  uint64            `json:"nvisited"`
	Hashes    []uint64          `json:"hashes"`
	Counts    map[uint64]uint64 `json:"counts,omitempty"`
}

func encode(f *sketch.Frozen) ([]byte, error) {
	w := wireFormat{
		K:         f.K(),
		M:         f.M(),
		Seed:      f.Seed(),
		HashFunID: f.HashFunID(),
		TopK:      f.IsTopK(),
		NVisited:  f.NVisited(),
		Hashes:    f.Hashes(),
	}
	if f.WithCounts() {
		w.Counts = f.Counts()
	}
	data, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("store: failed to encode sketch: %w", err)
	}
	return data, nil
}

func decode(data []byte) (*sketch.Frozen, error) {
	var w wireFormat
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("store: failed to decode sketch: %w", err)
	}
	return sketch.NewFrozen(w.TopK, w.K, w.M, w.Seed, w.HashFunID, w.NVisited, w.Hashes, w.Counts)
}
