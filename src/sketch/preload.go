package sketch

import (
	"fmt"

	"github.com/mashing-pumpkins/gosketch/src/hashfun"
)

// NewPreloaded constructs a sketch from a caller-supplied initial set of
// hashes (and, optionally, a matching count map). The preloaded state
// must already be consistent; inconsistent input is rejected rather
// than repaired. hashes must contain no duplicates; if
// counts is non-nil its key set must equal the set of hashes exactly,
// with every value >= 1. len(hashes) must not exceed m.
func NewPreloaded(pol polarity, k, m int, hf hashfun.HashFun, seed uint64, hashes []uint64, counts map[uint64]uint64) (*Sketch, error) {
	s, err := New(pol, k, m, hf, seed, counts != nil)
	if err != nil {
		return nil, err
	}
	if len(hashes) > m {
		return nil, fmt.Errorf("%w: %d preloaded hashes exceeds m=%d", ErrInvalidArgument, len(hashes), m)
	}

	seen := make(map[uint64]struct{}, len(hashes))
	for _, h := range hashes {
		if _, dup := seen[h]; dup {
			return nil, fmt.Errorf("%w: hash %d appears more than once", ErrDuplicateSeed, h)
		}
		seen[h] = struct{}{}
	}

	if counts != nil {
		if len(counts) != len(hashes) {
			return nil, fmt.Errorf("%w: count map has %d keys, heap has %d hashes", ErrDuplicateSeed, len(counts), len(hashes))
		}
		for h, c := range counts {
			if _, ok := seen[h]; !ok {
				return nil, fmt.Errorf("%w: count map has key %d not present in preloaded hashes", ErrDuplicateSeed, h)
			}
			if c < 1 {
				return nil, fmt.Errorf("%w: count for hash %d must be >= 1, got %d", ErrInvalidArgument, h, c)
			}
		}
	}

	for _, h := range hashes {
		s.heap.insert(entry{signedKey: signedKeyFor(pol, h), hash: h})
	}
	if counts != nil {
		s.counts = make(map[uint64]uint64, len(counts))
		for h, c := range counts {
			s.counts[h] = c
		}
	}

	return s, nil
}
