package parallel

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// FrequencyEstimator is a Count-Min Sketch tracking how often a given
// 64-bit key (here, a sequence's content hash) has been submitted to a
// Driver. It is purely observational: nothing in the sketch admission
// algorithm consults it, so it cannot bias which hashes get admitted.
type FrequencyEstimator struct {
	width    uint32
	depth    uint32
	counters [][]uint32
	seeds    []uint64
	mu       sync.RWMutex
}

// NewFrequencyEstimator creates an estimator with the given memory budget
// and depth (number of hash rows; clamped to [2, 8], more depth trades
// memory for a lower overestimation rate).
func NewFrequencyEstimator(memoryBytes int, depth int) *FrequencyEstimator {
	if depth < 2 {
		depth = 2
	}
	if depth > 8 {
		depth = 8
	}

	width := uint32(memoryBytes / (depth * 4))
	if width < 256 {
		width = 256
	}

	counters := make([][]uint32, depth)
	seeds := make([]uint64, depth)
	for i := 0; i < depth; i++ {
		counters[i] = make([]uint32, width)
		seeds[i] = uint64(i)*0x9E3779B97F4A7C15 + 0x517CC1B727220A95
	}

	return &FrequencyEstimator{width: width, depth: uint32(depth), counters: counters, seeds: seeds}
}

func (fe *FrequencyEstimator) row(key uint64, seed uint64) uint32 {
	h := xxhash.New()
	seedBytes := []byte{
		byte(seed), byte(seed >> 8), byte(seed >> 16), byte(seed >> 24),
		byte(seed >> 32), byte(seed >> 40), byte(seed >> 48), byte(seed >> 56),
	}
	h.Write(seedBytes)
	keyBytes := []byte{
		byte(key), byte(key >> 8), byte(key >> 16), byte(key >> 24),
		byte(key >> 32), byte(key >> 40), byte(key >> 48), byte(key >> 56),
	}
	h.Write(keyBytes)
	return uint32(h.Sum64() % uint64(fe.width))
}

// Increment records one submission of key and returns the updated minimum
// estimate across rows.
func (fe *FrequencyEstimator) Increment(key uint64) uint32 {
	fe.mu.Lock()
	defer fe.mu.Unlock()

	minCount := uint32(0xFFFFFFFF)
	for i := uint32(0); i < fe.depth; i++ {
		idx := fe.row(key, fe.seeds[i])
		newVal := fe.counters[i][idx] + 1
		if newVal < fe.counters[i][idx] {
			newVal = 0xFFFFFFFF
		}
		fe.counters[i][idx] = newVal
		if newVal < minCount {
			minCount = newVal
		}
	}
	return minCount
}

// Estimate returns the current estimated submission count for key.
func (fe *FrequencyEstimator) Estimate(key uint64) uint32 {
	fe.mu.RLock()
	defer fe.mu.RUnlock()

	minCount := uint32(0xFFFFFFFF)
	for i := uint32(0); i < fe.depth; i++ {
		idx := fe.row(key, fe.seeds[i])
		if fe.counters[i][idx] < minCount {
			minCount = fe.counters[i][idx]
		}
	}
	return minCount
}

// sequenceKey derives the xxhash64 digest of a whole sequence, used as the
// FrequencyEstimator key so repeated submissions of the same bytes collide
// onto the same row entries regardless of batch position.
func sequenceKey(sequence []byte) uint64 {
	return xxhash.Sum64(sequence)
}
