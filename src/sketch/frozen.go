package sketch

import "fmt"

// Frozen is the immutable snapshot produced by Sketch.Freeze: a frozen set
// of hashes (optionally plus a frozen count map), plus the configuration
// needed to check merge/compare compatibility. Frozen values never
// change; callers that hold one may share it freely across goroutines.
type Frozen struct {
	hashes    map[uint64]struct{}
	counts    map[uint64]uint64 // nil if this sketch didn't track counts
	k         int
	m         int
	seed      uint64
	hashfunID string
	nvisited  uint64
	pol       polarity
}

// Freeze produces an independent immutable snapshot of s. Further
// mutation of s (via Add, AddHashValues, Update) never affects the
// returned Frozen.
func (s *Sketch) Freeze() *Frozen {
	f := &Frozen{
		hashes:    make(map[uint64]struct{}, s.heap.Len()),
		k:         s.k,
		m:         s.m,
		seed:      s.seed,
		hashfunID: s.hashfunID,
		nvisited:  s.nvisited,
		pol:       s.pol,
	}
	for _, e := range s.heap.entries {
		f.hashes[e.hash] = struct{}{}
	}
	if s.withCounts {
		f.counts = make(map[uint64]uint64, len(s.counts))
		for h, c := range s.counts {
			f.counts[h] = c
		}
	}
	return f
}

func (f *Frozen) K() int            { return f.k }
func (f *Frozen) M() int            { return f.m }
func (f *Frozen) Seed() uint64      { return f.seed }
func (f *Frozen) HashFunID() string { return f.hashfunID }
func (f *Frozen) NVisited() uint64  { return f.nvisited }
func (f *Frozen) Len() int          { return len(f.hashes) }
func (f *Frozen) HasCounts() bool   { return f.counts != nil }
func (f *Frozen) WithCounts() bool  { return f.counts != nil }
func (f *Frozen) IsTopK() bool      { return f.pol == Top }
func (f *Frozen) IsBottomK() bool   { return f.pol == Bottom }

// Counts returns a fresh copy of the frozen count map, or nil if this
// snapshot didn't track counts.
func (f *Frozen) Counts() map[uint64]uint64 {
	if f.counts == nil {
		return nil
	}
	out := make(map[uint64]uint64, len(f.counts))
	for h, c := range f.counts {
		out[h] = c
	}
	return out
}

// NewFrozen reconstructs a Frozen snapshot from externally stored fields,
// the inverse of Freeze — used by store.SketchStore implementations to
// decode a persisted signature back into a comparable snapshot without
// going through a live, mutable Sketch.
func NewFrozen(topK bool, k, m int, seed uint64, hashfunID string, nvisited uint64, hashes []uint64, counts map[uint64]uint64) (*Frozen, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be >= 1, got %d", ErrInvalidArgument, k)
	}
	if m < 1 {
		return nil, fmt.Errorf("%w: m must be >= 1, got %d", ErrInvalidArgument, m)
	}
	if len(hashes) > m {
		return nil, fmt.Errorf("%w: %d hashes exceeds m=%d", ErrInvalidArgument, len(hashes), m)
	}

	pol := Bottom
	if topK {
		pol = Top
	}
	f := &Frozen{
		hashes:    make(map[uint64]struct{}, len(hashes)),
		k:         k,
		m:         m,
		seed:      seed,
		hashfunID: hashfunID,
		nvisited:  nvisited,
		pol:       pol,
	}
	for _, h := range hashes {
		if _, dup := f.hashes[h]; dup {
			return nil, fmt.Errorf("%w: duplicate hash %d", ErrDuplicateSeed, h)
		}
		f.hashes[h] = struct{}{}
	}
	if counts != nil {
		if len(counts) != len(hashes) {
			return nil, fmt.Errorf("%w: counts must cover exactly the hash set", ErrInvalidArgument)
		}
		f.counts = make(map[uint64]uint64, len(counts))
		for h, c := range counts {
			if _, ok := f.hashes[h]; !ok {
				return nil, fmt.Errorf("%w: count for hash %d not in hash set", ErrInvalidArgument, h)
			}
			if c < 1 {
				return nil, fmt.Errorf("%w: count for hash %d must be >= 1, got %d", ErrInvalidArgument, h, c)
			}
			f.counts[h] = c
		}
	}
	return f, nil
}

// Contains reports whether hash is in the frozen set.
func (f *Frozen) Contains(hash uint64) bool {
	_, ok := f.hashes[hash]
	return ok
}

// Hashes returns the frozen hash set as a fresh slice, in no particular
// order.
func (f *Frozen) Hashes() []uint64 {
	out := make([]uint64, 0, len(f.hashes))
	for h := range f.hashes {
		out = append(out, h)
	}
	return out
}

// Count returns the frozen multiplicity of hash, or 0 if it wasn't
// admitted or this snapshot didn't track counts.
func (f *Frozen) Count(hash uint64) uint64 {
	if f.counts == nil {
		return 0
	}
	return f.counts[hash]
}

func checkComparable(a, b *Frozen) error {
	if a.k != b.k {
		return fmt.Errorf("%w: k mismatch (%d vs %d)", ErrIncompatibleSketch, a.k, b.k)
	}
	if a.hashfunID != b.hashfunID {
		return fmt.Errorf("%w: hashfun mismatch (%s vs %s)", ErrIncompatibleSketch, a.hashfunID, b.hashfunID)
	}
	if a.seed != b.seed {
		return fmt.Errorf("%w: seed mismatch (%d vs %d)", ErrIncompatibleSketch, a.seed, b.seed)
	}
	return nil
}

func intersectionSize(a, b *Frozen) int {
	small, big := a, b
	if len(b.hashes) < len(a.hashes) {
		small, big = b, a
	}
	n := 0
	for h := range small.hashes {
		if _, ok := big.hashes[h]; ok {
			n++
		}
	}
	return n
}

// JaccardSimilarity returns |A ∩ B| / |A ∪ B|. Two empty sketches are
// defined to be fully similar.
func JaccardSimilarity(a, b *Frozen) (float64, error) {
	if err := checkComparable(a, b); err != nil {
		return 0, err
	}
	inter := intersectionSize(a, b)
	union := len(a.hashes) + len(b.hashes) - inter
	if union == 0 {
		return 1, nil
	}
	return float64(inter) / float64(union), nil
}

// JaccardContainment returns |A ∩ B| / |A|.
func JaccardContainment(a, b *Frozen) (float64, error) {
	if err := checkComparable(a, b); err != nil {
		return 0, err
	}
	if len(a.hashes) == 0 {
		return 0, nil
	}
	inter := intersectionSize(a, b)
	return float64(inter) / float64(len(a.hashes)), nil
}

// DiceSimilarity returns 2|A ∩ B| / (2|A ∩ B| + |A \ B| + |B \ A|), which
// is the same as 2|A ∩ B| / (|A| + |B|).
func DiceSimilarity(a, b *Frozen) (float64, error) {
	if err := checkComparable(a, b); err != nil {
		return 0, err
	}
	inter := intersectionSize(a, b)
	denom := len(a.hashes) + len(b.hashes)
	if denom == 0 {
		return 1, nil
	}
	return 2 * float64(inter) / float64(denom), nil
}

// BrayCurtisDissimilarity returns 1 - 2*Σ_{h ∈ A∩B} countA[h] / (Σ countA
// + Σ countB). It requires both frozen sketches to have been built with
// counts tracked.
func BrayCurtisDissimilarity(a, b *Frozen) (float64, error) {
	if err := checkComparable(a, b); err != nil {
		return 0, err
	}
	if !a.HasCounts() || !b.HasCounts() {
		return 0, fmt.Errorf("%w: bray-curtis requires count-tracking sketches", ErrIncompatibleSketch)
	}

	var sumA, sumB, sharedA uint64
	for h, c := range a.counts {
		sumA += c
		if _, ok := b.hashes[h]; ok {
			sharedA += c
		}
	}
	for _, c := range b.counts {
		sumB += c
	}

	denom := sumA + sumB
	if denom == 0 {
		return 0, nil
	}
	return 1 - 2*float64(sharedA)/float64(denom), nil
}
