// Package sketch implements the bounded top-/bottom-k MinHash-style sketch:
// a heap-ordered bounded sample of hash values with O(1) membership,
// optional per-hash counts, a merge algebra, and immutable frozen
// snapshots for similarity queries.
package sketch

import (
	"fmt"
	"sort"

	"github.com/mashing-pumpkins/gosketch/src/chunker"
	"github.com/mashing-pumpkins/gosketch/src/hashfun"
)

// DefaultBufferSize is the reusable hash-value buffer size Add allocates
// when the caller doesn't supply one.
const DefaultBufferSize = 250

// Sketch is a mutable top-k or bottom-k bounded sample of hash values.
// The zero value is not usable; construct with New, NewTopK, or
// NewBottomK.
type Sketch struct {
	k         int
	m         int
	seed      uint64
	hashfunID string
	pol       polarity
	hf        hashfun.HashFun

	heap       *minHeap
	nvisited   uint64
	withCounts bool
	counts     map[uint64]uint64 // present iff withCounts
}

// New constructs an empty sketch of the given polarity.
func New(pol polarity, k, m int, hf hashfun.HashFun, seed uint64, withCounts bool) (*Sketch, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be >= 1, got %d", ErrInvalidArgument, k)
	}
	if m < 1 {
		return nil, fmt.Errorf("%w: m must be >= 1, got %d", ErrInvalidArgument, m)
	}
	if hf == nil {
		return nil, fmt.Errorf("%w: hashfun must not be nil", ErrInvalidArgument)
	}

	s := &Sketch{
		k:         k,
		m:         m,
		seed:      seed,
		hashfunID: hf.ID(),
		pol:       pol,
		hf:        hf,
		heap:      newMinHeap(),
	}
	if withCounts {
		s.withCounts = true
		s.counts = make(map[uint64]uint64)
	}
	return s, nil
}

// NewTopK constructs an empty sketch that retains the m largest hashes.
func NewTopK(k, m int, hf hashfun.HashFun, seed uint64, withCounts bool) (*Sketch, error) {
	return New(Top, k, m, hf, seed, withCounts)
}

// NewBottomK constructs an empty sketch that retains the m smallest hashes.
func NewBottomK(k, m int, hf hashfun.HashFun, seed uint64, withCounts bool) (*Sketch, error) {
	return New(Bottom, k, m, hf, seed, withCounts)
}

// K, M, Seed, HashFunID, NVisited, WithCounts expose the sketch's
// configuration and progress.
func (s *Sketch) K() int             { return s.k }
func (s *Sketch) M() int             { return s.m }
func (s *Sketch) Seed() uint64       { return s.seed }
func (s *Sketch) HashFunID() string  { return s.hashfunID }
func (s *Sketch) NVisited() uint64   { return s.nvisited }
func (s *Sketch) WithCounts() bool   { return s.withCounts }
func (s *Sketch) IsTopK() bool       { return s.pol == Top }
func (s *Sketch) IsBottomK() bool    { return s.pol == Bottom }
func (s *Sketch) Len() int           { return s.heap.Len() }

// Contains reports whether hash is currently admitted.
func (s *Sketch) Contains(hash uint64) bool {
	_, ok := s.heap.indexOf(hash)
	return ok
}

// Hashes returns the admitted hashes in no particular order.
func (s *Sketch) Hashes() []uint64 {
	out := make([]uint64, 0, s.heap.Len())
	for _, e := range s.heap.entries {
		out = append(out, e.hash)
	}
	return out
}

// SortedHashes returns the admitted hashes in ascending order.
func (s *Sketch) SortedHashes() []uint64 {
	out := s.Hashes()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Count returns the observed multiplicity of hash, or 0 if it is not
// admitted or counts are not tracked.
func (s *Sketch) Count(hash uint64) uint64 {
	if !s.withCounts {
		return 0
	}
	return s.counts[hash]
}

// better reports whether candidate hash h is a better sample member than
// the current root hash, under this sketch's polarity.
func (s *Sketch) better(h, root uint64) bool {
	if s.pol == Top {
		return h > root
	}
	return h < root
}

// admit processes a fresh observation of hash (optionally carrying its
// originating subword): re-observations bump the count, spare capacity
// admits directly, and a full heap admits only by evicting a worse root.
func (s *Sketch) admit(hash uint64, subword []byte) {
	if _, ok := s.heap.indexOf(hash); ok {
		s.onReobserve(hash)
		return
	}

	if s.heap.Len() < s.m {
		s.heap.insert(entry{signedKey: signedKeyFor(s.pol, hash), hash: hash, subword: subword})
		s.onFreshInsert(hash)
		return
	}

	root, ok := s.heap.root()
	if !ok {
		return
	}
	if s.better(hash, root.hash) {
		evicted := s.heap.replaceRoot(entry{signedKey: signedKeyFor(s.pol, hash), hash: hash, subword: subword})
		s.onReplace(evicted.hash, hash)
		return
	}
	// else: discard, hash is worse than every currently admitted member.
}

// mergeAdmit is the structural (membership-only) half of a merge: it
// establishes which hashes from another sketch are retained, without
// touching counts. Counts are
// reconciled in one pass by the caller afterward (see count.go), which is
// what keeps merge idempotent and identity-preserving.
func (s *Sketch) mergeAdmit(hash uint64, subword []byte) {
	if _, ok := s.heap.indexOf(hash); ok {
		return
	}

	if s.heap.Len() < s.m {
		s.heap.insert(entry{signedKey: signedKeyFor(s.pol, hash), hash: hash, subword: subword})
		return
	}

	root, ok := s.heap.root()
	if !ok {
		return
	}
	if s.better(hash, root.hash) {
		evicted := s.heap.replaceRoot(entry{signedKey: signedKeyFor(s.pol, hash), hash: hash, subword: subword})
		if s.withCounts {
			delete(s.counts, evicted.hash)
		}
	}
}

// Add ingests every length-k subword of sequence. buffer is an optional
// reusable hash-value array; when nil a DefaultBufferSize buffer is
// allocated. It is an error for len(buffer) to be smaller than k.
func (s *Sketch) Add(sequence []byte, buffer []uint64) error {
	if buffer == nil {
		buffer = make([]uint64, DefaultBufferSize)
	}
	if len(buffer) < s.k {
		return fmt.Errorf("%w: buffer length %d smaller than k=%d", ErrInvalidArgument, len(buffer), s.k)
	}

	w := s.k + len(buffer) - 1
	windows, err := chunker.Positions(s.k, w, len(sequence))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	for _, win := range windows {
		slice := sequence[win.Begin:win.End]
		n, err := s.hf.Hash(slice, s.k, buffer, s.seed)
		if err != nil {
			if err == hashfun.ErrBufferTooSmall {
				return ErrBufferTooSmall
			}
			return err
		}

		for i := 0; i < n; i++ {
			subword := make([]byte, s.k)
			copy(subword, slice[i:i+s.k])
			s.admit(buffer[i], subword)
		}
		s.nvisited += uint64(n)
	}

	return nil
}

// AddHashValues ingests raw hash values directly, with no subword
// recovered. Unlike Add, it does not change nvisited, by design, to
// permit merging foreign samples whose visit counts are unknown.
func (s *Sketch) AddHashValues(hashes []uint64) {
	for _, h := range hashes {
		s.admit(h, nil)
	}
}

// checkCompatible returns ErrIncompatibleSketch when two sketches cannot
// be merged or compared: differing k, hashfun identity, seed, or
// polarity.
func checkCompatible(a, b *Sketch) error {
	if a.k != b.k {
		return fmt.Errorf("%w: k mismatch (%d vs %d)", ErrIncompatibleSketch, a.k, b.k)
	}
	if a.hashfunID != b.hashfunID {
		return fmt.Errorf("%w: hashfun mismatch (%s vs %s)", ErrIncompatibleSketch, a.hashfunID, b.hashfunID)
	}
	if a.seed != b.seed {
		return fmt.Errorf("%w: seed mismatch (%d vs %d)", ErrIncompatibleSketch, a.seed, b.seed)
	}
	if a.pol != b.pol {
		return fmt.Errorf("%w: polarity mismatch (%s vs %s)", ErrIncompatibleSketch, a.pol, b.pol)
	}
	return nil
}

// Update merges other into s in place. It requires matching k, hashfun
// identity, seed, and polarity.
func (s *Sketch) Update(other *Sketch) error {
	if err := checkCompatible(s, other); err != nil {
		return err
	}

	for _, e := range other.heap.entries {
		s.mergeAdmit(e.hash, e.subword)
	}

	s.reconcileCounts(other)
	s.nvisited += other.nvisited

	return nil
}

// Clone returns an independent deep copy of s.
func (s *Sketch) Clone() *Sketch {
	c := &Sketch{
		k:          s.k,
		m:          s.m,
		seed:       s.seed,
		hashfunID:  s.hashfunID,
		pol:        s.pol,
		hf:         s.hf,
		heap:       newMinHeap(),
		nvisited:   s.nvisited,
		withCounts: s.withCounts,
	}
	c.heap.entries = make([]entry, len(s.heap.entries))
	copy(c.heap.entries, s.heap.entries)
	for hash, idx := range s.heap.memberIndex {
		c.heap.memberIndex[hash] = idx
	}
	if s.withCounts {
		c.counts = make(map[uint64]uint64, len(s.counts))
		for k, v := range s.counts {
			c.counts[k] = v
		}
	}
	return c
}

// Merge returns a new sketch holding the out-of-place merge of a and b,
// leaving both unmodified. It requires matching k, hashfun identity,
// seed, and polarity.
func Merge(a, b *Sketch) (*Sketch, error) {
	if err := checkCompatible(a, b); err != nil {
		return nil, err
	}
	c := a.Clone()
	if err := c.Update(b); err != nil {
		return nil, err
	}
	return c, nil
}
