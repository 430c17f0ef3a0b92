package sketch

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mashing-pumpkins/gosketch/src/hashfun"
)

func mustTopK(t *testing.T, k, m int, withCounts bool) *Sketch {
	t.Helper()
	s, err := NewTopK(k, m, hashfun.NewXXHash64(), 42, withCounts)
	require.NoError(t, err)
	return s
}

func mustBottomK(t *testing.T, k, m int, withCounts bool) *Sketch {
	t.Helper()
	s, err := NewBottomK(k, m, hashfun.NewXXHash64(), 42, withCounts)
	require.NoError(t, err)
	return s
}

func assertInvariants(t *testing.T, s *Sketch) {
	t.Helper()
	assert.Equal(t, s.heap.Len(), len(s.heap.memberIndex))
	assert.LessOrEqual(t, s.heap.Len(), s.m)
	if s.withCounts {
		assert.Len(t, s.counts, s.heap.Len())
		for _, c := range s.counts {
			assert.GreaterOrEqual(t, c, uint64(1))
		}
	}
	assert.GreaterOrEqual(t, s.nvisited, uint64(s.heap.Len()))

	if s.heap.Len() == s.m {
		root, ok := s.heap.root()
		require.True(t, ok)
		for _, e := range s.heap.entries {
			if s.pol == Top {
				assert.False(t, e.hash < root.hash)
			} else {
				assert.False(t, e.hash > root.hash)
			}
		}
	}
}

func TestNewRejectsBadArguments(t *testing.T) {
	_, err := NewTopK(0, 10, hashfun.NewXXHash64(), 0, false)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = NewTopK(3, 0, hashfun.NewXXHash64(), 0, false)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = NewTopK(3, 10, nil, 0, false)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestScenarioSmallLiteralInput(t *testing.T) {
	s := mustTopK(t, 3, 10, false)
	err := s.Add([]byte("AAABBBCCC"), nil)
	require.NoError(t, err)

	assert.EqualValues(t, 7, s.NVisited())

	// The sketch uses xxhash64, so assert against the xxhash64 hash of
	// "BBB" computed the same way Add does.
	xh := hashfun.NewXXHash64()
	xout := make([]uint64, 1)
	_, err = xh.Hash([]byte("BBB"), 3, xout, 42)
	require.NoError(t, err)
	assert.True(t, s.Contains(xout[0]))

	var oob uint64 = 123
	assert.False(t, s.Contains(oob))
}

func TestBoundaryShortSequenceNoAdmission(t *testing.T) {
	s := mustTopK(t, 5, 10, false)
	err := s.Add([]byte("AB"), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())
	assert.EqualValues(t, 0, s.NVisited())
}

func TestBoundaryMEqualsOneKeepsExtremum(t *testing.T) {
	top := mustTopK(t, 3, 1, false)
	require.NoError(t, top.Add([]byte("AAAAACCCCCGGGGGTTTTT"), nil))
	assert.Equal(t, 1, top.Len())

	bottom := mustBottomK(t, 3, 1, false)
	require.NoError(t, bottom.Add([]byte("AAAAACCCCCGGGGGTTTTT"), nil))
	assert.Equal(t, 1, bottom.Len())
}

func TestAllDistinctWhenMExceedsSubwordCount(t *testing.T) {
	// When m exceeds the number of distinct subwords, every distinct
	// subword is admitted.
	s := mustTopK(t, 3, 1000, false)
	seq := []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")
	require.NoError(t, s.Add(seq, nil))

	want := len(seq) - 3 + 1
	assert.Equal(t, want, s.Len())
	assert.EqualValues(t, want, s.NVisited())
}

func TestTopAndBottomDisjointOnSameInput(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	bases := []byte("ACGT")
	seq := make([]byte, 400)
	for i := range seq {
		seq[i] = bases[rng.Intn(4)]
	}

	top := mustTopK(t, 5, 20, false)
	bottom := mustBottomK(t, 5, 20, false)
	require.NoError(t, top.Add(seq, nil))
	require.NoError(t, bottom.Add(seq, nil))

	assert.Equal(t, 20, top.Len())
	assert.Equal(t, 20, bottom.Len())

	for _, h := range top.Hashes() {
		assert.False(t, bottom.Contains(h))
	}
}

func TestOrderIndependence(t *testing.T) {
	parts := [][]byte{[]byte("AAATTTT"), []byte("CCCCGGGG"), []byte("TTACGGTA")}

	forward := mustTopK(t, 3, 50, true)
	for _, p := range parts {
		require.NoError(t, forward.Add(p, nil))
	}

	reversed := mustTopK(t, 3, 50, true)
	for i := len(parts) - 1; i >= 0; i-- {
		require.NoError(t, reversed.Add(parts[i], nil))
	}

	assert.ElementsMatch(t, forward.SortedHashes(), reversed.SortedHashes())
	for _, h := range forward.Hashes() {
		assert.Equal(t, forward.Count(h), reversed.Count(h))
	}
}

func TestEqualHashesNeverDuplicateSlots(t *testing.T) {
	s := mustTopK(t, 3, 50, true)
	// "AAA" repeats many times; every repeat must collapse onto one slot
	// and bump the count rather than occupying multiple slots.
	require.NoError(t, s.Add([]byte("AAAAAAAAAAAA"), nil))
	assertInvariants(t, s)
}

func TestAddHashValuesDoesNotChangeNVisited(t *testing.T) {
	s := mustTopK(t, 3, 10, false)
	before := s.NVisited()
	s.AddHashValues([]uint64{1, 2, 3, 4})
	assert.Equal(t, before, s.NVisited())
	assert.Equal(t, 4, s.Len())
}

func TestBufferTooSmall(t *testing.T) {
	s := mustTopK(t, 5, 10, false)
	err := s.Add([]byte("ACGTACGTAC"), make([]uint64, 2))
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestIncompatibleUpdateRejected(t *testing.T) {
	a := mustTopK(t, 3, 10, false)
	b := mustBottomK(t, 3, 10, false)
	require.NoError(t, a.Add([]byte("AAACCCGGG"), nil))
	require.NoError(t, b.Add([]byte("AAACCCGGG"), nil))

	err := a.Update(b)
	assert.ErrorIs(t, err, ErrIncompatibleSketch)

	c, err := NewTopK(4, 10, hashfun.NewXXHash64(), 42, false)
	require.NoError(t, err)
	err = a.Update(c)
	assert.ErrorIs(t, err, ErrIncompatibleSketch)

	d, err := NewTopK(3, 10, hashfun.NewMurmur3(), 42, false)
	require.NoError(t, err)
	err = a.Update(d)
	assert.ErrorIs(t, err, ErrIncompatibleSketch)
}

func TestFreezeReflectsMemberSet(t *testing.T) {
	s := mustTopK(t, 3, 10, false)
	require.NoError(t, s.Add([]byte("AAABBBCCCDDD"), nil))

	f := s.Freeze()
	assert.ElementsMatch(t, s.SortedHashes(), f.Hashes())
	assert.Equal(t, s.Len(), f.Len())
}
