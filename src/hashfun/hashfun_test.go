package hashfun

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXXHash64Deterministic(t *testing.T) {
	h := NewXXHash64()
	seq := []byte("AAABBBCCC")

	out1 := make([]uint64, 10)
	n1, err := h.Hash(seq, 3, out1, 42)
	require.NoError(t, err)
	assert.Equal(t, 7, n1)

	out2 := make([]uint64, 10)
	n2, err := h.Hash(seq, 3, out2, 42)
	require.NoError(t, err)
	assert.Equal(t, n1, n2)
	assert.Equal(t, out1[:n1], out2[:n2])

	// Different seeds must (with overwhelming probability) produce
	// different hashes.
	out3 := make([]uint64, 10)
	_, err = h.Hash(seq, 3, out3, 43)
	require.NoError(t, err)
	assert.NotEqual(t, out1[:n1], out3[:n1])
}

func TestXXHash64BufferTooSmall(t *testing.T) {
	h := NewXXHash64()
	out := make([]uint64, 2)
	_, err := h.Hash([]byte("AAABBBCCC"), 3, out, 0)
	assert.ErrorIs(t, err, ErrBufferTooSmall)
}

func TestXXHash64ShortSequence(t *testing.T) {
	h := NewXXHash64()
	out := make([]uint64, 10)
	n, err := h.Hash([]byte("AB"), 3, out, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestMurmur3Deterministic(t *testing.T) {
	h := NewMurmur3()
	seq := []byte("ACGTACGTACGT")

	out1 := make([]uint64, 20)
	n1, err := h.Hash(seq, 4, out1, 7)
	require.NoError(t, err)
	assert.Equal(t, 9, n1)

	out2 := make([]uint64, 20)
	n2, err := h.Hash(seq, 4, out2, 7)
	require.NoError(t, err)
	assert.Equal(t, out1[:n1], out2[:n2])
}

func TestCanonicalStrandAgnostic(t *testing.T) {
	c := NewCanonical(NewXXHash64())

	fwd := []byte("ACGTGGG")
	rev := reverseComplement(fwd)

	outFwd := make([]uint64, 10)
	nFwd, err := c.Hash(fwd, 4, outFwd, 11)
	require.NoError(t, err)

	outRev := make([]uint64, 10)
	nRev, err := c.Hash(rev, 4, outRev, 11)
	require.NoError(t, err)

	require.Equal(t, nFwd, nRev)

	// The canonical hash of kmer i in fwd must equal the canonical hash
	// of the corresponding mirrored kmer in rev.
	for i := 0; i < nFwd; i++ {
		j := nFwd - 1 - i
		assert.Equal(t, outFwd[i], outRev[j])
	}
}

func TestCanonicalID(t *testing.T) {
	c := NewCanonical(NewMurmur3())
	assert.Equal(t, "canonical-dna+murmur3-x64", c.ID())
}
