package chunker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countSubwords tiles subwordCount(L) = L-k+1 subwords across the emitted
// windows and asserts each one is produced by exactly one window.
func countSubwords(t *testing.T, k, w, L int) {
	t.Helper()

	windows, err := Positions(k, w, L)
	require.NoError(t, err)

	covered := make(map[int]int) // subword start offset -> number of windows covering it
	for _, win := range windows {
		assert.LessOrEqual(t, win.End, L)
		assert.LessOrEqual(t, win.End-win.Begin, w)

		for start := win.Begin; start+k <= win.End; start++ {
			covered[start]++
		}
	}

	want := L - k + 1
	if want < 0 {
		want = 0
	}
	assert.Len(t, covered, want)
	for start, n := range covered {
		assert.Equalf(t, 1, n, "subword at offset %d covered %d times", start, n)
	}
}

func TestPositionsExactCoverage(t *testing.T) {
	cases := []struct{ k, w, L int }{
		{3, 10, 0},
		{3, 10, 2},
		{3, 10, 3},
		{3, 10, 9},
		{3, 10, 100},
		{3, 10, 101},
		{3, 3, 50},
		{21, 50, 125},
		{1, 1, 17},
		{5, 5, 25},
	}
	for _, c := range cases {
		countSubwords(t, c.k, c.w, c.L)
	}
}

func TestPositionsInvalidArgument(t *testing.T) {
	_, err := Positions(10, 3, 100)
	assert.Error(t, err)

	_, err = Positions(0, 3, 100)
	assert.Error(t, err)

	_, err = Positions(3, 0, 100)
	assert.Error(t, err)

	_, err = Positions(3, 10, -1)
	assert.Error(t, err)
}

func TestPositionsShortSequence(t *testing.T) {
	windows, err := Positions(5, 10, 3)
	require.NoError(t, err)
	assert.Empty(t, windows)
}

func TestChunkingNeutrality(t *testing.T) {
	// Sketching a sequence via a single call (w == L) and via the
	// chunker's slicing (any valid w >= k) must visit the same subword
	// offsets overall.
	k, L := 4, 37
	single, err := Positions(k, L, L)
	require.NoError(t, err)
	require.Len(t, single, 1)

	for _, w := range []int{k, k + 1, k + 5, L} {
		windows, err := Positions(k, w, L)
		require.NoError(t, err)

		seen := make(map[int]bool)
		for _, win := range windows {
			for start := win.Begin; start+k <= win.End; start++ {
				seen[start] = true
			}
		}
		assert.Len(t, seen, L-k+1)
	}
}
