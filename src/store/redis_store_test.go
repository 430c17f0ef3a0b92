package store

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mashing-pumpkins/gosketch/src/hashfun"
	"github.com/mashing-pumpkins/gosketch/src/sketch"
)

func buildFrozen(t *testing.T) *sketch.Frozen {
	t.Helper()
	s, err := sketch.NewTopK(3, 10, hashfun.NewXXHash64(), 42, true)
	require.NoError(t, err)
	require.NoError(t, s.Add([]byte("AAABBBCCCDDDEEE"), nil))
	return s.Freeze()
}

func TestRedisStorePutGetRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	rs, err := NewRedisStore(ctx, mr.Addr(), 2, 1)
	require.NoError(t, err)

	f := buildFrozen(t)
	require.NoError(t, rs.Put(ctx, "sig:1", f))

	got, ok, err := rs.Get(ctx, "sig:1")
	require.NoError(t, err)
	require.True(t, ok)

	assert.ElementsMatch(t, f.Hashes(), got.Hashes())
	assert.Equal(t, f.K(), got.K())
	assert.Equal(t, f.M(), got.M())
	assert.Equal(t, f.Seed(), got.Seed())
	assert.Equal(t, f.HashFunID(), got.HashFunID())
	assert.Equal(t, f.IsTopK(), got.IsTopK())
	assert.Equal(t, f.NVisited(), got.NVisited())
	for _, h := range f.Hashes() {
		assert.Equal(t, f.Count(h), got.Count(h))
	}
}

func TestRedisStoreGetMissing(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	rs, err := NewRedisStore(ctx, mr.Addr(), 2, 1)
	require.NoError(t, err)

	_, ok, err := rs.Get(ctx, "does-not-exist")
	require.NoError(t, err)
	assert.False(t, ok)
}
