package hashfun

import "github.com/cespare/xxhash/v2"

// XXHash64 is a general-purpose HashFun built on xxHash64.
type XXHash64 struct{}

// NewXXHash64 returns a reentrant xxHash64-backed HashFun.
func NewXXHash64() XXHash64 { return XXHash64{} }

func (XXHash64) ID() string { return "xxhash64" }

func (XXHash64) Hash(slice []byte, k int, out []uint64, seed uint64) (int, error) {
	n := subwordCount(len(slice), k)
	if n == 0 {
		return 0, nil
	}
	if len(out) < n {
		return 0, ErrBufferTooSmall
	}

	// A single Digest is reused across subwords, but Reset() zeroes its
	// seed rather than restoring the one it was constructed with, so each
	// iteration re-seeds explicitly instead of calling Reset().
	d := xxhash.NewWithSeed(seed)
	for i := 0; i < n; i++ {
		d.ResetWithSeed(seed)
		d.Write(slice[i : i+k])
		out[i] = d.Sum64()
	}
	return n, nil
}
