package hashfun

import "github.com/spaolacci/murmur3"

// Murmur3 is a HashFun built on MurmurHash3 x64_128, truncated to its
// lower 64 bits, the variant MASH-style genome sketching uses.
type Murmur3 struct{}

// NewMurmur3 returns a reentrant MurmurHash3-backed HashFun.
func NewMurmur3() Murmur3 { return Murmur3{} }

func (Murmur3) ID() string { return "murmur3-x64" }

func (Murmur3) Hash(slice []byte, k int, out []uint64, seed uint64) (int, error) {
	n := subwordCount(len(slice), k)
	if n == 0 {
		return 0, nil
	}
	if len(out) < n {
		return 0, ErrBufferTooSmall
	}

	for i := 0; i < n; i++ {
		lo, _ := murmur3.Sum128WithSeed(slice[i:i+k], uint32(seed))
		out[i] = lo
	}
	return n, nil
}
