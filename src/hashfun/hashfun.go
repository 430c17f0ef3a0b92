// Package hashfun defines the hash-function contract consumed by the
// sketch engine and ships the two built-in implementations plus the
// canonical-k-mer DNA adapter. Concrete hash families are plug-ins: the
// sketch engine only ever calls through the HashFun interface.
package hashfun

import "fmt"

// HashFun is the contract a hash function plug-in must satisfy: given a
// byte slice, a subword length k, an output buffer, and a seed, it writes
// one 64-bit hash per length-k subword of slice into out and returns the
// count written.
//
// Implementations must be pure and reentrant: the same (slice, k, seed)
// always produces the same output, with no shared mutable state across
// calls, so callers may invoke a HashFun concurrently from multiple
// worker goroutines.
type HashFun interface {
	// Hash writes len(slice)-k+1 hash values into out (zero if
	// len(slice) < k) and returns that count. It returns
	// ErrBufferTooSmall if out cannot hold that many values.
	Hash(slice []byte, k int, out []uint64, seed uint64) (int, error)

	// ID identifies this hash function so that sketches can reject
	// merges between incompatible hash functions, including across a
	// serialize/deserialize round trip.
	ID() string
}

// ErrBufferTooSmall is returned by HashFun.Hash when out has fewer slots
// than the number of subwords to hash.
var ErrBufferTooSmall = fmt.Errorf("hashfun: output buffer too small")

// subwordCount returns the number of length-k subwords in a slice of the
// given length, which is zero when the slice is shorter than k.
func subwordCount(sliceLen, k int) int {
	n := sliceLen - k + 1
	if n < 0 {
		return 0
	}
	return n
}
