package sketch

import "errors"

// Error kinds surfaced by the sketch engine, per the error handling design:
// all errors are returned synchronously to the caller, and the core never
// retries.
var (
	// ErrInvalidArgument covers a bad k, m, buffer size, or chunker
	// precondition, raised synchronously at the call that violates it.
	ErrInvalidArgument = errors.New("sketch: invalid argument")

	// ErrIncompatibleSketch covers merging or comparing sketches with
	// differing k, seed, hashfun identity, or polarity.
	ErrIncompatibleSketch = errors.New("sketch: incompatible sketch")

	// ErrDuplicateSeed covers a constructor given a preloaded heap with
	// duplicate hashes, or a preloaded count map whose keys disagree with
	// the heap.
	ErrDuplicateSeed = errors.New("sketch: duplicate hash in preload")

	// ErrBufferTooSmall covers a hash function unable to fit its output
	// into the caller-supplied buffer.
	ErrBufferTooSmall = errors.New("sketch: buffer too small")
)
