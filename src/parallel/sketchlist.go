package parallel

import (
	"context"
	"fmt"

	"github.com/mashing-pumpkins/gosketch/src/sketch"
)

// ErrInvalidArgument mirrors sketch.ErrInvalidArgument for SketchList's own
// argument checks, so callers can errors.Is against the same sentinel
// whether the failure originated in sketch or parallel.
var ErrInvalidArgument = errInvalidArgument

// SketchList runs a batch of independent sketches side by side against a
// broadcast input: one Driver per sketch configuration (e.g. several
// (k, m) pairs, or top-k and bottom-k together), all run concurrently in
// one MapBroadcast call; when a single batch is given, every driver is
// fed the same sequences.
// It exists only to broadcast a single work plan across the drivers and
// collect results positionally.
type SketchList struct {
	drivers []*Driver
}

// NewSketchList constructs a SketchList from one driver per configuration.
func NewSketchList(drivers ...*Driver) *SketchList {
	return &SketchList{drivers: drivers}
}

// Len reports how many sketch configurations this list runs.
func (l *SketchList) Len() int { return len(l.drivers) }

// MapBroadcast runs one batch of sequences per driver, independently and
// concurrently, returning one resulting sketch per run.
//
// A singleton side is broadcast to match the other: a single batch is fed
// to every driver, and a single driver is run once per batch. Mismatched
// non-singleton lengths are ErrInvalidArgument. Results are positional:
// one sketch per (driver, batch) pair in driver order.
func (l *SketchList) MapBroadcast(ctx context.Context, sequencesPerDriver [][][]byte) ([]*sketch.Sketch, error) {
	if len(l.drivers) == 0 {
		return nil, nil
	}

	drivers := l.drivers
	var batches [][][]byte
	switch {
	case len(sequencesPerDriver) == len(drivers):
		batches = sequencesPerDriver
	case len(sequencesPerDriver) == 1:
		batches = make([][][]byte, len(drivers))
		for i := range batches {
			batches[i] = sequencesPerDriver[0]
		}
	case len(drivers) == 1:
		drivers = make([]*Driver, len(sequencesPerDriver))
		for i := range drivers {
			drivers[i] = l.drivers[0]
		}
		batches = sequencesPerDriver
	default:
		return nil, fmt.Errorf("%w: expected 1 or %d sequence batches, got %d", errInvalidArgument, len(drivers), len(sequencesPerDriver))
	}

	n := len(drivers)
	type result struct {
		index int
		s     *sketch.Sketch
		err   error
	}
	results := make(chan result, n)

	for i, d := range drivers {
		go func(i int, d *Driver, seqs [][]byte) {
			s, err := d.Map(ctx, seqs)
			results <- result{index: i, s: s, err: err}
		}(i, d, batches[i])
	}

	out := make([]*sketch.Sketch, n)
	var firstErr error
	for range drivers {
		r := <-results
		if r.err != nil && firstErr == nil {
			firstErr = r.err
			continue
		}
		out[r.index] = r.s
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

var errInvalidArgument = sketch.ErrInvalidArgument
