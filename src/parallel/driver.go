package parallel

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/mashing-pumpkins/gosketch/src/sketch"
)

var tracer = otel.Tracer("parallel.driver")

// Factory yields a fresh, identically configured, empty sketch for each
// worker. The driver captures it as a plain closure rather than
// process-wide state.
type Factory func() (*sketch.Sketch, error)

// Driver is the map/reduce harness: register a factory, map sequences to
// per-worker sketches, fold the results into one.
type Driver struct {
	factory     Factory
	guard       *Guard
	freq        *FrequencyEstimator
	workerCount func() int
}

// New registers factory as the constructor each worker uses to build its
// local sketch.
func New(factory Factory) *Driver {
	return &Driver{factory: factory, guard: NewGuard(0)}
}

// WithFrequencyTracking attaches a FrequencyEstimator that records one
// submission per sequence passed to MapOne/Map, keyed by the sequence's
// content hash. This is purely observational bookkeeping (e.g. to notice
// a client resubmitting identical input); it never influences admission.
func (d *Driver) WithFrequencyTracking(fe *FrequencyEstimator) *Driver {
	d.freq = fe
	return d
}

// SubmissionEstimate reports the approximate number of times sequence has
// been passed to this driver, or 0 if frequency tracking isn't attached.
func (d *Driver) SubmissionEstimate(sequence []byte) uint32 {
	if d.freq == nil {
		return 0
	}
	return d.freq.Estimate(sequenceKey(sequence))
}

// WithWorkerCount bounds how many worker goroutines Map runs at once.
// count is consulted at the start of every Map call, so a hot-reloaded
// runtime override takes effect on the next batch. A nil or non-positive
// source leaves Map unbounded (one goroutine per sequence).
func (d *Driver) WithWorkerCount(count func() int) *Driver {
	d.workerCount = count
	return d
}

// WithGuard replaces the driver's dedupe guard, e.g. to share one guard
// across multiple driver instances or to size it explicitly.
func (d *Driver) WithGuard(g *Guard) *Driver {
	d.guard = g
	return d
}

// MapOne builds a fresh sketch from the factory and ingests a single
// sequence into it.
func (d *Driver) MapOne(ctx context.Context, sequence []byte) (*sketch.Sketch, error) {
	_, span := tracer.Start(ctx, "parallel.map_one", trace.WithAttributes(
		attribute.Int("sequence_length", len(sequence)),
	))
	defer span.End()

	if d.freq != nil {
		d.freq.Increment(sequenceKey(sequence))
	}

	s, err := d.factory()
	if err != nil {
		return nil, fmt.Errorf("parallel: factory failed: %w", err)
	}
	if err := s.Add(sequence, nil); err != nil {
		return nil, err
	}
	return s, nil
}

type workerResult struct {
	index  int
	id     string
	sketch *sketch.Sketch
	err    error
}

// Map fans a batch of sequences out across one worker goroutine per
// sequence, each owning its own sketch and buffer, and folds the results
// into a single sketch. If any worker errors the whole batch is
// discarded and the error is returned; a partially accumulated sketch is
// never handed back.
func (d *Driver) Map(ctx context.Context, sequences [][]byte) (*sketch.Sketch, error) {
	ctx, span := tracer.Start(ctx, "parallel.map", trace.WithAttributes(
		attribute.Int("worker_count", len(sequences)),
	))
	defer span.End()

	accum, err := d.factory()
	if err != nil {
		return nil, fmt.Errorf("parallel: factory failed: %w", err)
	}
	if len(sequences) == 0 {
		return accum, nil
	}

	batchID := uuid.NewString()
	results := make(chan workerResult, len(sequences))

	if d.freq != nil {
		for _, seq := range sequences {
			d.freq.Increment(sequenceKey(seq))
		}
	}

	limit := len(sequences)
	if d.workerCount != nil {
		if n := d.workerCount(); n > 0 && n < limit {
			limit = n
		}
	}
	sem := make(chan struct{}, limit)

	for i, seq := range sequences {
		go func(i int, seq []byte) {
			sem <- struct{}{}
			defer func() { <-sem }()
			id := workItemID(batchID, i)
			s, err := d.factory()
			if err != nil {
				results <- workerResult{index: i, id: id, err: fmt.Errorf("parallel: factory failed: %w", err)}
				return
			}
			if err := s.Add(seq, nil); err != nil {
				results <- workerResult{index: i, id: id, err: err}
				return
			}
			results <- workerResult{index: i, id: id, sketch: s}
		}(i, seq)
	}

	// The fold is commutative, so results are received in completion
	// order. Any single error aborts the whole batch; the partial
	// accumulator is discarded rather than returned.
	var firstErr error
	for range sequences {
		r := <-results
		if firstErr != nil {
			continue // drain remaining workers without doing more work
		}
		if r.err != nil {
			firstErr = r.err
			continue
		}
		if !d.guard.MarkIfNew(r.id) {
			continue // already folded by a prior attempt at this work item
		}
		if err := accum.Update(r.sketch); err != nil {
			firstErr = err
		}
	}

	if firstErr != nil {
		return nil, firstErr
	}
	return accum, nil
}

// Reduce folds b into a in place and returns a. It is associative and
// commutative modulo the sketch invariants.
func Reduce(a, b *sketch.Sketch) (*sketch.Sketch, error) {
	if err := a.Update(b); err != nil {
		return nil, err
	}
	return a, nil
}
