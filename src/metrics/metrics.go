// Package metrics instruments the sketch engine: how many batches and
// sequences the parallel driver has mapped, how many hashes survived
// admission, and how long each map phase took. Measurements flow through
// a Sink, with gostats, dogstatsd, and Prometheus implementations.
package metrics

import (
	"time"

	stats "github.com/lyft/gostats"
)

// Counter accumulates a monotonically increasing sketch-engine count,
// such as sequences ingested or hashes admitted.
type Counter interface {
	// Add increments the counter by delta observations.
	Add(delta uint64)

	// Inc records a single observation.
	Inc()

	// Value returns the count accumulated so far. Sinks that cannot read
	// their backend's state back (Prometheus) return 0.
	Value() uint64
}

// Timer records elapsed-time samples, one per completed map phase.
type Timer interface {
	AddValue(float64)
}

// Sink hands out named counters and timers. GostatsSink aggregates
// in-process, DatadogSink flushes to a dogstatsd agent, and
// PrometheusSink registers against a scrape registry.
type Sink interface {
	Counter(name string) Counter
	Timer(name string) Timer
}

// GostatsSink is the default Sink, backed by a gostats Scope.
type GostatsSink struct {
	scope stats.Scope
}

func NewGostatsSink(scope stats.Scope) *GostatsSink {
	return &GostatsSink{scope: scope}
}

func (s GostatsSink) Counter(name string) Counter {
	return s.scope.NewCounter(name)
}

func (s GostatsSink) Timer(name string) Timer {
	return s.scope.NewTimer(name)
}

// mapMetrics bundles the counters and timers recorded around one call to
// the parallel driver's map phase.
type mapMetrics struct {
	batches     Counter
	sequences   Counter
	admitted    Counter
	mapDuration Timer
}

// DriverReporter reports map/reduce activity for the parallel driver.
type DriverReporter struct {
	sink    Sink
	metrics *mapMetrics
}

func newMapMetrics(sink Sink, scopeName string) *mapMetrics {
	return &mapMetrics{
		batches:     sink.Counter(scopeName + ".batches_total"),
		sequences:   sink.Counter(scopeName + ".sequences_total"),
		admitted:    sink.Counter(scopeName + ".admitted_total"),
		mapDuration: sink.Timer(scopeName + ".map_duration_ms"),
	}
}

// NewDriverReporter returns a DriverReporter that records activity under
// scopeName (e.g. "driver.topk" or "driver.bottomk"), letting callers
// share one sink across several differently-configured drivers while
// keeping their stats distinct.
func NewDriverReporter(sink Sink, scopeName string) *DriverReporter {
	return &DriverReporter{
		sink:    sink,
		metrics: newMapMetrics(sink, scopeName),
	}
}

// ObserveMap records one completed map-phase call: how many sequences went
// in, how many distinct hashes ended up admitted, and how long it took.
func (r *DriverReporter) ObserveMap(sequenceCount, admittedCount int, elapsed time.Duration) {
	r.metrics.batches.Inc()
	r.metrics.sequences.Add(uint64(sequenceCount))
	r.metrics.admitted.Add(uint64(admittedCount))
	r.metrics.mapDuration.AddValue(float64(elapsed.Milliseconds()))
}

// Time runs fn, timing it and recording sequenceCount/admittedCount
// against the result sketch's Len(), and returns fn's error unchanged.
func (r *DriverReporter) Time(sequenceCount int, fn func() (admittedCount int, err error)) error {
	start := time.Now()
	admitted, err := fn()
	r.ObserveMap(sequenceCount, admitted, time.Since(start))
	return err
}
