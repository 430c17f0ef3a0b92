package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusSink registers counters and timers (as histograms) against a
// Prometheus registry, scraped by src/server.DebugServer's /metrics
// endpoint.
type PrometheusSink struct {
	registry *prometheus.Registry
	counters map[string]prometheus.Counter
	timers   map[string]prometheus.Histogram
}

// NewPrometheusSink returns a sink registered against registry. Passing
// a fresh prometheus.NewRegistry() keeps this sink's stats isolated from
// the default global registry.
func NewPrometheusSink(registry *prometheus.Registry) *PrometheusSink {
	return &PrometheusSink{
		registry: registry,
		counters: make(map[string]prometheus.Counter),
		timers:   make(map[string]prometheus.Histogram),
	}
}

func sanitizeName(name string) string {
	out := make([]byte, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c == '.' || c == '-' {
			c = '_'
		}
		out[i] = c
	}
	return string(out)
}

func (p *PrometheusSink) Counter(name string) Counter {
	metricName := sanitizeName(name)
	if c, ok := p.counters[metricName]; ok {
		return &prometheusCounter{c: c}
	}
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: metricName})
	p.registry.MustRegister(c)
	p.counters[metricName] = c
	return &prometheusCounter{c: c}
}

func (p *PrometheusSink) Timer(name string) Timer {
	metricName := sanitizeName(name)
	if h, ok := p.timers[metricName]; ok {
		return &prometheusTimer{h: h}
	}
	h := prometheus.NewHistogram(prometheus.HistogramOpts{Name: metricName})
	p.registry.MustRegister(h)
	p.timers[metricName] = h
	return &prometheusTimer{h: h}
}

type prometheusCounter struct {
	c prometheus.Counter
}

func (pc *prometheusCounter) Add(delta uint64) { pc.c.Add(float64(delta)) }
func (pc *prometheusCounter) Inc()             { pc.c.Inc() }

// Value is not retrievable from a prometheus.Counter without scraping its
// own registry, so this reports 0; callers that need a read-back value
// should use GostatsSink instead.
func (pc *prometheusCounter) Value() uint64 { return 0 }

type prometheusTimer struct {
	h prometheus.Histogram
}

func (pt *prometheusTimer) AddValue(v float64) { pt.h.Observe(v) }
