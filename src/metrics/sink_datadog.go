package metrics

import (
	"sync"

	"github.com/DataDog/datadog-go/v5/statsd"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// DatadogSink flushes counters and timers to a dogstatsd agent instead
// of the gostats aggregation loop. Flush errors can't be returned
// through the Counter/Timer interfaces (they fire-and-forget, same as
// gostats), so they're logged through a dedicated go-kit logger instead
// of the app-wide logrus logger.
type DatadogSink struct {
	client *statsd.Client
	logger log.Logger
}

// NewDatadogSink dials addr (e.g. "127.0.0.1:8125") and returns a sink
// that prefixes every stat name with namespace.
func NewDatadogSink(addr, namespace string, logger log.Logger) (*DatadogSink, error) {
	client, err := statsd.New(addr, statsd.WithNamespace(namespace))
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &DatadogSink{client: client, logger: logger}, nil
}

func (d *DatadogSink) Counter(name string) Counter {
	return &datadogCounter{client: d.client, name: name, logger: d.logger}
}

func (d *DatadogSink) Timer(name string) Timer {
	return &datadogTimer{client: d.client, name: name, logger: d.logger}
}

type datadogCounter struct {
	client *statsd.Client
	name   string
	logger log.Logger

	mu    sync.Mutex
	value uint64
}

func (c *datadogCounter) Add(delta uint64) {
	c.mu.Lock()
	c.value += delta
	c.mu.Unlock()
	if err := c.client.Count(c.name, int64(delta), nil, 1); err != nil {
		level.Warn(c.logger).Log("msg", "datadog counter flush failed", "stat", c.name, "err", err)
	}
}

func (c *datadogCounter) Inc() { c.Add(1) }

func (c *datadogCounter) Value() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

type datadogTimer struct {
	client *statsd.Client
	name   string
	logger log.Logger
}

func (t *datadogTimer) AddValue(v float64) {
	if err := t.client.Histogram(t.name, v, nil, 1); err != nil {
		level.Warn(t.logger).Log("msg", "datadog timer flush failed", "stat", t.name, "err", err)
	}
}
