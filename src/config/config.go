// Package config defines the ambient Settings that wire a sketch engine
// deployment together: hash function choice, worker count, and optional
// store/metrics backends. The core packages (sketch, chunker, hashfun,
// parallel) take no dependency on this package; Settings exists purely to
// assemble them in cmd/sketchd.
package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Settings is populated first from the environment (via envconfig), then
// optionally overlaid from a YAML file for values that are awkward to
// express as env vars (e.g. a list of store endpoints).
type Settings struct {
	// K is the k-mer length used by the hash function.
	K int `envconfig:"SKETCH_K" default:"21"`
	// M is the bounded sample size (top-k and bottom-k both use it).
	M int `envconfig:"SKETCH_M" default:"1000"`
	// Seed is the hash seed; sketches built with different seeds are
	// never mergeable or comparable.
	Seed uint64 `envconfig:"SKETCH_SEED" default:"42"`
	// HashFun selects the hash function: "xxhash64", "murmur3-x64", or
	// "canonical-dna" (wraps xxhash64 with reverse-complement folding).
	HashFun string `envconfig:"SKETCH_HASHFUN" default:"xxhash64"`
	// WithCounts enables the per-hash multiplicity overlay.
	WithCounts bool `envconfig:"SKETCH_WITH_COUNTS" default:"false"`
	// WorkerCount is the static fallback worker count for the parallel
	// driver, overridable at runtime via WorkerCountSource (runtime.go).
	WorkerCount int `envconfig:"SKETCH_WORKER_COUNT" default:"4"`

	// DebugHost/DebugPort configure src/server.DebugServer.
	DebugHost string `envconfig:"SKETCH_DEBUG_HOST" default:"0.0.0.0"`
	DebugPort int    `envconfig:"SKETCH_DEBUG_PORT" default:"8080"`

	// StoreBackend selects the signature store adapter: "", "redis", or
	// "memcached". Empty means no store is wired.
	StoreBackend string `envconfig:"SKETCH_STORE_BACKEND" default:""`

	// MetricsBackend selects the metrics sink: "gostats" (in-process
	// aggregation), "prometheus" (scraped off the debug server's /metrics
	// endpoint), or "datadog" (flushed to the dogstatsd agent at
	// DatadogAddr).
	MetricsBackend string `envconfig:"SKETCH_METRICS_BACKEND" default:"gostats"`
	DatadogAddr    string `envconfig:"SKETCH_DATADOG_ADDR" default:"127.0.0.1:8125"`

	// RuntimeWatchRoot/RuntimeSubdirectory locate the goruntime-watched
	// directory tree for hot-reloadable overrides (runtime.go). Both
	// empty disables runtime watching.
	RuntimeWatchRoot    string `envconfig:"SKETCH_RUNTIME_PATH" default:""`
	RuntimeSubdirectory string `envconfig:"SKETCH_RUNTIME_SUBDIR" default:"config"`

	// TracingEndpoint is the OTLP/HTTP collector address (e.g.
	// "otel-collector:4318") that src/tracing.Init exports
	// parallel.Driver's map/reduce spans to. Empty disables tracing.
	TracingEndpoint string `envconfig:"SKETCH_TRACING_ENDPOINT" default:""`
	// TracingInsecure disables TLS on the OTLP/HTTP connection, for
	// talking to a collector sidecar over a plain loopback/local link.
	TracingInsecure bool `envconfig:"SKETCH_TRACING_INSECURE" default:"true"`
}

// overlay holds the subset of Settings that's more natural to express as
// a YAML file than individual env vars.
type overlay struct {
	StoreEndpoints []string `yaml:"store_endpoints"`
}

// Load populates Settings from the environment.
func Load() (Settings, error) {
	var s Settings
	if err := envconfig.Process("", &s); err != nil {
		return Settings{}, fmt.Errorf("config: failed to process environment: %w", err)
	}
	return s, nil
}

// LoadOverlay reads a YAML file of store endpoints to layer on top of
// Settings for batch jobs where a fixed endpoint list is easier to check
// into a config file than to pass as one big env var.
func LoadOverlay(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read overlay %s: %w", path, err)
	}
	var o overlay
	if err := yaml.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("config: failed to parse overlay %s: %w", path, err)
	}
	return o.StoreEndpoints, nil
}
