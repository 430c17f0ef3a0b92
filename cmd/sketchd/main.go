// Command sketchd assembles config, metrics, the parallel driver, an
// optional signature store, and the debug HTTP surface the way a real
// deployment of this engine would, reading sequences from stdin and
// reporting the resulting sketch on the debug port.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	kitlog "github.com/go-kit/log"
	stats "github.com/lyft/gostats"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	logger "github.com/sirupsen/logrus"

	"github.com/mashing-pumpkins/gosketch/src/config"
	"github.com/mashing-pumpkins/gosketch/src/hashfun"
	"github.com/mashing-pumpkins/gosketch/src/metrics"
	"github.com/mashing-pumpkins/gosketch/src/parallel"
	"github.com/mashing-pumpkins/gosketch/src/server"
	"github.com/mashing-pumpkins/gosketch/src/sketch"
	"github.com/mashing-pumpkins/gosketch/src/store"
	"github.com/mashing-pumpkins/gosketch/src/tracing"
)

func buildHashFun(name string) (hashfun.HashFun, error) {
	switch name {
	case "xxhash64":
		return hashfun.NewXXHash64(), nil
	case "murmur3-x64":
		return hashfun.NewMurmur3(), nil
	case "canonical-dna":
		return hashfun.NewCanonical(hashfun.NewXXHash64()), nil
	default:
		return nil, fmt.Errorf("sketchd: unknown hash function %q", name)
	}
}

func main() {
	settings, err := config.Load()
	if err != nil {
		logger.Fatalf("sketchd: failed to load settings: %v", err)
	}

	tracingShutdown, err := tracing.Init(context.Background(), settings.TracingEndpoint, settings.TracingInsecure)
	if err != nil {
		logger.Warnf("sketchd: tracing disabled: %v", err)
		tracingShutdown = func(context.Context) error { return nil }
	}
	defer func() {
		if err := tracingShutdown(context.Background()); err != nil {
			logger.Warnf("sketchd: tracing shutdown failed: %v", err)
		}
	}()

	statsStore := stats.NewStore(stats.NewNullSink(), false)

	var (
		sink         metrics.Sink
		promRegistry *prometheus.Registry
	)
	switch settings.MetricsBackend {
	case "prometheus":
		promRegistry = prometheus.NewRegistry()
		sink = metrics.NewPrometheusSink(promRegistry)
	case "datadog":
		dd, err := metrics.NewDatadogSink(settings.DatadogAddr, "sketchd", kitlog.NewLogfmtLogger(os.Stderr))
		if err != nil {
			logger.Fatalf("sketchd: failed to dial dogstatsd at %s: %v", settings.DatadogAddr, err)
		}
		sink = dd
	default:
		sink = metrics.NewGostatsSink(statsStore.Scope("sketchd"))
	}
	driverReporter := metrics.NewDriverReporter(sink, "driver")

	workers := config.NewWorkerCountSource(settings.WorkerCount)
	if err := workers.Watch(settings.RuntimeWatchRoot, settings.RuntimeSubdirectory, statsStore); err != nil {
		logger.Warnf("sketchd: runtime watcher disabled: %v", err)
	}

	hf, err := buildHashFun(settings.HashFun)
	if err != nil {
		logger.Fatalf("sketchd: %v", err)
	}

	factory := func() (*sketch.Sketch, error) {
		return sketch.NewTopK(settings.K, settings.M, hf, settings.Seed, settings.WithCounts)
	}
	driver := parallel.New(factory).WithWorkerCount(workers.WorkerCount)

	var (
		mu     sync.Mutex
		latest *sketch.Frozen
	)
	debugServer := server.New(
		fmt.Sprintf("%s:%d", settings.DebugHost, settings.DebugPort),
		func(id string) (*sketch.Frozen, bool) {
			mu.Lock()
			defer mu.Unlock()
			if id != "latest" || latest == nil {
				return nil, false
			}
			return latest, true
		},
	)
	if promRegistry != nil {
		debugServer.AddMetricsHandler(promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}))
	}
	if err := debugServer.Start(); err != nil {
		logger.Fatalf("sketchd: failed to start debug server: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var sequences [][]byte
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 1<<20), 1<<24)
	for scanner.Scan() {
		line := append([]byte(nil), scanner.Bytes()...)
		if len(line) > 0 {
			sequences = append(sequences, line)
		}
	}
	if err := scanner.Err(); err != nil {
		logger.Fatalf("sketchd: failed to read stdin: %v", err)
	}

	logger.Infof("sketchd: worker_count=%d (hot-reloadable via runtime overlay)", workers.WorkerCount())

	var result *sketch.Sketch
	err = driverReporter.Time(len(sequences), func() (int, error) {
		s, mapErr := driver.Map(ctx, sequences)
		if mapErr != nil {
			return 0, mapErr
		}
		result = s
		return s.Len(), nil
	})
	if err != nil {
		logger.Fatalf("sketchd: map phase failed: %v", err)
	}

	frozen := result.Freeze()
	mu.Lock()
	latest = frozen
	mu.Unlock()

	logger.Infof("sketchd: ingested %d sequences, %d hashes admitted, %d subwords visited",
		len(sequences), frozen.Len(), frozen.NVisited())

	var sigStore store.SketchStore
	switch settings.StoreBackend {
	case "redis":
		rs, err := store.NewRedisStore(ctx, "127.0.0.1:6379", 4, 3)
		if err != nil {
			logger.Warnf("sketchd: failed to dial redis store: %v", err)
		} else {
			sigStore = rs
		}
	case "memcached":
		sigStore = store.NewMemcachedStore([]string{"127.0.0.1:11211"}, 0, 3)
	}
	if sigStore != nil {
		if err := sigStore.Put(ctx, "latest", frozen); err != nil {
			logger.Warnf("sketchd: failed to persist signature: %v", err)
		}
	}

	<-ctx.Done()
}
