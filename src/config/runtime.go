package config

import (
	stats "github.com/lyft/gostats"
	"github.com/lyft/goruntime/loader"
	logger "github.com/sirupsen/logrus"
)

// WorkerCountKey is the runtime flag key watched for the parallel
// driver's worker count override.
const WorkerCountKey = "sketch.parallel.worker_count"

// WorkerCountSource yields the parallel driver's worker count, preferring
// a live goruntime override over the static Settings.WorkerCount value.
type WorkerCountSource struct {
	static  int
	runtime loader.IFace
}

// NewWorkerCountSource wraps static as the fallback value with no runtime
// watcher attached; call Watch to attach one.
func NewWorkerCountSource(static int) *WorkerCountSource {
	return &WorkerCountSource{static: static}
}

// Watch starts a goruntime directory loader rooted at watchRoot/subdir and
// attaches it as the live override source. If watchRoot is empty, Watch is
// a no-op and WorkerCount keeps returning the static value, so runtime
// watching is strictly optional.
func (w *WorkerCountSource) Watch(watchRoot, subdir string, store stats.Store) error {
	if watchRoot == "" {
		return nil
	}

	rt, err := loader.New2(
		watchRoot,
		subdir,
		store.ScopeWithTags("runtime", nil),
		&loader.SymlinkRefresher{RuntimePath: watchRoot},
		loader.IgnoreDotFiles,
	)
	if err != nil {
		return err
	}
	w.runtime = rt
	return nil
}

// WorkerCount returns the current worker count: the live runtime override
// when one is present and parses as a positive integer, otherwise the
// static fallback supplied at construction.
func (w *WorkerCountSource) WorkerCount() int {
	if w.runtime == nil {
		return w.static
	}
	snapshot := w.runtime.Snapshot()
	n := snapshot.GetInteger(WorkerCountKey, uint64(w.static))
	if n <= 0 {
		logger.Warnf("config: runtime override for %s is non-positive (%d), falling back to %d", WorkerCountKey, n, w.static)
		return w.static
	}
	return int(n)
}
