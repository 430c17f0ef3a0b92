// Package parallel implements the coarse-grained, worker-per-chunk
// map/reduce driver: each worker owns its own sketch and buffer, touches
// no shared mutable state, and the parent folds completed worker results
// serially via Sketch.Update.
package parallel

import (
	"strconv"

	"github.com/coocood/freecache"
)

// defaultGuardBytes sizes the freecache-backed dedupe guard. Each entry
// is a work-item ID key (about 40 bytes) plus a one-byte marker and
// freecache's per-entry header, so this tracks tens of thousands of
// completed work items before eviction.
const defaultGuardBytes = 4 * 1024 * 1024

// Guard records which work-item IDs have already been folded into the
// final accumulator, so that a driver-level retry after a transient
// worker failure can never fold the same partial sketch twice and
// silently inflate nvisited. Backed by a bounded off-heap freecache used
// as an idempotent-completion marker.
type Guard struct {
	seen *freecache.Cache
}

// NewGuard returns a Guard sized to track up to roughly bytes worth of
// completed work-item markers. A zero or negative bytes uses a sensible
// default.
func NewGuard(bytes int) *Guard {
	if bytes <= 0 {
		bytes = defaultGuardBytes
	}
	return &Guard{seen: freecache.NewCache(bytes)}
}

// MarkIfNew records id as completed and reports whether it was not
// already recorded (true the first time, false on any subsequent call
// with the same id).
func (g *Guard) MarkIfNew(id string) bool {
	key := []byte(id)
	if _, err := g.seen.Get(key); err == nil {
		return false
	}
	// An expiration of 0 means freecache never expires the entry; it
	// leaves only when evicted for space — fine here since entries are
	// tiny and the cache is bounded.
	_ = g.seen.Set(key, []byte{1}, 0)
	return true
}

// Reset clears all recorded work-item IDs, for reuse across batches.
func (g *Guard) Reset() {
	g.seen.Clear()
}

// workItemID derives a stable dedupe key for the i-th work item of a
// batch tagged with batchID.
func workItemID(batchID string, i int) string {
	return batchID + "#" + strconv.Itoa(i)
}
