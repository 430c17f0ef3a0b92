package sketch

import "container/heap"

// entry is one admitted (hash, subword) pair, keyed for heap ordering by
// signedKey: hash itself for top-k sketches, its bitwise complement for
// bottom-k sketches. Ordering a single min-heap by ascending signedKey then
// always keeps the worst-admitted element at the root for either polarity.
type entry struct {
	signedKey uint64
	hash      uint64
	subword   []byte
}

// polarity selects which extremum a Sketch keeps: the m largest (Top) or
// the m smallest (Bottom) hash values observed.
type polarity int

const (
	Top polarity = iota
	Bottom
)

func (p polarity) String() string {
	if p == Top {
		return "top"
	}
	return "bottom"
}

func signedKeyFor(p polarity, hash uint64) uint64 {
	if p == Top {
		return hash
	}
	return ^hash
}

// minHeap is a container/heap.Interface min-heap over entries ordered by
// signedKey, with a side index kept in sync on every mutation so that
// member lookups stay O(1).
type minHeap struct {
	entries     []entry
	memberIndex map[uint64]int // hash -> index into entries
}

func newMinHeap() *minHeap {
	return &minHeap{memberIndex: make(map[uint64]int)}
}

func (h *minHeap) Len() int { return len(h.entries) }

func (h *minHeap) Less(i, j int) bool { return h.entries[i].signedKey < h.entries[j].signedKey }

func (h *minHeap) Swap(i, j int) {
	h.entries[i], h.entries[j] = h.entries[j], h.entries[i]
	h.memberIndex[h.entries[i].hash] = i
	h.memberIndex[h.entries[j].hash] = j
}

// Push and Pop satisfy container/heap.Interface; callers should use the
// higher-level insert/replaceRoot helpers below instead of calling these or
// container/heap directly, since those helpers keep memberIndex correct.
func (h *minHeap) Push(x any) {
	e := x.(entry)
	h.memberIndex[e.hash] = len(h.entries)
	h.entries = append(h.entries, e)
}

func (h *minHeap) Pop() any {
	old := h.entries
	n := len(old)
	e := old[n-1]
	h.entries = old[:n-1]
	delete(h.memberIndex, e.hash)
	return e
}

// insert adds a new entry to the heap, maintaining heap order.
func (h *minHeap) insert(e entry) {
	heap.Push(h, e)
}

// replaceRoot evicts the current worst-admitted element and inserts e in
// its place, returning the evicted entry. Caller must ensure h is full.
func (h *minHeap) replaceRoot(e entry) entry {
	evicted := h.entries[0]
	h.entries[0] = e
	delete(h.memberIndex, evicted.hash)
	h.memberIndex[e.hash] = 0
	heap.Fix(h, 0)
	return evicted
}

// root returns the worst-admitted entry and whether the heap is non-empty.
func (h *minHeap) root() (entry, bool) {
	if len(h.entries) == 0 {
		return entry{}, false
	}
	return h.entries[0], true
}

// indexOf returns the index of hash in the heap and whether it is present.
func (h *minHeap) indexOf(hash uint64) (int, bool) {
	i, ok := h.memberIndex[hash]
	return i, ok
}
