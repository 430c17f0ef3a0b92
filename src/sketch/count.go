package sketch

// This file is the count overlay: hook points invoked by the base
// insertion algorithm in sketch.go when withCounts is set. It is
// expressed as a handful of methods rather than a separate embedded
// type.

// onReobserve: hash is already admitted, so a single-subword
// re-observation just bumps its count.
func (s *Sketch) onReobserve(hash uint64) {
	if !s.withCounts {
		return
	}
	s.counts[hash]++
}

// onFreshInsert: hash was just admitted into spare capacity, so its
// count starts at 1.
func (s *Sketch) onFreshInsert(hash uint64) {
	if !s.withCounts {
		return
	}
	s.counts[hash] = 1
}

// onReplace: hash just evicted the previous root, so the evicted hash's
// count is dropped and the new hash's count starts at 1.
func (s *Sketch) onReplace(evictedHash, newHash uint64) {
	if !s.withCounts {
		return
	}
	delete(s.counts, evictedHash)
	s.counts[newHash] = 1
}

// reconcileCounts runs after the set-level merge: for every hash
// currently admitted, add other's count for that hash (zero when other
// never held it).
//
// mergeAdmit (sketch.go) deliberately does not touch counts when
// establishing membership during a merge, so a hash admitted for the
// first time during this merge starts the reconciliation with an absent
// (zero-valued) counts entry; a hash s already held carries its prior
// count into the reconciliation. Either way the delta added is exactly
// other's contribution, which is what makes merge(empty, s) an identity
// and merge(s, s) double every count rather than double-plus-one it.
func (s *Sketch) reconcileCounts(other *Sketch) {
	if !s.withCounts {
		return
	}

	for hash := range s.heap.memberIndex {
		var delta uint64
		if other.withCounts {
			delta = other.counts[hash]
		} else if _, ok := other.heap.indexOf(hash); ok {
			delta = 1
		}
		if delta > 0 {
			s.counts[hash] += delta
		}
	}
}
