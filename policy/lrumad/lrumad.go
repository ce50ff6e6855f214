// Package lrumad implements the LRU-MAD (LRU with Minimum Aggregate Delay)
// eviction policy (C4): a delay-aware replacement rule that evicts the
// resident object with the smallest ratio of estimated aggregate miss delay
// to time-to-next-access.
//
// Unlike policy/lru and policy/twoq, lrumad does not implement
// policy.ShardPolicy over policy.Hooks: its eviction candidate is found by
// scoring every resident key rather than walking a position-ordered list, so
// it owns its storage directly instead of going through the intrusive-list
// shard machinery in package cache.
//
// Transcribed arithmetically unchanged from the original Rust
// implementation's cache/lru_mad.rs, including the `new` bookkeeping flag:
// without it, an object's first-ever access less than one miss latency after
// time zero would not open a window, leaving numWindows at 0 so that score
// divides by zero; its absence was previously a measured source of subpar
// hit-rate (see the credit note on objectMeta's new field below).
package lrumad

import (
	"math"

	"golang.org/x/exp/slices"

	"github.com/tsunrise/delayed-hits/objkey"
	"github.com/tsunrise/delayed-hits/simtime"
)

// objectMeta is the per-key bookkeeping LRU-MAD needs to score a candidate.
// It is kept for every key ever observed by Get, independent of whether that
// key is currently resident in valueStore: eviction only removes a key from
// valueStore, never from metaStore (spec §4.4, §9).
type objectMeta struct {
	// new is true until the first call to update. Credit: we initially did
	// not include this flag and LRU-MAD underperformed; referencing the
	// original authors' C++ implementation turned up the fix.
	new bool

	numWindows           uint64
	cumulativeDelay      simtime.TimeUnit
	windowStartTimestamp simtime.TimeUnit
	lastAccessTimestamp  simtime.TimeUnit
}

func newObjectMeta() *objectMeta {
	return &objectMeta{new: true}
}

// update folds a single access at timestamp into the running estimate.
// estimatedMissLatency is the configured, unit-wide miss-latency constant
// (spec §4.4 — not learned, supplied at construction).
func (m *objectMeta) update(timestamp, estimatedMissLatency simtime.TimeUnit) {
	tssw := timestamp - m.windowStartTimestamp

	if m.new || tssw >= estimatedMissLatency {
		m.numWindows++
		m.windowStartTimestamp = timestamp
		m.cumulativeDelay += estimatedMissLatency
	} else {
		m.cumulativeDelay += estimatedMissLatency - tssw
	}

	m.lastAccessTimestamp = timestamp
	m.new = false
}

// score returns the object's current eviction priority at timestamp: the
// estimated aggregate delay per miss window, divided by the time-to-next
// access. Lower score evicts first. timestamp must be >= lastAccessTimestamp
// (the simulator never scores a key in its own past).
func (m *objectMeta) score(timestamp simtime.TimeUnit) float64 {
	estimatedAggDelay := float64(m.cumulativeDelay) / float64(m.numWindows)
	ttna := timestamp - m.lastAccessTimestamp + 1
	return estimatedAggDelay / float64(ttna)
}

// Policy is the standalone cache.Policy[K, V] implementation for LRU-MAD.
// It satisfies cache.Policy without importing package cache, so cache has no
// dependency cycle back onto a specific policy.
type Policy[K comparable, V any] struct {
	capacity             int
	estimatedMissLatency simtime.TimeUnit

	valueStore map[K]V
	metaStore  map[K]*objectMeta
}

// New builds an LRU-MAD policy of the given capacity. estimatedMissLatency
// is the fixed per-miss latency constant used to size each object's delay
// window (spec §4.4); it is typically derived from an offline measurement
// of the origin's average fetch latency, not learned online.
func New[K comparable, V any](capacity int, estimatedMissLatency simtime.TimeUnit) *Policy[K, V] {
	if capacity < 1 {
		panic("lrumad: capacity must be >= 1")
	}
	return &Policy[K, V]{
		capacity:             capacity,
		estimatedMissLatency: estimatedMissLatency,
		valueStore:           make(map[K]V, capacity),
		metaStore:            make(map[K]*objectMeta),
	}
}

// Contains implements cache.Policy.
func (p *Policy[K, V]) Contains(k K) bool {
	_, ok := p.valueStore[k]
	return ok
}

// Get implements cache.Policy. Metadata is updated for k on every call,
// whether or not k is currently resident: a miss still needs its delay
// window tracked so that a subsequent Write has a score to evict by (spec
// §9's resolved Open Question — metadata tracking is keyed on access, not
// residency).
func (p *Policy[K, V]) Get(k K, t simtime.TimeUnit) (V, bool) {
	meta, ok := p.metaStore[k]
	if !ok {
		meta = newObjectMeta()
		p.metaStore[k] = meta
	}
	meta.update(t, p.estimatedMissLatency)

	v, ok := p.valueStore[k]
	return v, ok
}

// Write implements cache.Policy. An overwrite of a resident key never
// evicts. Admission of a new key evicts the minimum-score resident first if
// the shard is at capacity; the evicted key's metadata is kept forever, per
// the original implementation, so a later re-admission resumes its delay
// history instead of restarting cold.
func (p *Policy[K, V]) Write(k K, v V, t simtime.TimeUnit) {
	if _, ok := p.valueStore[k]; ok {
		p.valueStore[k] = v
		return
	}

	if len(p.valueStore) >= p.capacity {
		p.evictOne(t)
	}
	p.valueStore[k] = v
}

// evictOne removes the minimum-score resident key at timestamp t. Ties are
// broken deterministically: smallest lastAccessTimestamp first, then
// smallest key hash, so that a run is reproducible independent of Go's map
// iteration order.
func (p *Policy[K, V]) evictOne(t simtime.TimeUnit) {
	type candidate struct {
		key   K
		score float64
		meta  *objectMeta
	}

	candidates := make([]candidate, 0, len(p.valueStore))
	for k := range p.valueStore {
		meta, ok := p.metaStore[k]
		if !ok {
			// A key admitted via Write without ever going through Get has no
			// delay history; treat it as maximally stale so it is preferred
			// for eviction over any key with a real (finite) score.
			candidates = append(candidates, candidate{key: k, score: math.Inf(-1)})
			continue
		}
		candidates = append(candidates, candidate{key: k, score: meta.score(t), meta: meta})
	}

	slices.SortFunc(candidates, func(a, b candidate) int {
		if a.score != b.score {
			if a.score < b.score {
				return -1
			}
			return 1
		}
		at, bt := lastAccess(a.meta), lastAccess(b.meta)
		if at != bt {
			if at < bt {
				return -1
			}
			return 1
		}
		ah, bh := objkey.Hash(a.key), objkey.Hash(b.key)
		switch {
		case ah < bh:
			return -1
		case ah > bh:
			return 1
		default:
			return 0
		}
	})

	evictKey := candidates[0].key
	delete(p.valueStore, evictKey)
	// metaStore[evictKey] is intentionally retained.
}

func lastAccess(m *objectMeta) simtime.TimeUnit {
	if m == nil {
		return 0
	}
	return m.lastAccessTimestamp
}
