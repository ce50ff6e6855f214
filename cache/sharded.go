package cache

import (
	"github.com/tsunrise/delayed-hits/internal/util"
	"github.com/tsunrise/delayed-hits/objkey"
	"github.com/tsunrise/delayed-hits/simtime"
)

// Sharded is the k-way set-associative dispatcher (C5): k independent
// Policy[K, V] instances, selected by objkey.Hash(k) % k. Sharded itself
// satisfies Policy[K, V], so it can be passed anywhere a single policy can.
//
// Each shard exclusively owns its own residency (and, for LRU-MAD, its own
// metadata table) — there is no shared mutable state across shards, per
// spec §3 "Ownership".
type Sharded[K comparable, V any] struct {
	shards []Policy[K, V]
}

// NewSharded builds a Sharded dispatcher with k shards, each constructed by
// newShard(shardIndex). Panics if k < 1 (construction-time configuration
// error, per spec §7).
func NewSharded[K comparable, V any](k int, newShard func(shardIndex int) Policy[K, V]) *Sharded[K, V] {
	if k < 1 {
		panic("cache: shard count must be >= 1")
	}
	shards := make([]Policy[K, V], k)
	for i := range shards {
		shards[i] = newShard(i)
	}
	return &Sharded[K, V]{shards: shards}
}

// ShardFor returns the shard index a key routes to. Exposed so callers (the
// CDN boundary, tests asserting I5) can reason about shard locality without
// re-deriving the hash.
func (s *Sharded[K, V]) ShardFor(k K) int {
	return util.ShardIndex(objkey.Hash(k), len(s.shards))
}

// Contains implements Policy.
func (s *Sharded[K, V]) Contains(k K) bool {
	return s.shards[s.ShardFor(k)].Contains(k)
}

// Get implements Policy.
func (s *Sharded[K, V]) Get(k K, t simtime.TimeUnit) (V, bool) {
	return s.shards[s.ShardFor(k)].Get(k, t)
}

// Write implements Policy.
func (s *Sharded[K, V]) Write(k K, v V, t simtime.TimeUnit) {
	s.shards[s.ShardFor(k)].Write(k, v, t)
}

// Len returns the number of shards.
func (s *Sharded[K, V]) Len() int { return len(s.shards) }
