package cache

import "github.com/tsunrise/delayed-hits/simtime"

// Policy is the cache contract (C2): the three operations every eviction
// policy in this module implements. All methods are safe for concurrent use
// only if the concrete implementation documents that it is; the standalone
// policy/lru, policy/lrumad, and policy/twoq implementations are NOT
// internally synchronized (the simulator is single-threaded, per spec §5).
// Sharded adds no locking of its own; the cdn package guards its policy with
// its own mutex.
type Policy[K comparable, V any] interface {
	// Contains reports whether k currently resides, without mutating state.
	Contains(k K) bool

	// Get consults residency for k at timestamp t. Implementations may
	// update internal heuristic state (recency position, LRU-MAD metadata)
	// even when the return is a miss.
	Get(k K, t simtime.TimeUnit) (V, bool)

	// Write admits k->v at timestamp t. If k is already resident, its value
	// is overwritten in place and no eviction occurs. If k is absent and the
	// residency is at capacity, exactly one victim is selected and removed
	// per the policy before k is inserted. A list shard driven by
	// policy/twoq can also evict the oldest A1in entry when a new key
	// overflows A1in, even while the shard is below capacity.
	Write(k K, v V, t simtime.TimeUnit)
}
