// Package cache defines the cache contract (C2) every eviction policy in
// this module obeys, plus the k-way sharded dispatcher (C5) that fans a key
// out to one of k independent policy instances.
//
// Contract
//
// A Policy[K, V] exposes exactly three operations, all timestamped for the
// benefit of heuristic policies that want it (policies are free to ignore
// the timestamp):
//
//   - Contains(k) reports residency without mutating any state.
//   - Get(k, t) consults residency and may update internal heuristic state
//     even on a miss (LRU-MAD does; LRU and 2Q don't).
//   - Write(k, v, t) admits k, overwriting in place if already resident, or
//     evicting exactly one victim per the policy if the shard is full
//     (policy/twoq may also evict on an A1in overflow below capacity).
//
// The contract never returns errors: construction-time misconfiguration
// (capacity < 1) panics instead, matching the teacher's own New() behavior.
//
// Sharding
//
// Sharded[K, V] holds k independent Policy[K, V] instances and dispatches
// every call to shard objkey.Hash(k) % k. It itself implements Policy[K, V],
// so a Sharded can be passed anywhere a single policy can — including
// directly into simulator.Run and cdn.RunExperiment.
package cache
