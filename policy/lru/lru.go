// Package lru implements the LRU eviction policy (C3): move-to-front on
// every hit and on every write, evict from the tail. Adapted from the
// teacher's policy/lru/lru.go — the policy logic itself is unchanged, since
// classical LRU has no TTL/cost concept to strip.
package lru

import "github.com/tsunrise/delayed-hits/policy"

type lru[K comparable, V any] struct {
	h policy.Hooks[K, V]
}

type factory[K comparable, V any] struct{}

// New returns a Policy factory that constructs per-shard LRU instances.
// Pass it to cache.NewSharded or wrap a single shard with it directly.
func New[K comparable, V any]() policy.Policy[K, V] { return factory[K, V]{} }

func (factory[K, V]) New(h policy.Hooks[K, V]) policy.ShardPolicy[K, V] {
	return &lru[K, V]{h: h}
}

// OnAdd places the new entry at MRU. LRU never proposes an eviction
// candidate itself; the shard enforces capacity and evicts the tail.
func (p *lru[K, V]) OnAdd(n policy.Node[K, V]) (evict policy.Node[K, V]) {
	p.h.PushFront(n)
	return nil
}

// OnGet promotes the entry to MRU — this is how a Get hit advances recency
// (spec §4.3).
func (p *lru[K, V]) OnGet(n policy.Node[K, V]) { p.h.MoveToFront(n) }

// OnUpdate promotes the entry to MRU: an overwriting Write counts as a
// recent use.
func (p *lru[K, V]) OnUpdate(n policy.Node[K, V]) { p.h.MoveToFront(n) }

// OnRemove is a no-op: pure LRU keeps no state outside the shard's list.
func (p *lru[K, V]) OnRemove(_ policy.Node[K, V]) {}
