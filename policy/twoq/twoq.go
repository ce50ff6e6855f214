// Package twoq implements the 2Q eviction policy on top of the same
// Hooks/ShardPolicy abstraction as policy/lru, carried over from the teacher
// unchanged beyond its import path: 2Q isn't named by the core simulator
// spec, but it is one more concrete instantiation of the Hooks-based
// polymorphism the design favors, so it stays available alongside lru and
// lrumad as a drop-in cache.Policy for experimentation.
package twoq

import (
	"container/list"

	"github.com/tsunrise/delayed-hits/policy"
)

// twoQ implements the 2Q eviction policy: a cheap approximation of LFU that
// protects hot keys from being pushed out by a single scan over cold ones —
// the failure mode plain LRU has no defense against.
//
// Resident queues:
//   • A1in (younger queue) — its own list + index by Node; admits first-time entries
//   • Am   (mature queue)  — nodes not present in inIdx; ordering is driven by shard hooks
//
// Ghost A1out: keys only (no values), tracks recently evicted A1in keys to give them
// a second chance (bypass A1in on re-admission).
//
// Concurrency: like every Policy, twoQ is driven by a single caller at a
// time (spec §5) — no method here needs to coordinate with another goroutine.
type twoQ[K comparable, V any] struct {
	h policy.Hooks[K, V]

	capIn    int // A1in capacity (per-shard)
	capGhost int // A1out (ghost) capacity (per-shard)

	// A1in: MRU at Front() -> LRU at Back()
	inList *list.List
	// Fast membership check for "is node in A1in?"
	inIdx map[policy.Node[K, V]]*list.Element // element.Value is policy.Node[K,V]

	// A1out (ghosts): keys only, MRU at Front() -> LRU at Back()
	ghostList *list.List
	ghostIdx  map[K]*list.Element // key -> element in ghostList (element.Value is K)
}

// New returns a Policy factory that constructs per-shard 2Q instances.
// Common choices: capIn ≈ 25% of shard capacity; capGhost ≈ 50–100% of shard capacity.
// Pass it to cache.NewSharded, or wrap a single shard with it directly —
// when sharded, capIn/capGhost are *per-shard* sizes, not totals.
func New[K comparable, V any](capIn, capGhost int) policy.Policy[K, V] {
	if capIn < 1 {
		capIn = 1
	}
	if capGhost < 1 {
		capGhost = 1
	}
	return twoQPolicy[K, V]{capIn: capIn, capGhost: capGhost}
}

type twoQPolicy[K comparable, V any] struct {
	capIn    int
	capGhost int
}

func (p twoQPolicy[K, V]) New(h policy.Hooks[K, V]) policy.ShardPolicy[K, V] {
	return &twoQ[K, V]{
		h:         h,
		capIn:     p.capIn,
		capGhost:  p.capGhost,
		inList:    list.New(),
		inIdx:     make(map[policy.Node[K, V]]*list.Element),
		ghostList: list.New(),
		ghostIdx:  make(map[K]*list.Element),
	}
}

// OnAdd admission rules:
//   • If key is present in ghosts (A1out), bypass A1in and admit directly to Am (MRU).
//     Also remove the ghost entry.
//   • Otherwise admit into A1in (and MRU in the shard list via hooks).
//   • If A1in overflows, return its LRU candidate to the shard for eviction.
func (q *twoQ[K, V]) OnAdd(n policy.Node[K, V]) (evict policy.Node[K, V]) {
	k := n.Key()
	if ge, ok := q.ghostIdx[k]; ok {
		// Second chance: promote from ghosts directly into Am (skip A1in).
		q.ghostList.Remove(ge)
		delete(q.ghostIdx, k)
		q.h.PushFront(n) // MRU in shard list (Am)
		return nil
	}

	// First-time admission: insert into A1in and MRU of the shard list.
	q.h.PushFront(n)
	q.inIdx[n] = q.inList.PushFront(n)

	// If A1in is over capacity, propose its LRU for eviction.
	if q.inList.Len() > q.capIn {
		if lruEl := q.inList.Back(); lruEl != nil {
			return lruEl.Value.(policy.Node[K, V])
		}
	}
	return nil
}

// OnGet promotes a hit from A1in to Am (a key survives one re-access to
// prove it's not a one-off scan), then moves it to MRU in the shard list —
// the same recency bump spec §4.2/§4.3 describe for plain LRU, gated by 2Q's
// queue-graduation rule.
func (q *twoQ[K, V]) OnGet(n policy.Node[K, V]) {
	if el, ok := q.inIdx[n]; ok {
		q.inList.Remove(el)
		delete(q.inIdx, n)
	}
	q.h.MoveToFront(n)
}

// OnUpdate follows OnGet semantics: an overwriting Write counts as a recent
// use and can graduate a key out of A1in the same way a Get can.
func (q *twoQ[K, V]) OnUpdate(n policy.Node[K, V]) { q.OnGet(n) }

// OnRemove:
//   • If the node was in A1in, add its key to ghosts (A1out), respecting capGhost.
//   • Removals from Am do NOT populate ghosts.
func (q *twoQ[K, V]) OnRemove(n policy.Node[K, V]) {
	if el, ok := q.inIdx[n]; ok {
		// Remove from A1in tracking.
		q.inList.Remove(el)
		delete(q.inIdx, n)

		k := n.Key()

		// Insert/move ghost to MRU.
		if old := q.ghostIdx[k]; old != nil {
			q.ghostList.Remove(old)
		}
		q.ghostIdx[k] = q.ghostList.PushFront(k)

		// Enforce ghost capacity (drop LRU ghosts).
		for q.ghostList.Len() > q.capGhost {
			tail := q.ghostList.Back()
			if tail == nil {
				break
			}
			kk := tail.Value.(K)
			delete(q.ghostIdx, kk)
			q.ghostList.Remove(tail)
		}
	}
}
