package cache

import (
	"github.com/tsunrise/delayed-hits/policy"
	"github.com/tsunrise/delayed-hits/simtime"
)

// listShard is a single-shard Policy[K, V] implementation backed by a
// map plus an intrusive MRU<->LRU doubly linked list. List manipulation is
// delegated to a policy.ShardPolicy via policy.Hooks, so the same listShard
// mechanics back both policy/lru and policy/twoq.
//
// Adapted from the teacher's cache/shard.go: the per-shard RWMutex, TTL
// deadline handling, cost accounting, and OnEvict value callback are all
// removed (the simulator calls every Policy single-threaded, per spec §5,
// and this domain has neither TTL nor cost). What's kept is the O(1)
// intrusive-list bookkeeping (insertFront/moveToFront/removeNode/back) and
// the hit/miss/evict instrumentation.
type listShard[K comparable, V any] struct {
	m    map[K]*listNode[K, V]
	head *listNode[K, V] // MRU
	tail *listNode[K, V] // LRU
	size int
	cap  int

	pol policy.ShardPolicy[K, V]
	met Metrics
}

// New builds a single Policy[K, V] of the given capacity backed by a
// list-ordered policy (policy/lru.New or policy/twoq.New). Pass it directly,
// or wrap it as the newShard callback to cache.NewSharded for a sharded
// list-ordered cache.
func New[K comparable, V any](capacity int, pol policy.Policy[K, V], met Metrics) Policy[K, V] {
	return newListShard(capacity, pol, met)
}

// newListShard builds a listShard of the given capacity, bound to a
// policy.Policy factory (policy/lru.New or policy/twoq.New) via Hooks.
func newListShard[K comparable, V any](capacity int, pol policy.Policy[K, V], met Metrics) *listShard[K, V] {
	if capacity < 1 {
		panic("cache: capacity must be >= 1")
	}
	if met == nil {
		met = NoopMetrics{}
	}
	s := &listShard[K, V]{
		m:   make(map[K]*listNode[K, V], capacity),
		cap: capacity,
		met: met,
	}
	s.pol = pol.New(listHooks[K, V]{s: s})
	return s
}

// Contains implements cache.Policy.
func (s *listShard[K, V]) Contains(k K) bool {
	_, ok := s.m[k]
	return ok
}

// Get implements cache.Policy. t is unused by the list-ordered policies but
// kept in the signature to satisfy the shared Policy contract.
func (s *listShard[K, V]) Get(k K, _ simtime.TimeUnit) (V, bool) {
	n, ok := s.m[k]
	if !ok {
		s.met.Miss()
		var zero V
		return zero, false
	}
	s.pol.OnGet(n)
	s.met.Hit()
	return n.val, true
}

// Write implements cache.Policy.
func (s *listShard[K, V]) Write(k K, v V, _ simtime.TimeUnit) {
	if n, ok := s.m[k]; ok {
		n.val = v
		s.pol.OnUpdate(n)
		return
	}

	n := &listNode[K, V]{key: k, val: v}
	s.m[k] = n
	if ev := s.pol.OnAdd(n); ev != nil {
		s.evict(ev.(*listNode[K, V]))
	}
	s.enforceCapacity()
	s.met.Size(s.size)
}

func (s *listShard[K, V]) enforceCapacity() {
	for s.size > s.cap {
		if tail := s.back(); tail != nil {
			s.evict(tail)
		} else {
			break
		}
	}
}

func (s *listShard[K, V]) evict(n *listNode[K, V]) {
	s.pol.OnRemove(n)
	s.removeNode(n)
	delete(s.m, n.key)
	s.met.Evict(EvictPolicy)
}

// -------------------- intrusive list mechanics --------------------

func (s *listShard[K, V]) insertFront(n *listNode[K, V]) {
	n.prev = nil
	n.next = s.head
	if s.head != nil {
		s.head.prev = n
	}
	s.head = n
	if s.tail == nil {
		s.tail = n
	}
	s.size++
}

func (s *listShard[K, V]) moveToFront(n *listNode[K, V]) {
	if n == s.head {
		return
	}
	if n.prev != nil {
		n.prev.next = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	}
	if s.tail == n {
		s.tail = n.prev
	}
	n.prev = nil
	n.next = s.head
	if s.head != nil {
		s.head.prev = n
	}
	s.head = n
	if s.tail == nil {
		s.tail = n
	}
}

func (s *listShard[K, V]) removeNode(n *listNode[K, V]) {
	if n.prev != nil {
		n.prev.next = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	}
	if s.head == n {
		s.head = n.next
	}
	if s.tail == n {
		s.tail = n.prev
	}
	n.prev, n.next = nil, nil
	s.size--
}

func (s *listShard[K, V]) back() *listNode[K, V] { return s.tail }

// -------------------- policy.Hooks adapter --------------------

type listHooks[K comparable, V any] struct{ s *listShard[K, V] }

func (h listHooks[K, V]) MoveToFront(x policy.Node[K, V]) { h.s.moveToFront(x.(*listNode[K, V])) }
func (h listHooks[K, V]) PushFront(x policy.Node[K, V])   { h.s.insertFront(x.(*listNode[K, V])) }
func (h listHooks[K, V]) Remove(x policy.Node[K, V])      { h.s.removeNode(x.(*listNode[K, V])) }
func (h listHooks[K, V]) Back() policy.Node[K, V]         { return h.s.back() }
func (h listHooks[K, V]) Len() int                        { return h.s.size }
