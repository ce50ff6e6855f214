package lru

import (
	"testing"

	"github.com/tsunrise/delayed-hits/policy"
)

type testNode[K comparable, V any] struct {
	k K
	v V
}

func (n *testNode[K, V]) Key() K    { return n.k }
func (n *testNode[K, V]) Value() *V { return &n.v }

type mockHooks[K comparable, V any] struct {
	pushFrontCnt   int
	moveToFrontCnt int
	removeCnt      int

	lastPush policy.Node[K, V]
	lastMove policy.Node[K, V]
	lastRem  policy.Node[K, V]
}

func (h *mockHooks[K, V]) MoveToFront(n policy.Node[K, V]) { h.moveToFrontCnt++; h.lastMove = n }
func (h *mockHooks[K, V]) PushFront(n policy.Node[K, V])   { h.pushFrontCnt++; h.lastPush = n }
func (h *mockHooks[K, V]) Remove(n policy.Node[K, V])      { h.removeCnt++; h.lastRem = n }
func (h *mockHooks[K, V]) Back() policy.Node[K, V]         { return nil }
func (h *mockHooks[K, V]) Len() int                        { return 0 }

// OnAdd should push the node to MRU and never propose an eviction: LRU
// delegates capacity enforcement entirely to the shard.
func TestLRU_OnAdd_PushFrontAndNoEvict(t *testing.T) {
	t.Parallel()

	h := &mockHooks[string, int]{}
	p := New[string, int]().New(h)

	n := &testNode[string, int]{k: "k1", v: 1}
	if ev := p.OnAdd(n); ev != nil {
		t.Fatalf("OnAdd must not return an evict candidate for LRU, got %v", ev)
	}
	if h.pushFrontCnt != 1 || h.lastPush != policy.Node[string, int](n) {
		t.Fatalf("OnAdd must call PushFront exactly once with the node")
	}
	if h.moveToFrontCnt != 0 || h.removeCnt != 0 {
		t.Fatalf("OnAdd must not call MoveToFront/Remove")
	}
}

func TestLRU_OnGet_PromotesToFront(t *testing.T) {
	t.Parallel()

	h := &mockHooks[string, int]{}
	p := New[string, int]().New(h)
	n := &testNode[string, int]{k: "k1", v: 1}

	p.OnGet(n)
	if h.moveToFrontCnt != 1 || h.lastMove != policy.Node[string, int](n) {
		t.Fatalf("OnGet must call MoveToFront exactly once with the node")
	}
}

func TestLRU_OnUpdate_PromotesToFront(t *testing.T) {
	t.Parallel()

	h := &mockHooks[string, int]{}
	p := New[string, int]().New(h)
	n := &testNode[string, int]{k: "k1", v: 1}

	p.OnUpdate(n)
	if h.moveToFrontCnt != 1 {
		t.Fatalf("OnUpdate must promote to MRU (an overwrite counts as an access)")
	}
}

func TestLRU_OnRemove_NoOp(t *testing.T) {
	t.Parallel()

	h := &mockHooks[string, int]{}
	p := New[string, int]().New(h)
	n := &testNode[string, int]{k: "k1", v: 1}

	p.OnRemove(n)
	if h.removeCnt != 0 {
		t.Fatalf("OnRemove is a shard-driven no-op for pure LRU")
	}
}
