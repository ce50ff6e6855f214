package cache_test

import (
	"testing"

	"github.com/tsunrise/delayed-hits/cache"
	"github.com/tsunrise/delayed-hits/policy/lru"
)

func TestListShard_WriteThenGet(t *testing.T) {
	t.Parallel()

	c := cache.New[string, int](2, lru.New[string, int](), nil)
	c.Write("a", 1, 0)

	if v, ok := c.Get("a", 1); !ok || v != 1 {
		t.Fatalf("expected hit with value 1, got v=%d ok=%v", v, ok)
	}
	if c.Contains("b") {
		t.Fatalf("b was never written")
	}
}

func TestListShard_EvictsLRUOnOverflow(t *testing.T) {
	t.Parallel()

	c := cache.New[string, int](2, lru.New[string, int](), nil)
	c.Write("a", 1, 0)
	c.Write("b", 2, 1)
	// Touch "a" so "b" becomes the LRU.
	c.Get("a", 2)
	c.Write("c", 3, 3)

	if c.Contains("b") {
		t.Fatalf("b should have been evicted as the least recently used entry")
	}
	if !c.Contains("a") || !c.Contains("c") {
		t.Fatalf("a and c should both remain resident")
	}
}

func TestSharded_RoutesDeterministically(t *testing.T) {
	t.Parallel()

	s := cache.NewSharded[string, int](4, func(int) cache.Policy[string, int] {
		return cache.New[string, int](8, lru.New[string, int](), nil)
	})

	idx1 := s.ShardFor("hello")
	idx2 := s.ShardFor("hello")
	if idx1 != idx2 {
		t.Fatalf("ShardFor must be deterministic for the same key")
	}

	s.Write("hello", 42, 0)
	if v, ok := s.Get("hello", 1); !ok || v != 42 {
		t.Fatalf("expected hit with value 42, got v=%d ok=%v", v, ok)
	}
}

func TestSharded_PanicsOnZeroShards(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Fatalf("expected a panic constructing a 0-shard cache")
		}
	}()
	cache.NewSharded[string, int](0, func(int) cache.Policy[string, int] {
		return cache.New[string, int](1, lru.New[string, int](), nil)
	})
}
