package simulator_test

import (
	"sort"
	"testing"

	"github.com/tsunrise/delayed-hits/cache"
	"github.com/tsunrise/delayed-hits/policy/lru"
	"github.com/tsunrise/delayed-hits/simtime"
	"github.com/tsunrise/delayed-hits/simulator"
	"github.com/tsunrise/delayed-hits/trace"
)

func newLRU[K comparable](capacity int) cache.Policy[K, struct{}] {
	return cache.New[K, struct{}](capacity, lru.New[K, struct{}](), nil)
}

// alwaysMiss is a stub cache.Policy that never reports a resident key. It
// isolates the simulator's in-flight coalescing and future-completions
// mechanics from any particular eviction policy's residency behavior, which
// is the property the coalescing scenario in this file actually exercises.
type alwaysMiss[K comparable, V any] struct{}

func (alwaysMiss[K, V]) Contains(K) bool                   { return false }
func (alwaysMiss[K, V]) Get(K, simtime.TimeUnit) (V, bool) { var z V; return z, false }
func (alwaysMiss[K, V]) Write(K, V, simtime.TimeUnit)      {}

func ev(key string, ts simtime.TimeUnit) trace.Event[string] {
	return trace.Event[string]{Key: key, Timestamp: ts}
}

// Exercises spec §8's worked end-to-end scenario: capacity 2, L_sim=5, one
// shard, keys {A,B,C}. The subtlety at t=19 is a tie between a request and a
// completion, which the arrival must win.
func TestRun_SmallLRUWorkedScenario(t *testing.T) {
	t.Parallel()

	input := []trace.Event[string]{
		ev("B", 0), ev("A", 1), ev("A", 4), ev("A", 5), ev("B", 7),
		ev("C", 8), ev("A", 9), ev("B", 14), ev("C", 15), ev("A", 19), ev("C", 20),
	}

	want := []simulator.RequestResult[string]{
		{Key: "B", RequestTimestamp: 0, CompletionTimestamp: 5},
		{Key: "A", RequestTimestamp: 1, CompletionTimestamp: 6},
		{Key: "A", RequestTimestamp: 4, CompletionTimestamp: 6},
		{Key: "A", RequestTimestamp: 5, CompletionTimestamp: 6},
		{Key: "B", RequestTimestamp: 7, CompletionTimestamp: 7},
		{Key: "C", RequestTimestamp: 8, CompletionTimestamp: 13},
		{Key: "A", RequestTimestamp: 9, CompletionTimestamp: 9},
		{Key: "B", RequestTimestamp: 14, CompletionTimestamp: 19},
		{Key: "C", RequestTimestamp: 15, CompletionTimestamp: 15},
		{Key: "A", RequestTimestamp: 19, CompletionTimestamp: 19},
		{Key: "C", RequestTimestamp: 20, CompletionTimestamp: 25},
	}

	got := simulator.Run[string](newLRU[string](2), trace.FromSlice(input), 5)
	assertResultsEqual(t, want, got)
}

// alwaysMiss stub cache, L_sim=10: verifies coalescing of arrivals during an in-flight
// fetch, and that a fresh arrival after completion triggers a new fetch.
func TestRun_CoalescingScenario(t *testing.T) {
	t.Parallel()

	input := []trace.Event[string]{
		ev("X", 0), ev("X", 3), ev("X", 7), ev("X", 11), ev("X", 22),
	}
	want := []simulator.RequestResult[string]{
		{Key: "X", RequestTimestamp: 0, CompletionTimestamp: 10},
		{Key: "X", RequestTimestamp: 3, CompletionTimestamp: 10},
		{Key: "X", RequestTimestamp: 7, CompletionTimestamp: 10},
		{Key: "X", RequestTimestamp: 11, CompletionTimestamp: 21},
		{Key: "X", RequestTimestamp: 22, CompletionTimestamp: 32},
	}

	got := simulator.Run[string](alwaysMiss[string, struct{}]{}, trace.FromSlice(input), 10)
	assertResultsEqual(t, want, got)
}

// I1, I8: distinct keys with gaps far larger than L_sim never coalesce, and
// every request produces exactly one result.
func TestRun_NoCoalescingWhenGapsExceedMissLatency(t *testing.T) {
	t.Parallel()

	input := []trace.Event[string]{ev("A", 0), ev("B", 100), ev("C", 200)}
	got := simulator.Run[string](newLRU[string](3), trace.FromSlice(input), 5)

	if len(got) != len(input) {
		t.Fatalf("I1: expected %d results, got %d", len(input), len(got))
	}
	for i, r := range got {
		if r.CompletionTimestamp != r.RequestTimestamp+5 {
			t.Fatalf("I8: expected all-miss completion = request+L_sim at index %d, got %+v", i, r)
		}
	}
}

// I2: completion_timestamp >= request_timestamp always.
func TestRun_CompletionNeverPrecedesRequest(t *testing.T) {
	t.Parallel()

	input := []trace.Event[string]{ev("A", 0), ev("A", 1), ev("B", 2), ev("A", 50)}
	got := simulator.Run[string](newLRU[string](1), trace.FromSlice(input), 7)

	for _, r := range got {
		if r.CompletionTimestamp < r.RequestTimestamp {
			t.Fatalf("completion %d precedes request %d for key %s", r.CompletionTimestamp, r.RequestTimestamp, r.Key)
		}
	}
}

// I4: for a fixed key, completion timestamps are non-decreasing when sorted
// by request timestamp.
func TestRun_PerKeyCompletionsNonDecreasing(t *testing.T) {
	t.Parallel()

	input := []trace.Event[string]{
		ev("A", 0), ev("B", 1), ev("A", 2), ev("A", 20), ev("B", 21), ev("A", 40),
	}
	got := simulator.Run[string](newLRU[string](1), trace.FromSlice(input), 10)

	lastCompletion := map[string]simtime.TimeUnit{}
	lastRequest := map[string]simtime.TimeUnit{}
	// Results are not necessarily emitted in request-timestamp order for a
	// given key relative to other keys' events, so bucket by key first.
	byKey := map[string][]simulator.RequestResult[string]{}
	for _, r := range got {
		byKey[r.Key] = append(byKey[r.Key], r)
	}
	for k, rs := range byKey {
		for i := 1; i < len(rs); i++ {
			if rs[i].RequestTimestamp < rs[i-1].RequestTimestamp {
				continue // only ordered pairs matter for I4
			}
			if rs[i].CompletionTimestamp < rs[i-1].CompletionTimestamp {
				t.Fatalf("key %s: completion decreased between %+v and %+v", k, rs[i-1], rs[i])
			}
		}
		_ = lastCompletion
		_ = lastRequest
	}
}

// I1, I5: every arrival yields exactly one result, and a key always routes
// to the same shard regardless of when it's seen.
func TestRun_Sharding16Keys(t *testing.T) {
	t.Parallel()

	s := cache.NewSharded[uint64, struct{}](4, func(int) cache.Policy[uint64, struct{}] {
		return cache.New[uint64, struct{}](1, lru.New[uint64, struct{}](), nil)
	})

	var input []trace.Event[uint64]
	for k := uint64(0); k < 16; k++ {
		input = append(input, trace.Event[uint64]{Key: k, Timestamp: simtime.TimeUnit(k)})
	}

	shardOf := make(map[uint64]int, 16)
	for _, e := range input {
		shardOf[e.Key] = s.ShardFor(e.Key)
	}

	got := simulator.Run[uint64](s, trace.FromSlice(input), 5)
	if len(got) != 16 {
		t.Fatalf("I1: expected 16 results, got %d", len(got))
	}
	for k, idx := range shardOf {
		if got2 := s.ShardFor(k); got2 != idx {
			t.Fatalf("I5: shard routing for key %d changed: %d vs %d", k, idx, got2)
		}
	}
}

// assertResultsEqual compares results sorted by request timestamp (the
// order the spec's own worked-scenario tables present them in, and the
// order stats.Summarize sorts by per §4.7) rather than raw emission order:
// the simulator may emit a hit's result before an earlier-arriving miss's
// completion resolves, since the two are independent events in time.
func assertResultsEqual(t *testing.T, want, got []simulator.RequestResult[string]) {
	t.Helper()
	if len(want) != len(got) {
		t.Fatalf("expected %d results, got %d: %+v", len(want), len(got), got)
	}

	sortByRequestTimestamp(want)
	sortByRequestTimestamp(got)

	for i := range want {
		if want[i] != got[i] {
			t.Fatalf("result %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func sortByRequestTimestamp(rs []simulator.RequestResult[string]) {
	sort.SliceStable(rs, func(i, j int) bool { return rs[i].RequestTimestamp < rs[j].RequestTimestamp })
}
