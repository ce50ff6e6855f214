package trace

import "github.com/tsunrise/delayed-hits/simtime"

// Analysis is the report produced by Analyze, matching spec §6's `analyze`
// CLI sketch: request count, peak live-object count, an IRT histogram
// bucketed by powers of ten, and a suggested cache size.
type Analysis struct {
	Requests int
	MaxLive  int
	// IRTBuckets[i] counts inter-request gaps in [10^i, 10^(i+1)) ns.
	// Bucket 0 additionally absorbs a gap of exactly 0, and the last bucket
	// additionally absorbs every gap of 10^irtBucketCount ns or more.
	IRTBuckets []int
	// SuggestedCacheSize is ceil(0.05 * MaxLive), per spec §6.
	SuggestedCacheSize int
}

// irtBucketCount covers ns..10^9 ns (1 second) in decade buckets, per
// spec §6 ("IRT distribution bucketed by powers of ten (ns..10^9 ns)").
const irtBucketCount = 10

// Analyze walks a finite Source once, computing request count, the maximum
// number of concurrently "live" keys, and an IRT histogram.
//
// A key is live from its first occurrence up to and including its last
// occurrence in the trace. MaxLive is found with a two-pass scan: the first
// pass records, for each trace index, which keys have their last occurrence
// there; the second sweeps forward maintaining the live set, counting a key
// as live through the step of its last occurrence and dropping it
// immediately after.
func Analyze[K comparable](src Source[K]) Analysis {
	var events []Event[K]
	for e := range src {
		events = append(events, e)
	}

	lastIdx := make(map[K]int, len(events))
	for i, e := range events {
		lastIdx[e.Key] = i
	}
	expiresAt := make([][]K, len(events))
	for k, idx := range lastIdx {
		expiresAt[idx] = append(expiresAt[idx], k)
	}

	live := make(map[K]struct{}, len(events))
	maxLive := 0
	buckets := make([]int, irtBucketCount)
	var lastTimestamp simtime.TimeUnit
	haveLast := false

	for i, e := range events {
		live[e.Key] = struct{}{}
		if len(live) > maxLive {
			maxLive = len(live)
		}
		for _, k := range expiresAt[i] {
			delete(live, k)
		}

		if haveLast {
			gap := int64(e.Timestamp) - int64(lastTimestamp)
			if gap < 0 {
				gap = 0
			}
			buckets[decadeBucket(gap)]++
		}
		lastTimestamp = e.Timestamp
		haveLast = true
	}

	return Analysis{
		Requests:           len(events),
		MaxLive:            maxLive,
		IRTBuckets:         buckets,
		SuggestedCacheSize: suggestedCacheSize(maxLive),
	}
}

func decadeBucket(gapNS int64) int {
	if gapNS <= 0 {
		return 0
	}
	b := 0
	for gapNS >= 10 && b < irtBucketCount-1 {
		gapNS /= 10
		b++
	}
	return b
}

func suggestedCacheSize(maxLive int) int {
	size := (maxLive*5 + 99) / 100 // ceil(0.05 * maxLive)
	if size < 1 {
		size = 1
	}
	return size
}
