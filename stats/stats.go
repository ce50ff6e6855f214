// Package stats implements per-request latency aggregation (C7): folding a
// simulator.RequestResult list into total latency, count, mean, and the
// (request_timestamp, latency) sequence sorted by request timestamp.
// Mirrors proj-cache-sim/src/simulator.rs's compute_statistics.
package stats

import (
	"sort"

	"github.com/tsunrise/delayed-hits/simtime"
	"github.com/tsunrise/delayed-hits/simulator"
)

// LatencyPoint pairs a request's own timestamp with the latency it
// experienced (completion_timestamp - request_timestamp).
type LatencyPoint struct {
	RequestTimestamp simtime.TimeUnit
	Latency          simtime.TimeUnit
}

// Summary is the aggregate report produced by Summarize.
type Summary struct {
	Count                      int
	TotalLatency               simtime.TimeUnit
	AverageLatency             float64
	LatenciesByTimestampSorted []LatencyPoint
}

// Summarize computes latency statistics over a result list. No percentiles
// or histograms: the core leaves those to higher layers (spec §4.7).
func Summarize[K comparable](results []simulator.RequestResult[K]) Summary {
	points := make([]LatencyPoint, len(results))
	for i, r := range results {
		points[i] = LatencyPoint{
			RequestTimestamp: r.RequestTimestamp,
			Latency:          r.CompletionTimestamp - r.RequestTimestamp,
		}
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].RequestTimestamp < points[j].RequestTimestamp
	})

	var total simtime.TimeUnit
	for _, p := range points {
		total += p.Latency
	}

	avg := 0.0
	if len(points) > 0 {
		avg = float64(total) / float64(len(points))
	}

	return Summary{
		Count:                     len(points),
		TotalLatency:              total,
		AverageLatency:            avg,
		LatenciesByTimestampSorted: points,
	}
}
