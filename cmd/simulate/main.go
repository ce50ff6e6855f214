// Command simulate replays a request trace through the discrete-event cache
// simulator and reports latency statistics, optionally exposing the run's
// counters as Prometheus metrics.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tsunrise/delayed-hits/cache"
	pmet "github.com/tsunrise/delayed-hits/metrics/prom"
	"github.com/tsunrise/delayed-hits/policy/lru"
	"github.com/tsunrise/delayed-hits/policy/lrumad"
	"github.com/tsunrise/delayed-hits/policy/twoq"
	"github.com/tsunrise/delayed-hits/simtime"
	"github.com/tsunrise/delayed-hits/simulator"
	"github.com/tsunrise/delayed-hits/stats"
	"github.com/tsunrise/delayed-hits/trace"
)

func main() {
	var (
		eventPath   = flag.String("events", "", "CSV trace of (key,timestamp_ns) events; empty = synthetic Zipf trace")
		cacheCounts = flag.Int("cache-counts", 1, "number of shards (k for k-way set-associative cache)")
		cacheCap    = flag.Int("cache-capacity", 1000, "cache capacity per shard")
		missLatency = flag.Duration("miss-latency", 10*time.Millisecond, "miss latency, e.g. 5ms")
		policyName  = flag.String("policy", "lru", "eviction policy: lru | 2q | lru-mad")

		warmup      = flag.Int("warmup", 0, "number of leading requests that warm the cache ahead of the --max-requests window (their results are still reported)")
		maxRequests = flag.Int("max-requests", 0, "cap on requests replayed after warmup; 0 = no cap")

		synKeys    = flag.Uint64("syn-keys", 100_000, "synthetic trace keyspace size")
		synZipfS   = flag.Float64("syn-zipf-s", 1.1, "synthetic trace Zipf s (>1)")
		synZipfV   = flag.Float64("syn-zipf-v", 1.0, "synthetic trace Zipf v")
		synMeanIRT = flag.Int64("syn-mean-irt", 1_000_000, "synthetic trace mean inter-request time in nanoseconds")
		synN       = flag.Int("syn-n", 1_000_000, "synthetic trace request count")
		synSeed    = flag.Int64("syn-seed", 1, "synthetic trace RNG seed")

		metricsAddr = flag.String("metrics-addr", "", "serve Prometheus metrics at addr (e.g. :8080); empty = disabled")
	)
	flag.Parse()

	var metrics cache.Metrics
	var latency cache.LatencyRecorder
	if *metricsAddr != "" {
		adapter := pmet.New(prometheus.DefaultRegisterer, "delayed_hits", "simulate", nil)
		metrics, latency = adapter, adapter
		http.Handle("/metrics", promhttp.Handler())
		go func() {
			log.Printf("metrics: serving at %s", *metricsAddr)
			log.Println(http.ListenAndServe(*metricsAddr, nil))
		}()
	}

	src, err := loadTrace(*eventPath, *synN, *synKeys, *synZipfS, *synZipfV, simtime.TimeUnit(*synMeanIRT), *synSeed)
	if err != nil {
		log.Fatalf("simulate: loading trace: %v", err)
	}
	if *warmup > 0 || *maxRequests > 0 {
		src = limitTrace(src, *warmup, *maxRequests)
	}

	missLatencyUnit := simtime.FromDuration(*missLatency)
	pol := buildPolicy(*policyName, *cacheCounts, *cacheCap, missLatencyUnit, metrics)

	results := simulator.Run[uint64](pol, src, missLatencyUnit)
	if latency != nil {
		simulator.Observe[uint64](results, latency)
	}
	summary := stats.Summarize(results)

	fmt.Printf("requests=%d total_latency_ns=%d avg_latency_ns=%.2f\n",
		summary.Count, summary.TotalLatency, summary.AverageLatency)
}

func loadTrace(path string, n int, keyspace uint64, zipfS, zipfV float64, meanIRT simtime.TimeUnit, seed int64) (trace.Source[uint64], error) {
	if path == "" {
		return trace.Synthetic(n, keyspace, zipfS, zipfV, meanIRT, seed), nil
	}
	return trace.FromCSV(path)
}

// limitTrace applies --warmup and --max-requests by passing the first
// warmup events through and truncating after maxRequests further events (0
// means unbounded). Warmup requests still flow through the simulator like any
// other event; only the CDN boundary (package cdn) treats them specially
// by excluding them from results, since trace-driven simulation always
// reports every RequestResult it produces.
func limitTrace(src trace.Source[uint64], warmup, maxRequests int) trace.Source[uint64] {
	return func(yield func(trace.Event[uint64]) bool) {
		i := 0
		for ev := range src {
			if maxRequests > 0 && i-warmup >= maxRequests {
				return
			}
			i++
			if !yield(ev) {
				return
			}
		}
	}
}

func buildPolicy(name string, shardCount, capacity int, missLatency simtime.TimeUnit, metrics cache.Metrics) cache.Policy[uint64, struct{}] {
	newShard := func(int) cache.Policy[uint64, struct{}] {
		switch name {
		case "lru":
			return cache.New[uint64, struct{}](capacity, lru.New[uint64, struct{}](), metrics)
		case "2q":
			return cache.New[uint64, struct{}](capacity, twoq.New[uint64, struct{}](capacity/4, capacity/2), metrics)
		case "lru-mad":
			return lrumad.New[uint64, struct{}](capacity, missLatency)
		default:
			log.Fatalf("simulate: unknown policy %q (use lru, 2q, or lru-mad)", name)
			return nil
		}
	}
	if shardCount <= 1 {
		return newShard(0)
	}
	return cache.NewSharded[uint64, struct{}](shardCount, newShard)
}
