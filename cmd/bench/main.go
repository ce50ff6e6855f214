// Command bench drives a synthetic Zipf workload directly against a
// cache.Policy (no simulator event loop: every timed Get/Write call uses the
// wall-clock instant it actually runs at; preload writes use timestamp 0)
// and reports raw dispatch
// throughput and hit-rate, optionally exposing pprof and Prometheus
// endpoints for profiling. Adapted from the teacher's cmd/bench/main.go:
// the zipf generator and preload step are kept, the concurrent worker
// pool is not, since cache.Policy (unlike shardcache.Cache) is not
// safe for concurrent access — the simulator and this benchmark are
// both single-threaded callers, per spec §5.
package main

import (
	"flag"
	"log"
	"math/rand"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tsunrise/delayed-hits/cache"
	"github.com/tsunrise/delayed-hits/internal/util"
	pmet "github.com/tsunrise/delayed-hits/metrics/prom"
	"github.com/tsunrise/delayed-hits/policy/lru"
	"github.com/tsunrise/delayed-hits/policy/lrumad"
	"github.com/tsunrise/delayed-hits/policy/twoq"
	"github.com/tsunrise/delayed-hits/simtime"
)

func main() {
	var (
		capacity = flag.Int("cap", 100_000, "cache capacity (entries per shard)")
		shards   = flag.Int("shards", 0, "number of shards (0 = auto, based on CPU parallelism)")
		policy   = flag.String("policy", "lru", "eviction policy: lru | 2q | lru-mad")

		n           = flag.Int("n", 5_000_000, "number of Get/Write calls to issue")
		keys        = flag.Uint64("keys", 1_000_000, "keyspace size")
		zipfS       = flag.Float64("zipf_s", 1.1, "Zipf s > 1 (skew)")
		zipfV       = flag.Float64("zipf_v", 1.0, "Zipf v")
		missLatency = flag.Duration("miss_latency", 10*time.Millisecond, "miss latency hint for lru-mad")
		seed        = flag.Int64("seed", time.Now().UnixNano(), "random seed")
		preload     = flag.Int("preload", 0, "preload entries before timing starts (0 = cap/2)")

		pprofAddr   = flag.String("pprof", "", "serve pprof at addr (e.g. :6060); empty = disabled")
		metricsAddr = flag.String("metrics-addr", "", "serve Prometheus metrics at addr; empty = disabled")
	)
	flag.Parse()

	if *pprofAddr != "" {
		go func() {
			log.Printf("pprof: serving at %s", *pprofAddr)
			log.Println(http.ListenAndServe(*pprofAddr, nil))
		}()
	}

	var metrics cache.Metrics
	if *metricsAddr != "" {
		metrics = pmet.New(prometheus.DefaultRegisterer, "delayed_hits", "bench", nil)
		http.Handle("/metrics", promhttp.Handler())
		go func() {
			log.Printf("metrics: serving at %s", *metricsAddr)
			log.Println(http.ListenAndServe(*metricsAddr, nil))
		}()
	}

	missLatencyUnit := simtime.FromDuration(*missLatency)
	newShard := func(int) cache.Policy[uint64, struct{}] {
		switch *policy {
		case "lru":
			return cache.New[uint64, struct{}](*capacity, lru.New[uint64, struct{}](), metrics)
		case "2q":
			return cache.New[uint64, struct{}](*capacity, twoq.New[uint64, struct{}](*capacity/4, *capacity/2), metrics)
		case "lru-mad":
			return lrumad.New[uint64, struct{}](*capacity, missLatencyUnit)
		default:
			log.Fatalf("bench: unknown policy %q (use lru, 2q, or lru-mad)", *policy)
			return nil
		}
	}

	shardCount := *shards
	if shardCount <= 0 {
		shardCount = util.ReasonableShardCount()
	}
	var pol cache.Policy[uint64, struct{}]
	if shardCount <= 1 {
		pol = newShard(0)
	} else {
		pol = cache.NewSharded[uint64, struct{}](shardCount, newShard)
	}

	pl := *preload
	if pl == 0 {
		pl = *capacity / 2
	}
	for i := 0; i < pl; i++ {
		pol.Write(uint64(i), struct{}{}, 0)
	}

	r := rand.New(rand.NewSource(*seed))
	zipf := rand.NewZipf(r, *zipfS, *zipfV, *keys-1)

	start := time.Now()
	var hits, misses int
	for i := 0; i < *n; i++ {
		key := zipf.Uint64()
		t := simtime.Since(start)
		if _, ok := pol.Get(key, t); ok {
			hits++
		} else {
			pol.Write(key, struct{}{}, t)
			misses++
		}
	}
	elapsed := time.Since(start)

	log.Printf("policy=%s cap=%d shards=%d n=%d keys=%d seed=%d", *policy, *capacity, shardCount, *n, *keys, *seed)
	log.Printf("ran %d calls in %v (%.0f ops/s), hits=%d misses=%d hit-rate=%.2f%%",
		*n, elapsed, float64(*n)/elapsed.Seconds(), hits, misses, float64(hits)/float64(*n)*100)
}
