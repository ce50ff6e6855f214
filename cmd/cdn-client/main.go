// Command cdn-client drives the toy CDN client (C8): it replays a trace's
// keys against a real origin over TCP, pacing requests to a fixed
// inter-request time and reporting the same latency statistics package
// stats produces for an in-process simulation.
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
	"github.com/tsunrise/delayed-hits/cdn"
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
		eventPath   = flag.String("events", "", "CSV trace of (key,timestamp_ns) events; required")
		connect     = flag.String("connect", "", "origin address to dial, <ip>:<port>")
		numConns    = flag.Int("num-connections", 8, "number of TCP connections to the origin")
		cacheCap    = flag.Int("cache-capacity", 1000, "cache capacity")
		policyName  = flag.String("policy", "lru", "eviction policy: lru | 2q | lru-mad")
		missLatency = flag.Duration("miss-latency", 10*time.Millisecond, "miss latency assumed during warmup")
		warmup      = flag.Int("warmup", 0, "number of leading requests used only to warm the cache, not sent to the origin")
		irt         = flag.Duration("irt", time.Millisecond, "inter-request time the sender paces to")
		metricsAddr = flag.String("metrics-addr", "", "serve Prometheus metrics at addr (e.g. :8080); empty = disabled")
	)
	flag.Parse()

	var metrics cache.Metrics
	var latency cache.LatencyRecorder
	if *metricsAddr != "" {
		adapter := pmet.New(prometheus.DefaultRegisterer, "delayed_hits", "cdn_client", nil)
		metrics, latency = adapter, adapter
		http.Handle("/metrics", promhttp.Handler())
		go func() {
			log.Printf("metrics: serving at %s", *metricsAddr)
			log.Println(http.ListenAndServe(*metricsAddr, nil))
		}()
	}

	if *eventPath == "" {
		log.Fatal("cdn-client: --events is required")
	}
	src, err := trace.FromCSV(*eventPath)
	if err != nil {
		log.Fatalf("cdn-client: loading trace: %v", err)
	}
	var keys []uint64
	for ev := range src {
		keys = append(keys, ev.Key)
	}

	if *connect == "" {
		log.Fatal("cdn-client: --connect is required")
	}
	endpoint, err := cdn.ParseEndpoint(*connect)
	if err != nil {
		log.Fatalf("cdn-client: %v", err)
	}
	if endpoint.Server {
		log.Fatalf("cdn-client: --connect must be <ip>:<port>; got %s", endpoint.Addr())
	}

	conns, err := cdn.DialPool(endpoint.Addr(), *numConns)
	if err != nil {
		log.Fatalf("cdn-client: %v", err)
	}

	missLatencyUnit := simtime.FromDuration(*missLatency)
	pol := buildPolicy(*policyName, *cacheCap, missLatencyUnit, metrics)

	results, err := cdn.RunExperiment(pol, keys, *warmup, missLatencyUnit, *irt, conns)
	if err != nil {
		log.Fatalf("cdn-client: %v", err)
	}
	if latency != nil {
		simulator.Observe[uint64](results, latency)
	}

	summary := stats.Summarize(results)
	fmt.Printf("requests=%d total_latency_ns=%d avg_latency_ns=%.2f\n",
		summary.Count, summary.TotalLatency, summary.AverageLatency)
}

func buildPolicy(name string, capacity int, missLatency simtime.TimeUnit, metrics cache.Metrics) cache.Policy[uint64, struct{}] {
	switch name {
	case "lru":
		return cache.New[uint64, struct{}](capacity, lru.New[uint64, struct{}](), metrics)
	case "2q":
		return cache.New[uint64, struct{}](capacity, twoq.New[uint64, struct{}](capacity/4, capacity/2), metrics)
	case "lru-mad":
		return lrumad.New[uint64, struct{}](capacity, missLatency)
	default:
		log.Fatalf("cdn-client: unknown policy %q (use lru, 2q, or lru-mad)", name)
		return nil
	}
}
