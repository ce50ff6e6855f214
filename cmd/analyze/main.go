// Command analyze reports trace statistics useful for sizing a cache before
// running a full simulation: request count, maximum live-set size, the
// inter-request-time histogram, and the suggested cache size it implies.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/tsunrise/delayed-hits/simtime"
	"github.com/tsunrise/delayed-hits/trace"
)

func main() {
	var (
		eventPath = flag.String("events", "", "CSV trace of (key,timestamp_ns) events; empty = synthetic Zipf trace")

		synKeys    = flag.Uint64("syn-keys", 100_000, "synthetic trace keyspace size, if --events is empty")
		synZipfS   = flag.Float64("syn-zipf-s", 1.1, "synthetic trace Zipf s (>1)")
		synZipfV   = flag.Float64("syn-zipf-v", 1.0, "synthetic trace Zipf v")
		synMeanIRT = flag.Int64("syn-mean-irt", 1_000_000, "synthetic trace mean inter-request time in nanoseconds")
		synN       = flag.Int("syn-n", 1_000_000, "synthetic trace request count")
		synSeed    = flag.Int64("syn-seed", 1, "synthetic trace RNG seed")
	)
	flag.Parse()

	var src trace.Source[uint64]
	if *eventPath != "" {
		s, err := trace.FromCSV(*eventPath)
		if err != nil {
			log.Fatalf("analyze: loading trace: %v", err)
		}
		src = s
	} else {
		src = trace.Synthetic(*synN, *synKeys, *synZipfS, *synZipfV, simtime.TimeUnit(*synMeanIRT), *synSeed)
	}

	a := trace.Analyze[uint64](src)

	fmt.Printf("requests=%d max_live=%d suggested_cache_size=%d\n", a.Requests, a.MaxLive, a.SuggestedCacheSize)
	fmt.Println("inter-request-time histogram (decade buckets, ns):")
	for i, count := range a.IRTBuckets {
		if count == 0 {
			continue
		}
		lo, hi := fmt.Sprintf("1e%d", i), fmt.Sprintf("1e%d", i+1)
		if i == 0 {
			lo = "0"
		}
		if i == len(a.IRTBuckets)-1 {
			hi = "inf"
		}
		fmt.Printf("  [%s, %s): %d\n", lo, hi, count)
	}
}
