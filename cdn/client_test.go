package cdn_test

import (
	"net"
	"testing"
	"time"

	"github.com/tsunrise/delayed-hits/cache"
	"github.com/tsunrise/delayed-hits/cdn"
	"github.com/tsunrise/delayed-hits/policy/lru"
)

// TestRunExperiment_EndToEnd drives a real loopback TCP origin through the
// full sender/proxy/completion pipeline and checks that every request gets
// exactly one result, with completion never preceding request (I2).
func TestRunExperiment_EndToEnd(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go cdn.ServeOrigin(conn)
		}
	}()

	const numConns = 2
	conns, err := cdn.DialPool(ln.Addr().String(), numConns)
	if err != nil {
		t.Fatalf("DialPool: %v", err)
	}

	pol := cache.New[uint64, struct{}](4, lru.New[uint64, struct{}](), nil)
	requests := []uint64{1, 2, 3, 1, 2, 3, 1, 2, 3}

	results, err := cdn.RunExperiment(pol, requests, 0, 0, 2*time.Millisecond, conns)
	if err != nil {
		t.Fatalf("RunExperiment: %v", err)
	}

	if len(results) != len(requests) {
		t.Fatalf("expected %d results, got %d", len(requests), len(results))
	}
	for _, r := range results {
		if r.CompletionTimestamp < r.RequestTimestamp {
			t.Fatalf("completion %d precedes request %d for key %d", r.CompletionTimestamp, r.RequestTimestamp, r.Key)
		}
	}
}

func TestRunExperiment_WarmupRequestsAreExcludedFromResults(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go cdn.ServeOrigin(conn)
		}
	}()

	conns, err := cdn.DialPool(ln.Addr().String(), 1)
	if err != nil {
		t.Fatalf("DialPool: %v", err)
	}

	pol := cache.New[uint64, struct{}](4, lru.New[uint64, struct{}](), nil)
	requests := []uint64{1, 2, 3, 4, 5}

	results, err := cdn.RunExperiment(pol, requests, 2, 1, time.Millisecond, conns)
	if err != nil {
		t.Fatalf("RunExperiment: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 non-warmup results, got %d", len(results))
	}
}
