package cdn_test

import (
	"testing"

	"github.com/tsunrise/delayed-hits/cdn"
)

func TestParseEndpoint_PortAloneIsServer(t *testing.T) {
	t.Parallel()

	e, err := cdn.ParseEndpoint("12244")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !e.Server || e.Port != 12244 {
		t.Fatalf("expected server mode on port 12244, got %+v", e)
	}
	if e.Addr() != ":12244" {
		t.Fatalf("expected addr \":12244\", got %q", e.Addr())
	}
}

func TestParseEndpoint_IPPortIsClient(t *testing.T) {
	t.Parallel()

	e, err := cdn.ParseEndpoint("127.0.0.1:12244")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Server {
		t.Fatalf("expected client mode, got server")
	}
	if e.Addr() != "127.0.0.1:12244" {
		t.Fatalf("expected addr \"127.0.0.1:12244\", got %q", e.Addr())
	}
}

func TestParseEndpoint_RejectsGarbage(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"", "a:b:c", "not-a-port", "256.256.256.256:12244"} {
		if _, err := cdn.ParseEndpoint(s); err == nil {
			t.Fatalf("expected error for input %q", s)
		}
	}
}
