package urlchecker

import (
	"net/http"
	"net/url"
	"testing"
)

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse %s: %v", raw, err)
	}
	return u
}

func TestProbeStrategyOrder(t *testing.T) {
	t.Parallel()

	ladder := probeStrategies()
	wantNames := []string{MethodHead, MethodGet, MethodWithWWW, MethodWithoutWWW, MethodSwitchProtocol}
	if got, want := len(ladder), len(wantNames); got != want {
		t.Fatalf("unexpected ladder length: got %d want %d", got, want)
	}
	for i, s := range ladder {
		if s.name != wantNames[i] {
			t.Fatalf("rung %d: got %q want %q", i, s.name, wantNames[i])
		}
	}
	if got, want := ladder[0].method, http.MethodHead; got != want {
		t.Fatalf("first rung method: got %q want %q", got, want)
	}
	for _, s := range ladder[1:] {
		if s.method != http.MethodGet {
			t.Fatalf("rung %q method: got %q want %q", s.name, s.method, http.MethodGet)
		}
	}
}

func TestAddWWW(t *testing.T) {
	t.Parallel()

	in := mustParse(t, "https://example.com/path")
	got := addWWW(in)
	if got == nil {
		t.Fatal("expected a rewritten URL for a bare host")
	}
	if got.Host != "www.example.com" {
		t.Fatalf("unexpected host: got %q want %q", got.Host, "www.example.com")
	}
	if in.Host != "example.com" {
		t.Fatalf("rewrite must not mutate its input, host is now %q", in.Host)
	}

	if addWWW(mustParse(t, "https://www.example.com")) != nil {
		t.Fatal("expected nil for a host that already has a www prefix")
	}

	withPort := addWWW(mustParse(t, "https://example.com:8443/x"))
	if withPort == nil || withPort.Host != "www.example.com:8443" {
		t.Fatalf("port must survive the rewrite, got %v", withPort)
	}
}

func TestStripWWW(t *testing.T) {
	t.Parallel()

	got := stripWWW(mustParse(t, "https://www.example.com/path"))
	if got == nil {
		t.Fatal("expected a rewritten URL for a www host")
	}
	if got.Host != "example.com" {
		t.Fatalf("unexpected host: got %q want %q", got.Host, "example.com")
	}

	if stripWWW(mustParse(t, "https://example.com")) != nil {
		t.Fatal("expected nil for a host without a www prefix")
	}
}

func TestSwitchProtocol(t *testing.T) {
	t.Parallel()

	got := switchProtocol(mustParse(t, "https://example.com/a?b=c"))
	if got.String() != "http://example.com/a?b=c" {
		t.Fatalf("unexpected URL: got %q", got.String())
	}

	got = switchProtocol(mustParse(t, "http://example.com"))
	if got.Scheme != "https" {
		t.Fatalf("unexpected scheme: got %q want %q", got.Scheme, "https")
	}
}
