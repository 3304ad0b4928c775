package urlchecker

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/statusflowhq/statusflow/backend/internal/config"
)

// fakeTransport records every request and answers via respond. Responses must
// carry Request, the way the real transport populates it.
type fakeTransport struct {
	mu       sync.Mutex
	requests []string
	respond  func(req *http.Request) (*http.Response, error)
}

func (ft *fakeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ft.mu.Lock()
	ft.requests = append(ft.requests, req.Method+" "+req.URL.String())
	ft.mu.Unlock()
	return ft.respond(req)
}

func (ft *fakeTransport) seen() []string {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	return append([]string(nil), ft.requests...)
}

func newResponse(req *http.Request, status int) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader("")),
		Header:     make(http.Header),
		Request:    req,
	}
}

func newRedirectResponse(req *http.Request, location string) *http.Response {
	resp := newResponse(req, http.StatusMovedPermanently)
	resp.Header.Set("Location", location)
	return resp
}

func testProber(ft *fakeTransport) *Prober {
	cfg := config.CheckerConfig{AttemptTimeout: 2 * time.Second, MaxRedirects: 7}
	return NewProberWithClient(cfg, &http.Client{Transport: ft}, nil, nil)
}

func TestCheckSucceedsOnFirstHead(t *testing.T) {
	t.Parallel()

	ft := &fakeTransport{}
	ft.respond = func(req *http.Request) (*http.Response, error) {
		return newResponse(req, http.StatusOK), nil
	}
	p := testProber(ft)

	result := p.Check(context.Background(), "example.com")

	seen := ft.seen()
	if len(seen) != 1 || seen[0] != "HEAD https://example.com" {
		t.Fatalf("unexpected requests: %v", seen)
	}
	if result.Status != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", result.Status, http.StatusOK)
	}
	if result.StatusText != "OK" {
		t.Fatalf("unexpected status text: got %q want %q", result.StatusText, "OK")
	}
	if result.MethodUsed != MethodHead {
		t.Fatalf("unexpected method: got %q want %q", result.MethodUsed, MethodHead)
	}
	if result.FinalURL != "https://example.com" {
		t.Fatalf("unexpected final URL: %q", result.FinalURL)
	}
	if result.Error != "" {
		t.Fatalf("unexpected error: %q", result.Error)
	}
}

func TestCheckFallsBackToGet(t *testing.T) {
	t.Parallel()

	ft := &fakeTransport{}
	ft.respond = func(req *http.Request) (*http.Response, error) {
		if req.Method == http.MethodHead {
			return newResponse(req, http.StatusMethodNotAllowed), nil
		}
		return newResponse(req, http.StatusOK), nil
	}
	p := testProber(ft)

	result := p.Check(context.Background(), "example.com")

	seen := ft.seen()
	want := []string{"HEAD https://example.com", "GET https://example.com"}
	if len(seen) != len(want) || seen[0] != want[0] || seen[1] != want[1] {
		t.Fatalf("unexpected requests: %v", seen)
	}
	if result.Status != http.StatusOK || result.MethodUsed != MethodGet {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestCheckTriesWWWVariant(t *testing.T) {
	t.Parallel()

	ft := &fakeTransport{}
	ft.respond = func(req *http.Request) (*http.Response, error) {
		if req.URL.Hostname() == "www.example.com" {
			return newResponse(req, http.StatusOK), nil
		}
		return nil, errors.New("dial tcp: connection refused")
	}
	p := testProber(ft)

	result := p.Check(context.Background(), "example.com")

	if got := len(ft.seen()); got != 3 {
		t.Fatalf("expected 3 attempts, saw %d: %v", got, ft.seen())
	}
	if result.MethodUsed != MethodWithWWW {
		t.Fatalf("unexpected method: got %q want %q", result.MethodUsed, MethodWithWWW)
	}
	if result.FinalURL != "https://www.example.com" {
		t.Fatalf("unexpected final URL: %q", result.FinalURL)
	}
	if result.OriginalURL != "example.com" {
		t.Fatalf("original URL must stay as given, got %q", result.OriginalURL)
	}
}

func TestCheckStripsWWWForWWWHosts(t *testing.T) {
	t.Parallel()

	ft := &fakeTransport{}
	ft.respond = func(req *http.Request) (*http.Response, error) {
		if req.URL.Hostname() == "example.com" {
			return newResponse(req, http.StatusOK), nil
		}
		return nil, errors.New("dial tcp: connection refused")
	}
	p := testProber(ft)

	result := p.Check(context.Background(), "https://www.example.com")

	for _, r := range ft.seen() {
		if strings.Contains(r, "www.www.") {
			t.Fatalf("www prefix must never be doubled, saw %q", r)
		}
	}
	if result.MethodUsed != MethodWithoutWWW {
		t.Fatalf("unexpected method: got %q want %q", result.MethodUsed, MethodWithoutWWW)
	}
	if result.FinalURL != "https://example.com" {
		t.Fatalf("unexpected final URL: %q", result.FinalURL)
	}
}

func TestCheckSwitchesProtocolLast(t *testing.T) {
	t.Parallel()

	ft := &fakeTransport{}
	ft.respond = func(req *http.Request) (*http.Response, error) {
		if req.URL.Scheme == "http" {
			return newResponse(req, http.StatusOK), nil
		}
		return nil, errors.New("tls: handshake failure")
	}
	p := testProber(ft)

	result := p.Check(context.Background(), "example.com")

	if got := len(ft.seen()); got != 4 {
		t.Fatalf("expected 4 attempts, saw %d: %v", got, ft.seen())
	}
	if result.MethodUsed != MethodSwitchProtocol {
		t.Fatalf("unexpected method: got %q want %q", result.MethodUsed, MethodSwitchProtocol)
	}
	if result.FinalURL != "http://example.com" {
		t.Fatalf("unexpected final URL: %q", result.FinalURL)
	}
}

func TestCheckReportsUnreachableAfterExhaustion(t *testing.T) {
	t.Parallel()

	ft := &fakeTransport{}
	ft.respond = func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("dial tcp: connection refused")
	}
	p := testProber(ft)

	result := p.Check(context.Background(), "example.com")

	if got := len(ft.seen()); got != 4 {
		t.Fatalf("expected 4 attempts for a bare host, saw %d: %v", got, ft.seen())
	}
	if result.Status != 0 {
		t.Fatalf("unexpected status: got %d want 0", result.Status)
	}
	if result.StatusText != StatusTextUnreachable {
		t.Fatalf("unexpected status text: got %q want %q", result.StatusText, StatusTextUnreachable)
	}
	if result.MethodUsed != MethodFailed {
		t.Fatalf("unexpected method: got %q want %q", result.MethodUsed, MethodFailed)
	}
	if result.FinalURL != "https://example.com" {
		t.Fatalf("final URL must fall back to the normalized input, got %q", result.FinalURL)
	}
	if !strings.Contains(result.Error, "all probe attempts failed") {
		t.Fatalf("unexpected error: %q", result.Error)
	}
}

func TestCheckKeepsBestResponseOverUnreachable(t *testing.T) {
	t.Parallel()

	ft := &fakeTransport{}
	ft.respond = func(req *http.Request) (*http.Response, error) {
		switch {
		case req.Method == http.MethodHead:
			return newResponse(req, http.StatusMethodNotAllowed), nil
		case req.URL.Hostname() == "example.com":
			return newResponse(req, http.StatusNotFound), nil
		default:
			return nil, errors.New("dial tcp: connection refused")
		}
	}
	p := testProber(ft)

	result := p.Check(context.Background(), "example.com")

	if result.Status != http.StatusNotFound {
		t.Fatalf("unexpected status: got %d want %d", result.Status, http.StatusNotFound)
	}
	if result.StatusText != "Not Found" {
		t.Fatalf("unexpected status text: %q", result.StatusText)
	}
	if result.MethodUsed != MethodGet {
		t.Fatalf("the lowest status wins, got method %q", result.MethodUsed)
	}
	if result.Error != "" {
		t.Fatalf("a real HTTP answer carries no error, got %q", result.Error)
	}
	if got := Classify(result); got != GroupClientError {
		t.Fatalf("unexpected group: got %q want %q", got, GroupClientError)
	}
}

func TestCheckRejectsInvalidURLWithoutProbing(t *testing.T) {
	t.Parallel()

	ft := &fakeTransport{}
	ft.respond = func(req *http.Request) (*http.Response, error) {
		t.Errorf("no request expected for an invalid URL, saw %s %s", req.Method, req.URL)
		return nil, errors.New("unexpected")
	}
	p := testProber(ft)

	result := p.Check(context.Background(), "  ht!tp://bad  ")

	if result.Status != http.StatusBadRequest {
		t.Fatalf("unexpected status: got %d want %d", result.Status, http.StatusBadRequest)
	}
	if result.StatusText != StatusTextInvalidURL {
		t.Fatalf("unexpected status text: got %q want %q", result.StatusText, StatusTextInvalidURL)
	}
	if result.Error != "Invalid URL format" {
		t.Fatalf("unexpected error: got %q", result.Error)
	}
	if result.MethodUsed != MethodValidation {
		t.Fatalf("unexpected method: got %q want %q", result.MethodUsed, MethodValidation)
	}
	if result.FinalURL != "ht!tp://bad" {
		t.Fatalf("final URL must be the trimmed input, got %q", result.FinalURL)
	}
	if result.OriginalURL != "  ht!tp://bad  " {
		t.Fatalf("original URL must stay as given, got %q", result.OriginalURL)
	}
}

func TestCheckFollowsRedirects(t *testing.T) {
	t.Parallel()

	ft := &fakeTransport{}
	ft.respond = func(req *http.Request) (*http.Response, error) {
		if req.URL.Path == "/landing" {
			return newResponse(req, http.StatusOK), nil
		}
		return newRedirectResponse(req, "/landing"), nil
	}
	p := testProber(ft)

	result := p.Check(context.Background(), "example.com")

	if result.Status != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", result.Status, http.StatusOK)
	}
	if result.FinalURL != "https://example.com/landing" {
		t.Fatalf("final URL must be the redirect target, got %q", result.FinalURL)
	}
	if result.MethodUsed != MethodHead {
		t.Fatalf("redirects stay within one strategy, got method %q", result.MethodUsed)
	}
}

func TestCheckSendsUserAgentAndDefaultHeaders(t *testing.T) {
	t.Parallel()

	var gotUA, gotLang string
	ft := &fakeTransport{}
	ft.respond = func(req *http.Request) (*http.Response, error) {
		gotUA = req.Header.Get("User-Agent")
		gotLang = req.Header.Get("Accept-Language")
		return newResponse(req, http.StatusOK), nil
	}
	cfg := config.CheckerConfig{
		AttemptTimeout: 2 * time.Second,
		UserAgents:     []string{"StatusFlowTest/0.1"},
		DefaultHeaders: map[string]string{"Accept-Language": "en-US,en;q=0.9"},
	}
	p := NewProberWithClient(cfg, &http.Client{Transport: ft}, nil, nil)

	p.Check(context.Background(), "example.com")

	if gotUA != "StatusFlowTest/0.1" {
		t.Fatalf("unexpected User-Agent: %q", gotUA)
	}
	if gotLang != "en-US,en;q=0.9" {
		t.Fatalf("unexpected Accept-Language: %q", gotLang)
	}
}

func TestCheckAccumulatesResponseTime(t *testing.T) {
	t.Parallel()

	ft := &fakeTransport{}
	ft.respond = func(req *http.Request) (*http.Response, error) {
		time.Sleep(25 * time.Millisecond)
		if req.Method == http.MethodHead {
			return nil, errors.New("read: connection reset by peer")
		}
		return newResponse(req, http.StatusOK), nil
	}
	p := testProber(ft)

	result := p.Check(context.Background(), "example.com")

	if result.MethodUsed != MethodGet {
		t.Fatalf("unexpected method: got %q want %q", result.MethodUsed, MethodGet)
	}
	if result.ResponseTimeMs < 50 {
		t.Fatalf("response time must span the whole chain, got %dms", result.ResponseTimeMs)
	}
}

func TestCheckStopsWhenContextCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ft := &fakeTransport{}
	ft.respond = func(req *http.Request) (*http.Response, error) {
		cancel()
		return nil, errors.New("dial tcp: connection refused")
	}
	p := testProber(ft)

	result := p.Check(ctx, "example.com")

	if got := len(ft.seen()); got != 1 {
		t.Fatalf("expected the chain to stop after one attempt, saw %d: %v", got, ft.seen())
	}
	if result.StatusText != StatusTextUnreachable || result.MethodUsed != MethodFailed {
		t.Fatalf("unexpected result: %+v", result)
	}
}
