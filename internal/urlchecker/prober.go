// File: backend/internal/urlchecker/prober.go
package urlchecker

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"

	"github.com/statusflowhq/statusflow/backend/internal/config"
	"github.com/statusflowhq/statusflow/backend/internal/dnschecker"
	"github.com/statusflowhq/statusflow/backend/internal/monitoring"
)

const (
	defaultUserAgent = "StatusFlowChecker/1.0"
	maxDrainBytes    = 512 * 1024
)

// Prober validates a single URL and walks the strategy chain until a
// conclusive answer is found. One Prober is safe for concurrent use; all
// probes share its HTTP client.
type Prober struct {
	cfg     config.CheckerConfig
	client  *http.Client
	dns     *dnschecker.Checker
	metrics *monitoring.Metrics
}

// NewProber builds a Prober with its own HTTP client. dns and metrics may be
// nil: without dns, unreachable results skip the resolution diagnosis;
// without metrics, nothing is recorded.
func NewProber(cfg config.CheckerConfig, dns *dnschecker.Checker, metrics *monitoring.Metrics) *Prober {
	applyCheckerDefaults(&cfg)
	return &Prober{cfg: cfg, client: newHTTPClient(cfg), dns: dns, metrics: metrics}
}

// NewProberWithClient is like NewProber but probes through the supplied
// client instead of building one.
func NewProberWithClient(cfg config.CheckerConfig, client *http.Client, dns *dnschecker.Checker, metrics *monitoring.Metrics) *Prober {
	applyCheckerDefaults(&cfg)
	return &Prober{cfg: cfg, client: client, dns: dns, metrics: metrics}
}

func applyCheckerDefaults(cfg *config.CheckerConfig) {
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = time.Duration(config.DefaultAttemptTimeoutSeconds) * time.Second
	}
	if cfg.MaxRedirects <= 0 {
		cfg.MaxRedirects = config.DefaultMaxRedirects
	}
}

func newHTTPClient(cfg config.CheckerConfig) *http.Client {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		log.Printf("Prober: cookie jar init failed, continuing without one: %v", err)
		jar = nil
	}
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     30 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	if cfg.AllowInsecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	maxRedirects := cfg.MaxRedirects
	return &http.Client{
		Transport: transport,
		Jar:       jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}

// Check validates and probes one URL. It always returns a terminal result,
// never an error: a URL that cannot be reached is data, not a fault.
func (p *Prober) Check(ctx context.Context, rawURL string) StatusResult {
	start := time.Now()
	normalized, err := Normalize(rawURL)
	if err != nil {
		return StatusResult{
			OriginalURL:    rawURL,
			FinalURL:       strings.TrimSpace(rawURL),
			Status:         http.StatusBadRequest,
			StatusText:     StatusTextInvalidURL,
			ResponseTimeMs: time.Since(start).Milliseconds(),
			Error:          "Invalid URL format",
			MethodUsed:     MethodValidation,
		}
	}
	return p.probe(ctx, rawURL, normalized, start)
}

// attemptOutcome captures an HTTP response seen on the way down the chain.
type attemptOutcome struct {
	strategy string
	status   int
	finalURL string
}

func (o *attemptOutcome) success() bool {
	return o.status >= 200 && o.status < 400
}

func (p *Prober) probe(ctx context.Context, original string, normalized *url.URL, start time.Time) StatusResult {
	var (
		best    *attemptOutcome
		lastErr error
	)
	for _, s := range probeStrategies() {
		target := s.rewrite(normalized)
		if target == nil {
			continue
		}
		outcome, err := p.attempt(ctx, s, target)
		if err != nil {
			lastErr = err
			p.metrics.ObserveProbeAttempt(s.name, "error")
			if ctx.Err() != nil {
				break
			}
			continue
		}
		if outcome.success() {
			p.metrics.ObserveProbeAttempt(s.name, "success")
			return StatusResult{
				OriginalURL:    original,
				FinalURL:       outcome.finalURL,
				Status:         outcome.status,
				StatusText:     statusText(outcome.status),
				ResponseTimeMs: time.Since(start).Milliseconds(),
				MethodUsed:     s.name,
			}
		}
		p.metrics.ObserveProbeAttempt(s.name, "rejected")
		if best == nil || outcome.status < best.status {
			best = outcome
		}
	}

	elapsed := time.Since(start).Milliseconds()
	if best != nil {
		// A definite HTTP answer, even an unhappy one, beats the generic
		// unreachable sentinel.
		return StatusResult{
			OriginalURL:    original,
			FinalURL:       best.finalURL,
			Status:         best.status,
			StatusText:     statusText(best.status),
			ResponseTimeMs: elapsed,
			MethodUsed:     best.strategy,
		}
	}

	errMsg := "all probe attempts failed"
	if lastErr != nil {
		errMsg = fmt.Sprintf("all probe attempts failed: %v", lastErr)
	}
	if diag := p.dns.Diagnose(ctx, normalized.Hostname()); diag != "" {
		errMsg += " (" + diag + ")"
	}
	return StatusResult{
		OriginalURL:    original,
		FinalURL:       normalized.String(),
		Status:         0,
		StatusText:     StatusTextUnreachable,
		ResponseTimeMs: elapsed,
		Error:          errMsg,
		MethodUsed:     MethodFailed,
	}
}

// attempt performs one request with its own deadline. A non-nil error means
// no HTTP response was obtained at all.
func (p *Prober) attempt(ctx context.Context, s strategy, target *url.URL) (*attemptOutcome, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, p.cfg.AttemptTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, s.method, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("building %s request for %s: %w", s.method, target, err)
	}
	req.Header.Set("User-Agent", p.userAgent())
	for key, value := range p.cfg.DefaultHeaders {
		req.Header.Set(key, value)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", s.method, target, err)
	}
	defer func() {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))
		resp.Body.Close()
	}()

	return &attemptOutcome{
		strategy: s.name,
		status:   resp.StatusCode,
		finalURL: resp.Request.URL.String(),
	}, nil
}

func (p *Prober) userAgent() string {
	if len(p.cfg.UserAgents) == 0 {
		return defaultUserAgent
	}
	return p.cfg.UserAgents[rand.Intn(len(p.cfg.UserAgents))]
}

func statusText(code int) string {
	if text := http.StatusText(code); text != "" {
		return text
	}
	return fmt.Sprintf("Status %d", code)
}
