// File: backend/internal/dnschecker/dnschecker.go
package dnschecker

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"strings"
	"time"

	"github.com/miekg/dns"

	"github.com/statusflowhq/statusflow/backend/internal/config"
)

// Resolution outcomes reported in Diagnosis.Status.
const (
	StatusResolved = "Resolved"
	StatusNXDomain = "NXDomain"
	StatusNoAnswer = "NoAnswer"
	StatusError    = "Error"
	StatusTimeout  = "Timeout"
)

// Diagnosis is the answer to "does this host resolve, and to what".
type Diagnosis struct {
	Host        string   `json:"host"`
	Status      string   `json:"status"`
	IPAddresses []string `json:"ipAddresses,omitempty"`
	Resolver    string   `json:"resolver,omitempty"`
	DurationMs  int64    `json:"durationMs"`
	Error       string   `json:"error,omitempty"`
}

// Checker resolves hostnames against the configured resolvers using direct
// DNS queries, bypassing the system stub resolver.
type Checker struct {
	cfg    config.DNSCheckerConfig
	client *dns.Client
}

func New(cfg config.DNSCheckerConfig) *Checker {
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = time.Duration(config.DefaultDNSQueryTimeoutSeconds) * time.Second
	}
	return &Checker{
		cfg:    cfg,
		client: &dns.Client{Timeout: cfg.QueryTimeout},
	}
}

// Resolve queries A then AAAA records for host. Resolvers are tried in
// rotated order until one of them gives a usable answer; only when every
// resolver fails does the Diagnosis carry an error.
func (c *Checker) Resolve(ctx context.Context, host string) Diagnosis {
	start := time.Now()
	diag := Diagnosis{Host: host}

	if ip := net.ParseIP(strings.Trim(host, "[]")); ip != nil {
		diag.Status = StatusResolved
		diag.IPAddresses = []string{ip.String()}
		diag.DurationMs = time.Since(start).Milliseconds()
		return diag
	}

	fqdn := dns.Fqdn(host)
	var lastErr error
	for _, resolver := range c.rotatedResolvers() {
		ips, nxdomain, err := c.queryResolver(ctx, resolver, fqdn)
		if err != nil {
			lastErr = err
			continue
		}
		diag.Resolver = resolver
		diag.DurationMs = time.Since(start).Milliseconds()
		switch {
		case nxdomain:
			diag.Status = StatusNXDomain
		case len(ips) == 0:
			diag.Status = StatusNoAnswer
		default:
			diag.Status = StatusResolved
			diag.IPAddresses = ips
		}
		return diag
	}

	diag.DurationMs = time.Since(start).Milliseconds()
	if isTimeout(lastErr) {
		diag.Status = StatusTimeout
	} else {
		diag.Status = StatusError
	}
	if lastErr != nil {
		diag.Error = lastErr.Error()
	} else {
		diag.Error = "no resolvers configured"
	}
	return diag
}

// queryResolver asks one resolver for A and AAAA records. nxdomain is
// reported separately because it is a definitive answer, not a failure.
func (c *Checker) queryResolver(ctx context.Context, resolver, fqdn string) (ips []string, nxdomain bool, err error) {
	for _, qtype := range []uint16{dns.TypeA, dns.TypeAAAA} {
		msg := new(dns.Msg)
		msg.SetQuestion(fqdn, qtype)
		msg.RecursionDesired = true

		resp, _, err := c.client.ExchangeContext(ctx, msg, resolver)
		if err != nil {
			return nil, false, fmt.Errorf("resolver %s: %w", resolver, err)
		}
		if resp.Rcode == dns.RcodeNameError {
			return nil, true, nil
		}
		if resp.Rcode != dns.RcodeSuccess {
			return nil, false, fmt.Errorf("resolver %s answered %s for %s", resolver, dns.RcodeToString[resp.Rcode], fqdn)
		}
		for _, rr := range resp.Answer {
			switch record := rr.(type) {
			case *dns.A:
				ips = append(ips, record.A.String())
			case *dns.AAAA:
				ips = append(ips, record.AAAA.String())
			}
		}
	}
	return ips, false, nil
}

// rotatedResolvers returns the configured resolvers starting from a random
// offset so load spreads across them between calls.
func (c *Checker) rotatedResolvers() []string {
	resolvers := c.cfg.Resolvers
	if len(resolvers) <= 1 {
		return resolvers
	}
	offset := rand.Intn(len(resolvers))
	rotated := make([]string, 0, len(resolvers))
	rotated = append(rotated, resolvers[offset:]...)
	rotated = append(rotated, resolvers[:offset]...)
	return rotated
}

// Diagnose turns a resolution into a short human-readable hint for
// unreachable-URL errors. It is safe to call on a nil Checker and returns ""
// whenever there is nothing useful to add.
func (c *Checker) Diagnose(ctx context.Context, host string) string {
	if c == nil || !c.cfg.Enabled || host == "" {
		return ""
	}
	diag := c.Resolve(ctx, host)
	switch diag.Status {
	case StatusNXDomain:
		return "host does not resolve (NXDOMAIN)"
	case StatusNoAnswer:
		return "host has no A/AAAA records"
	case StatusResolved:
		return fmt.Sprintf("host resolves to %s but no HTTP response", strings.Join(diag.IPAddresses, ", "))
	case StatusTimeout:
		return "dns lookup timed out"
	default:
		return ""
	}
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
