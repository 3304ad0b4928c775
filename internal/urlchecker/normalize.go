// File: backend/internal/urlchecker/normalize.go
package urlchecker

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// Normalize trims the input, prepends https:// when no http(s) scheme is
// present, and parses the result. It never touches the network. A non-nil
// error means the input cannot be probed and must surface as an
// "Invalid URL" result.
func Normalize(raw string) (*url.URL, error) {
	candidate := strings.TrimSpace(raw)
	if !hasHTTPScheme(candidate) {
		candidate = "https://" + candidate
	}

	u, err := url.Parse(candidate)
	if err != nil {
		return nil, fmt.Errorf("parsing %q: %w", candidate, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return nil, fmt.Errorf("missing host in %q", candidate)
	}
	if ascii, err := idna.ToASCII(host); err == nil {
		host = ascii
	}
	if !validHostname(host) {
		return nil, fmt.Errorf("invalid host %q", host)
	}
	setHost(u, host)
	return u, nil
}

func hasHTTPScheme(s string) bool {
	ls := strings.ToLower(s)
	return strings.HasPrefix(ls, "http://") || strings.HasPrefix(ls, "https://")
}

// validHostname accepts IP literals and dot-separated labels of letters,
// digits, hyphens and underscores. url.Parse alone is too permissive here:
// it lets sub-delims like "!" through, and those inputs must fail validation
// rather than leak to the network.
func validHostname(host string) bool {
	if net.ParseIP(host) != nil {
		return true
	}
	host = strings.TrimSuffix(host, ".")
	if host == "" || len(host) > 253 {
		return false
	}
	for _, label := range strings.Split(host, ".") {
		if label == "" || len(label) > 63 {
			return false
		}
		for _, r := range label {
			switch {
			case r >= 'a' && r <= 'z':
			case r >= '0' && r <= '9':
			case r == '-' || r == '_':
			default:
				return false
			}
		}
	}
	return true
}

// setHost replaces u's host while keeping any port, re-bracketing IPv6
// literals as needed.
func setHost(u *url.URL, host string) {
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	if port := u.Port(); port != "" {
		u.Host = host + ":" + port
	} else {
		u.Host = host
	}
}
