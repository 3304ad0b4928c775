// File: backend/internal/urlchecker/strategies.go
package urlchecker

import (
	"net/http"
	"net/url"
	"strings"
)

// A strategy is one rung of the fallback ladder. Each derives the URL to
// request from the normalized original via rewrite; returning nil skips the
// rung for that input.
type strategy struct {
	name    string
	method  string
	rewrite func(*url.URL) *url.URL
}

// probeStrategies returns the fixed attempt order: a cheap HEAD, a plain GET,
// the www variants (mutually exclusive by host shape), and finally the same
// host on the other protocol.
func probeStrategies() []strategy {
	return []strategy{
		{name: MethodHead, method: http.MethodHead, rewrite: sameURL},
		{name: MethodGet, method: http.MethodGet, rewrite: sameURL},
		{name: MethodWithWWW, method: http.MethodGet, rewrite: addWWW},
		{name: MethodWithoutWWW, method: http.MethodGet, rewrite: stripWWW},
		{name: MethodSwitchProtocol, method: http.MethodGet, rewrite: switchProtocol},
	}
}

func sameURL(u *url.URL) *url.URL {
	c := *u
	return &c
}

func addWWW(u *url.URL) *url.URL {
	host := u.Hostname()
	if strings.HasPrefix(host, "www.") {
		return nil
	}
	c := *u
	setHost(&c, "www."+host)
	return &c
}

func stripWWW(u *url.URL) *url.URL {
	host := u.Hostname()
	if !strings.HasPrefix(host, "www.") {
		return nil
	}
	c := *u
	setHost(&c, strings.TrimPrefix(host, "www."))
	return &c
}

func switchProtocol(u *url.URL) *url.URL {
	c := *u
	if c.Scheme == "https" {
		c.Scheme = "http"
	} else {
		c.Scheme = "https"
	}
	return &c
}
