// Package siteurl validates the site's base URL and resolves paths against it.
package siteurl

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// Setting is the configuration key the base URL comes from.
const Setting = "site_url"

// InvalidConfigurationError reports a base URL that is missing or not
// absolute, so nothing can be resolved against it.
type InvalidConfigurationError struct {
	Setting string
	Value   string
	Err     error
}

func (e *InvalidConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s %q: %v", e.Setting, e.Value, e.Err)
}

func (e *InvalidConfigurationError) Unwrap() error {
	return e.Err
}

func invalid(raw string, err error) *InvalidConfigurationError {
	return &InvalidConfigurationError{Setting: Setting, Value: raw, Err: err}
}

var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
}

// Parse returns raw as a URL, but only if it has both a scheme and a host.
// Surrounding whitespace is ignored and the host is put in canonical form.
func Parse(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, invalid(raw, errors.New("not set"))
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, invalid(raw, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, invalid(raw, errors.New("not an absolute URL"))
	}
	if u.Host, err = canonicalHost(u); err != nil {
		return nil, invalid(raw, err)
	}
	return u, nil
}

// canonicalHost lowercases the host name, converts international names to
// punycode and drops the scheme's default port.
func canonicalHost(u *url.URL) (string, error) {
	host := strings.ToLower(u.Hostname())
	port := u.Port()
	if port == defaultPorts[u.Scheme] {
		port = ""
	}

	// Only IPv6 literals contain a colon here.
	ipv6 := strings.Contains(host, ":")
	if !ipv6 {
		ascii, err := idna.Lookup.ToASCII(host)
		if err != nil {
			return "", fmt.Errorf("bad host %q: %w", u.Hostname(), err)
		}
		host = ascii
	}

	switch {
	case port != "":
		return net.JoinHostPort(host, port), nil
	case ipv6:
		return "[" + host + "]", nil
	}
	return host, nil
}

// Resolve resolves ref relative to base the way a browser would, so a base
// without a trailing slash loses its last path segment.
func Resolve(base, ref string) (string, error) {
	b, err := Parse(base)
	if err != nil {
		return "", err
	}
	r, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("can't parse reference %q: %w", ref, err)
	}
	return b.ResolveReference(r).String(), nil
}

// Origin returns scheme://host of raw, which is what CORS compares against.
func Origin(raw string) (string, error) {
	u, err := Parse(raw)
	if err != nil {
		return "", err
	}
	return u.Scheme + "://" + u.Host, nil
}
