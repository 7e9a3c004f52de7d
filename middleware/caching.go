package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// CacheHeaderAdder wraps an http.Handler and adds cache-control headers.
// robots.txt and the generated site are both safe for browsers and CDNs
// to hold on to for a while.
type CacheHeaderAdder struct {
	enabled      bool
	maybe        func(r *http.Request) bool
	next         http.Handler
	maxAge       time.Duration
	immutable    bool
	cachePrivate bool
}

// CacheHeaderAdderConfig configures the caching behavior.
type CacheHeaderAdderConfig struct {
	// Enabled turns the whole thing on.  When false, requests pass through
	// untouched.
	Enabled bool

	// Add cache headers, but only if this returns true.
	Maybe func(r *http.Request) bool

	// Next is the handler to wrap.
	Next http.Handler

	// MaxAge is how long the content should be cached.
	MaxAge time.Duration

	// Immutable indicates that the content will never change.
	// This is useful for versioned or content-addressed assets.
	Immutable bool

	// CachePrivate indicates that the content should only be cached
	// by the browser, not by shared caches (CDNs, proxies).
	CachePrivate bool
}

// NewCacheHeaderAdder creates a new caching middleware.
func NewCacheHeaderAdder(config *CacheHeaderAdderConfig) *CacheHeaderAdder {
	return &CacheHeaderAdder{
		enabled:      config.Enabled,
		maybe:        config.Maybe,
		next:         config.Next,
		maxAge:       config.MaxAge,
		immutable:    config.Immutable,
		cachePrivate: config.CachePrivate,
	}
}

// CacheControl is the header value this adder sets.
func (ch *CacheHeaderAdder) CacheControl() string {
	parts := []string{"public"}
	if ch.cachePrivate {
		parts[0] = "private"
	}
	if maxAgeSeconds := int(ch.maxAge.Seconds()); maxAgeSeconds > 0 {
		parts = append(parts, fmt.Sprintf("max-age=%d", maxAgeSeconds))
	}
	if ch.immutable {
		parts = append(parts, "immutable")
	}
	return strings.Join(parts, ", ")
}

func (ch *CacheHeaderAdder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !ch.enabled || (ch.maybe != nil && !ch.maybe(r)) {
		ch.next.ServeHTTP(w, r)
		return
	}

	ch.next.ServeHTTP(&cachingWriter{ResponseWriter: w, value: ch.CacheControl()}, r)
}

// cachingWriter adds Cache-Control only to responses below 400.
type cachingWriter struct {
	http.ResponseWriter
	value       string
	wroteHeader bool
}

func (cw *cachingWriter) WriteHeader(code int) {
	if !cw.wroteHeader {
		cw.wroteHeader = true
		if code < http.StatusBadRequest {
			cw.Header().Set("Cache-Control", cw.value)
		}
	}
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *cachingWriter) Write(b []byte) (int, error) {
	if !cw.wroteHeader {
		cw.WriteHeader(http.StatusOK)
	}
	return cw.ResponseWriter.Write(b)
}

func (cw *cachingWriter) Unwrap() http.ResponseWriter {
	return cw.ResponseWriter
}
