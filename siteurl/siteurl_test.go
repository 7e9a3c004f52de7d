package siteurl

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		base string
		want string
	}{
		{
			name: "root with slash",
			base: "https://example.com/",
			want: "https://example.com/sitemap-index.xml",
		},
		{
			name: "root without slash",
			base: "https://example.com",
			want: "https://example.com/sitemap-index.xml",
		},
		{
			name: "subdirectory keeps its path",
			base: "https://example.com/blog/",
			want: "https://example.com/blog/sitemap-index.xml",
		},
		{
			name: "last segment without slash is replaced",
			base: "https://example.com/blog",
			want: "https://example.com/sitemap-index.xml",
		},
		{
			name: "query and fragment are dropped",
			base: "https://example.com/blog/?a=b#top",
			want: "https://example.com/blog/sitemap-index.xml",
		},
		{
			name: "port is kept",
			base: "http://localhost:4321/",
			want: "http://localhost:4321/sitemap-index.xml",
		},
		{
			name: "international host becomes punycode",
			base: "https://bücher.de/",
			want: "https://xn--bcher-kva.de/sitemap-index.xml",
		},
		{
			name: "host is lowercased",
			base: "https://Example.COM/Blog/",
			want: "https://example.com/Blog/sitemap-index.xml",
		},
		{
			name: "default https port is dropped",
			base: "https://example.com:443/",
			want: "https://example.com/sitemap-index.xml",
		},
		{
			name: "default http port is dropped",
			base: "http://example.com:80/blog/",
			want: "http://example.com/blog/sitemap-index.xml",
		},
		{
			name: "non-default port is kept",
			base: "https://example.com:80/",
			want: "https://example.com:80/sitemap-index.xml",
		},
		{
			name: "ipv6 literal",
			base: "http://[::1]:80/",
			want: "http://[::1]/sitemap-index.xml",
		},
		{
			name: "ipv6 literal with port",
			base: "http://[::1]:4321/",
			want: "http://[::1]:4321/sitemap-index.xml",
		},
		{
			name: "surrounding whitespace is ignored",
			base: "  https://example.com/blog/\n",
			want: "https://example.com/blog/sitemap-index.xml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.base, "sitemap-index.xml")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRejects(t *testing.T) {
	for _, raw := range []string{
		"",
		"  \t",
		"example.com",
		"/blog/",
		"sitemap-index.xml",
		"http://[::1",
		"mailto:someone@example.com",
	} {
		t.Run(fmt.Sprintf("%q", raw), func(t *testing.T) {
			_, err := Parse(raw)
			require.Error(t, err)

			var ice *InvalidConfigurationError
			require.True(t, errors.As(err, &ice), "want InvalidConfigurationError, got %T", err)
			assert.Equal(t, Setting, ice.Setting)
			assert.Equal(t, raw, ice.Value)
		})
	}
}

func TestResolveWrappedError(t *testing.T) {
	_, err := Resolve("", "sitemap-index.xml")
	wrapped := fmt.Errorf("building robots.txt: %w", err)

	var ice *InvalidConfigurationError
	assert.True(t, errors.As(wrapped, &ice))
	assert.Contains(t, wrapped.Error(), "not set")
}

func TestOrigin(t *testing.T) {
	for raw, want := range map[string]string{
		"https://tech-vexy.github.io/blog/": "https://tech-vexy.github.io",
		"https://Tech-Vexy.GitHub.io:443/":  "https://tech-vexy.github.io",
		"https://bücher.de/":                "https://xn--bcher-kva.de",
	} {
		got, err := Origin(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}
}
