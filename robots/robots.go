// Package robots builds the site's robots.txt.
//
// The document is a pure function of the site URL: every crawler may fetch
// everything, and the sitemap index produced at build time is advertised by
// its absolute URL.
package robots

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/tech-vexy/blog/siteurl"
)

const (
	// SitemapIndex is the file the sitemap integration writes at the site root.
	SitemapIndex = "sitemap-index.xml"

	ContentType = "text/plain; charset=utf-8"
)

// Document returns the robots.txt body for a site deployed at siteURL.
func Document(siteURL string) (string, error) {
	sitemap, err := siteurl.Resolve(siteURL, SitemapIndex)
	if err != nil {
		return "", fmt.Errorf("resolving sitemap URL: %w", err)
	}
	lines := []string{
		"User-agent: *",
		"Allow: /",
		"",
		"Sitemap: " + sitemap,
	}
	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}

// Response is what a robots.txt request gets back.
type Response struct {
	Status int
	Header http.Header
	Body   string
}

// Send copies the response onto w.
func (r *Response) Send(w http.ResponseWriter) error {
	for k, vs := range r.Header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(r.Status)
	_, err := w.Write([]byte(r.Body))
	return err
}

// Responder produces robots.txt responses for one site URL.  It holds no
// mutable state and can be shared between requests.
type Responder struct {
	siteURL string
}

func NewResponder(siteURL string) *Responder {
	return &Responder{siteURL: siteURL}
}

func (rs *Responder) SiteURL() string {
	return rs.siteURL
}

// Respond builds a fresh response.  A bad site URL is returned as a
// *siteurl.InvalidConfigurationError (possibly wrapped); there is no fallback.
func (rs *Responder) Respond() (*Response, error) {
	body, err := Document(rs.siteURL)
	if err != nil {
		return nil, err
	}
	return &Response{
		Status: http.StatusOK,
		Header: http.Header{"Content-Type": []string{ContentType}},
		Body:   body,
	}, nil
}
