package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tech-vexy/blog/robots"
)

func TestRobotsTXT(t *testing.T) {
	tests := []struct {
		name     string
		siteURL  string
		wantCode int
		wantBody string
	}{
		{
			name:     "root site",
			siteURL:  "https://example.com/",
			wantCode: http.StatusOK,
			wantBody: "User-agent: *\nAllow: /\n\nSitemap: https://example.com/sitemap-index.xml",
		},
		{
			name:     "subdirectory site",
			siteURL:  "https://example.com/blog/",
			wantCode: http.StatusOK,
			wantBody: "User-agent: *\nAllow: /\n\nSitemap: https://example.com/blog/sitemap-index.xml",
		},
		{
			name:     "missing site URL",
			siteURL:  "",
			wantCode: http.StatusInternalServerError,
			wantBody: "can't build robots.txt: server misconfigured\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := robotsServed.Value()

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/robots.txt", nil)
			RobotsTXT(robots.NewResponder(tt.siteURL)).ServeHTTP(w, r)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantBody, w.Body.String())
			if tt.wantCode == http.StatusOK {
				assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
				assert.Equal(t, before+1, robotsServed.Value())
			} else {
				assert.NotContains(t, w.Body.String(), "Sitemap:")
			}
		})
	}
}
