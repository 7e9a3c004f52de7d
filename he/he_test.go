package he

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tech-vexy/blog/siteurl"
)

func TestSendErrorToHTTPClient(t *testing.T) {
	_, cfgErr := siteurl.Parse("")

	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{
			name:     "coded error",
			err:      HTTPCodedErrorf(http.StatusNotFound, "no page %q", "x"),
			wantCode: http.StatusNotFound,
			wantBody: "can't fetch: no page \"x\"\n",
		},
		{
			name:     "wrapped coded error",
			err:      fmt.Errorf("outer: %w", HTTPCodedErrorf(http.StatusBadRequest, "bad")),
			wantCode: http.StatusBadRequest,
			wantBody: "can't fetch: outer: bad\n",
		},
		{
			name:     "configuration fault hides details",
			err:      fmt.Errorf("resolving: %w", cfgErr),
			wantCode: http.StatusInternalServerError,
			wantBody: "can't fetch: server misconfigured\n",
		},
		{
			name:     "plain error",
			err:      errors.New("boom"),
			wantCode: http.StatusInternalServerError,
			wantBody: "can't fetch: boom\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			SendErrorToHTTPClient(w, "fetch", tt.err)
			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantBody, w.Body.String())
		})
	}
}
