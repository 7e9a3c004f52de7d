package middleware

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/tech-vexy/blog/varz"
)

var responseCodes = varz.NewMap("responseCodes")

type Clock interface {
	Now() time.Time
	Since(time.Time) time.Duration
}

// RequestLogger is a middleware that writes one access-log line per request.
type RequestLogger struct {
	next   http.Handler
	clock  Clock
	logger *log.Logger
}

// NewRequestLogger logs through the standard logger unless logger is given.
func NewRequestLogger(next http.Handler, clock Clock, logger *log.Logger) *RequestLogger {
	if logger == nil {
		logger = log.Default()
	}
	return &RequestLogger{next: next, clock: clock, logger: logger}
}

func remoteAddr(r *http.Request) string {
	if r.Header.Get("X-Forwarded-For") != "" {
		return r.Header.Get("X-Forwarded-For")
	}
	return r.RemoteAddr
}

func (rl *RequestLogger) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := rl.clock.Now()
	ww := &codeWatcher{w: w}
	rl.next.ServeHTTP(ww, r)
	responseCodes.Add(strconv.Itoa(ww.Code()), 1)
	rl.logger.Printf("[access log] %d %v %v %v %dB (%v)",
		ww.Code(), remoteAddr(r), r.Method, r.URL.Path, ww.bytes, rl.clock.Since(start))
}
