// package labrea provides a middleware that provides a tarpit.
//
// A blog gets a steady stream of scanners looking for WordPress and leaked
// dotfiles.  Those requests get a slow, dribbled-out 404 instead of the
// real one, and repeat offenders wait a little longer each time.
package labrea

import (
	"math/rand"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/tech-vexy/blog/dep"
	"github.com/tech-vexy/blog/varz"
)

var tarpitted = varz.NewInt("tarpitted")

type Clock interface {
	Sleep(time.Duration)
}

type Handler struct {
	clock    Clock
	next     http.Handler
	maxDelay time.Duration

	paths map[string]struct{}

	mu      sync.Mutex
	rand    *rand.Rand
	ipCount *lru.Cache[string, int]
}

var _ http.Handler = &Handler{}

// DefaultPaths are matched against the last two segments of the request path.
var DefaultPaths = []string{
	".env",
	".git",
	".htaccess",
	".htpasswd",
	"admin",
	"blog/wp-admin",
	"blog/wp-login.php",
	"cms",
	"config.inc.php",
	"config.php",
	"database",
	"db",
	"dbadmin",
	"install.php",
	"license.txt",
	"myadmin",
	"mysql",
	"phpmyadmin",
	"pma",
	"readme.html",
	"server-status",
	"setup.php",
	"sqladmin",
	"user/login",
	"web/wp-admin",
	"web/wp-includes",
	"web/wp-login.php",
	"wordpress/wp-admin",
	"wordpress/wp-login.php",
	"wp-admin",
	"wp-admin/setup-config.php",
	"wp-includes/wlmanifest.xml",
	"wp-includes/wlwmanifest.xml",
	"wp-login.php",
	"xmlrpc.php",
}

type Config struct {
	Clock Clock
	Next  http.Handler

	// Paths defaults to DefaultPaths.
	Paths []string

	// MaxDelay caps the initial stall; 3s if zero.
	MaxDelay time.Duration

	// TrackedAddrs bounds how many remote addresses are counted; 1000 if zero.
	TrackedAddrs int
}

func New(cf *Config) *Handler {
	paths := cf.Paths
	if paths == nil {
		paths = DefaultPaths
	}
	pathMap := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		pathMap[p] = struct{}{}
	}

	size := cf.TrackedAddrs
	if size <= 0 {
		size = 1000
	}
	ipCount, err := lru.New[string, int](size)
	if err != nil {
		panic(err)
	}

	maxDelay := cf.MaxDelay
	if maxDelay <= 0 {
		maxDelay = 3 * time.Second
	}

	return &Handler{
		clock:    dep.Required(cf.Clock),
		next:     dep.Required(cf.Next),
		maxDelay: maxDelay,
		paths:    pathMap,
		rand:     rand.New(rand.NewSource(time.Now().UnixNano())),
		ipCount:  ipCount,
	}
}

func (h *Handler) countIP(ip string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n, _ := h.ipCount.Get(ip)
	n++
	h.ipCount.Add(ip, n)
	return n
}

func (h *Handler) flush(w http.ResponseWriter) {
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

// remoteHost drops the port, so each new connection from a scanner counts
// against the same address.
func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (h *Handler) Mishandle(w http.ResponseWriter, r *http.Request) {
	tarpitted.Add(1)
	minimum := time.Duration(11*h.countIP(remoteHost(r))) * time.Millisecond
	h.clock.Sleep(h.randomDelay(minimum, h.maxDelay))

	// Set headers to make it look legitimate
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Server", "Apache")
	w.WriteHeader(http.StatusNotFound)

	payload := []byte(`
<!DOCTYPE HTML PUBLIC "-//IETF//DTD HTML 2.0//EN">
<html><head>
<title>404 Not Found</title>
</head><body>
<h1>Not Found</h1>
<p>The requested URL was not found on this server.</p>
<p>Additionally, a 404 Not Found
error was encountered while trying to use an ErrorDocument to handle the request.</p>
</body></html>
`)

	for pos := 0; pos < len(payload); {
		remainder := len(payload) - pos
		amt := min(10+h.intn(10), remainder)
		if _, err := w.Write(payload[pos : pos+amt]); err != nil {
			return
		}
		pos += amt
		h.flush(w)
		h.clock.Sleep(h.randomDelay(h.maxDelay/30, h.maxDelay/10))
	}
}

func (h *Handler) intn(n int) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.rand.Intn(n)
}

// randomDelay returns a random duration between min and max.  If min is
// not below max, it returns max.
func (h *Handler) randomDelay(min, max time.Duration) time.Duration {
	if min >= max {
		return max
	}
	return min + time.Duration(h.intn(int(max-min)))
}

func last2(path string) string {
	parts := strings.Split(path, "/")
	for len(parts) > 1 && parts[0] == "" {
		parts = parts[1:]
	}
	for len(parts) >= 1 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	if len(parts) == 0 {
		return path
	}
	first := max(0, len(parts)-2)
	return strings.Join(parts[first:], "/")
}

// Trapped reports whether path is one the tarpit answers.
func (h *Handler) Trapped(path string) bool {
	last := last2(path)
	if _, ok := h.paths[last]; ok {
		return true
	}
	// "/wp-admin/css" and "/x/xmlrpc.php" trap as well as "/wp-admin".
	// Bare words like "db" only trap at the front, since /tags/db/ is a
	// reasonable page on a blog.
	if first, rest, ok := strings.Cut(last, "/"); ok {
		if _, trap := h.paths[first]; trap {
			return true
		}
		_, trap := h.paths[rest]
		return trap && strings.Contains(rest, ".")
	}
	return false
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.Trapped(r.URL.Path) {
		h.Mishandle(w, r)
		return
	}

	h.next.ServeHTTP(w, r)
}
