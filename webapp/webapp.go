package webapp

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/cors"

	"github.com/tech-vexy/blog/app/handlers"
	"github.com/tech-vexy/blog/assets"
	"github.com/tech-vexy/blog/config"
	"github.com/tech-vexy/blog/dep"
	"github.com/tech-vexy/blog/he"
	"github.com/tech-vexy/blog/middleware"
	"github.com/tech-vexy/blog/middleware/labrea"
	"github.com/tech-vexy/blog/robots"
	"github.com/tech-vexy/blog/site"
	"github.com/tech-vexy/blog/siteurl"
	"github.com/tech-vexy/blog/varz"
)

var (
	unbuiltPageViews = varz.NewInt("unbuiltPageViews")
	shutdownTimeout  = 10 * time.Second
)

type clock interface {
	Now() time.Time
	Since(time.Time) time.Duration
	Sleep(time.Duration)
}

// Config holds the configuration for creating a new App.
type Config struct {
	Settings *config.Config
	Robots   *robots.Responder
	Clock    clock

	// Static is the generator's output tree.  Nil means it hasn't been
	// built, and the base path shows a placeholder page instead.
	Static fs.FS

	// TarpitMaxDelay is handed to labrea; zero uses its default.
	TarpitMaxDelay time.Duration

	// Logger receives access-log lines; nil means the standard logger.
	Logger *log.Logger
}

// App is the blog host.
type App struct {
	templates *template.Template
	static    fs.FS

	// dependencies
	settings *config.Config
	robots   *robots.Responder
	clock    clock

	// internals
	mux     *http.ServeMux
	handler http.Handler
}

func allowedOrigins(siteOrigin string, extra []string) []string {
	r := []string{siteOrigin}
	for _, origin := range extra {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin != "" && origin != siteOrigin {
			r = append(r, origin)
		}
	}
	for _, origin := range r {
		log.Printf("CORS allowing origin %s", origin)
	}
	return r
}

// New creates a new App.  The robots.txt responder is exercised once here,
// so a bad site URL stops startup instead of failing every crawler.
func New(cf *Config) (*App, error) {
	app := &App{
		settings: dep.Required(cf.Settings),
		robots:   dep.Required(cf.Robots),
		clock:    dep.Required(cf.Clock),
		static:   cf.Static,
		mux:      http.NewServeMux(),
	}

	if _, err := app.robots.Respond(); err != nil {
		return nil, fmt.Errorf("checking robots.txt: %w", err)
	}
	origin, err := siteurl.Origin(app.robots.SiteURL())
	if err != nil {
		return nil, err
	}

	if err := app.loadTemplates(); err != nil {
		return nil, err
	}
	app.InstallHandlers()

	// Stack the handlers together.
	var h http.Handler = app.mux
	if app.settings.Build.CheckOrigin {
		h = http.NewCrossOriginProtection().Handler(h)
	}
	h = middleware.NewRequestLogger(h, app.clock, cf.Logger)
	if app.settings.Tarpit {
		h = labrea.New(&labrea.Config{
			Clock:    app.clock,
			Next:     h,
			MaxDelay: cf.TarpitMaxDelay,
		})
	}
	corsMW := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins(origin, app.settings.AllowedOrigins),
		AllowedMethods: []string{http.MethodGet, http.MethodHead},
	})
	app.handler = corsMW.Handler(h)

	return app, nil
}

// Handler returns the configured HTTP handler.
func (app *App) Handler() http.Handler {
	return app.handler
}

func (app *App) cached(maxAge time.Duration, next http.Handler) http.Handler {
	return middleware.NewCacheHeaderAdder(&middleware.CacheHeaderAdderConfig{
		Enabled: app.settings.EnableCaching,
		Next:    next,
		MaxAge:  maxAge,
	})
}

func (app *App) handleUnbuilt(w http.ResponseWriter, r *http.Request) {
	unbuiltPageViews.Add(1)
	data := struct {
		Title       string
		Description string
		DistDir     string
		RobotsURL   string
	}{
		Title:       site.Title,
		Description: site.Description,
		DistDir:     app.settings.DistDir,
		RobotsURL:   "/robots.txt",
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := app.templates.ExecuteTemplate(w, "unbuilt.html.tmpl", data); err != nil {
		log.Printf("can't render unbuilt template: %v", err)
	}
}

// handleNotBuilt answers for pages that will exist once the generator runs.
func (app *App) handleNotBuilt(w http.ResponseWriter, r *http.Request) {
	he.SendErrorToHTTPClient(w, "serve "+r.URL.Path,
		he.HTTPCodedErrorf(http.StatusNotFound, "%s has not been built", app.settings.DistDir))
}

// InstallHandlers registers all HTTP routes.
func (app *App) InstallHandlers() {
	base := app.settings.Build.Base

	// Crawlers only look at the host root, whatever the base path.
	app.mux.Handle("GET /robots.txt", app.cached(app.settings.RobotsMaxAge, handlers.RobotsTXT(app.robots)))

	app.mux.Handle("GET /debug/vars", expvar.Handler())

	if base != "/" {
		app.mux.Handle("GET /{$}", http.RedirectHandler(base, http.StatusFound))
	}

	if app.static == nil {
		app.mux.HandleFunc("GET "+base+"{$}", app.handleUnbuilt)
		app.mux.HandleFunc("GET "+base, app.handleNotBuilt)
		return
	}

	// anything the generator wrote is a file trivially shared
	files := http.FileServerFS(app.static)
	app.mux.Handle("GET "+base, http.StripPrefix(strings.TrimSuffix(base, "/"), app.cached(app.settings.StaticMaxAge, files)))
}

func (app *App) loadTemplates() error {
	var err error
	if app.templates, err = template.New("root").ParseFS(assets.Templates, "templates/*[^~]"); err != nil {
		return fmt.Errorf("loading embedded templates: %w", err)
	}
	return nil
}

// Wrapper to just return the input context.
func contextualizer(ctx context.Context) func(net.Listener) context.Context {
	return func(_ net.Listener) context.Context {
		return ctx
	}
}

// Serve listens on listenAddress and serves until ctx is cancelled or the
// server fails.
func (app *App) Serve(ctx context.Context, listenAddress string) error {
	ln, err := net.Listen("tcp", listenAddress)
	if err != nil {
		return fmt.Errorf("can't listen on %s: %w", listenAddress, err)
	}
	return app.ServeListener(ctx, ln)
}

// ServeListener serves on ln.  Cancelling ctx shuts the server down
// gracefully and returns nil.
func (app *App) ServeListener(ctx context.Context, ln net.Listener) error {
	server := &http.Server{
		Handler:           app.handler,
		BaseContext:       contextualizer(context.WithoutCancel(ctx)),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	ch := make(chan error, 1)
	go func() {
		ch <- server.Serve(ln)
	}()
	log.Printf("serving %s (%s) on %s", site.Title, app.robots.SiteURL(), ln.Addr())

	select {
	case err := <-ch:
		return fmt.Errorf("server exited: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-ch; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server exited: %w", err)
	}
	log.Printf("server stopped")
	return nil
}
