package web

import (
	"bytes"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/docpages/internal/pages"
)

// Options configures the router.
type Options struct {
	SiteTitle    string
	PageMaxAge   time.Duration
	StaticMaxAge time.Duration
	// StaticDir is served under /static/; empty disables static files.
	StaticDir string
	// Events, if non-nil, is mounted at GET /events and enables live reload
	// in the page shell.
	Events http.Handler
	// Logger receives handler errors; nil means slog.Default().
	Logger *slog.Logger
}

// NewRouter creates a chi router with the page, API and static routes.
func NewRouter(svc *pages.Service, opts Options) (chi.Router, error) {
	var css bytes.Buffer
	if err := svc.Renderer().WriteCSS(&css); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	tree := svc.Tree()
	h := &Handler{
		svc:        svc,
		logger:     logger,
		menu:       tree.Menu(),
		siteMap:    tree.Pages(),
		siteTitle:  opts.SiteTitle,
		pageMaxAge: opts.PageMaxAge,
		liveReload: opts.Events != nil,
		css:        css.Bytes(),
	}

	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Get("/sitemap", h.SiteMap)
		r.Get("/pages", h.GetPage)
		r.Get("/pages/*", h.GetPage)
	})

	static := r.With(CacheControl(opts.StaticMaxAge))
	static.Get("/static/chroma.css", h.ChromaCSS)
	if opts.StaticDir != "" {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.Dir(opts.StaticDir)))
		static.Get("/static/*", fileServer.ServeHTTP)
	}

	if opts.Events != nil {
		r.Get("/events", opts.Events.ServeHTTP)
	}

	r.Get("/*", h.Page)

	return r, nil
}
