// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/docpages/internal/apperr"
	"github.com/starford/docpages/internal/markdown"
	"github.com/starford/docpages/internal/mcpserver"
	"github.com/starford/docpages/internal/pages"
	"github.com/starford/docpages/internal/sitemap"
	"github.com/starford/docpages/internal/sse"
	"github.com/starford/docpages/internal/storage"
	"github.com/starford/docpages/internal/watch"
	"github.com/starford/docpages/internal/web"
)

func newApplication(opts []Option) (*application, error) {
	app := &application{logOutput: os.Stdout, version: "dev"}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// logger initializes the structured JSON logger and makes it the default.
func (a *application) logger() *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(a.logOutput, &slog.HandlerOptions{
		Level: a.config.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// pipeline builds the page service from configuration.
func (a *application) pipeline(logger *slog.Logger) (*pages.Service, *storage.FS, error) {
	cfg := a.config

	store, err := storage.NewFS(cfg.Content.Root)
	if err != nil {
		return nil, nil, fmt.Errorf("init storage: %w", err)
	}

	tree := sitemap.New(cfg.SiteMap)
	renderer := markdown.New(markdown.Options{HighlightStyle: cfg.Markdown.HighlightStyle})
	return pages.NewService(tree, store, renderer, logger), store, nil
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.logger()

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("content_root", cfg.Content.Root),
		slog.Int("pages", len(cfg.SiteMap)),
		slog.Bool("live_reload", cfg.LiveReload.Enabled),
		slog.String("log_level", cfg.App.LogLevel.String()))

	svc, store, err := app.pipeline(logger)
	if err != nil {
		return err
	}
	if svc.Tree().Len() == 0 {
		logger.Warn("site map is empty; every request will be answered with the not-found page")
	}

	webOpts := web.Options{
		SiteTitle:    cfg.Site.Title,
		PageMaxAge:   cfg.Cache.PageMaxAge,
		StaticMaxAge: cfg.Cache.StaticMaxAge,
		StaticDir:    cfg.Content.StaticPath(),
		Logger:       logger,
	}

	var broker *sse.Broker
	if cfg.LiveReload.Enabled {
		broker = sse.NewBroker(cfg.LiveReload.Throttle)
		defer broker.Close()
		webOpts.Events = broker
	}

	pageRouter, err := web.NewRouter(svc, webOpts)
	if err != nil {
		return fmt.Errorf("init router: %w", err)
	}

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := os.Stat(store.Root()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"content unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/", pageRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	if broker != nil {
		g.Go(func() error {
			err := watch.Watch(gCtx, store.Root(), logger, broker.Notify)
			if err != nil {
				logger.Error("watcher failed; live reload disabled", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP serves the page tools over MCP stdio until stdin closes.
func RunMCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := app.logger()

	svc, _, err := app.pipeline(logger)
	if err != nil {
		return err
	}

	logger.Info("MCP server starting", slog.String("content_root", app.config.Content.Root))
	return mcpserver.New(svc, app.version).ServeStdio()
}

// Render runs the pipeline once for path and writes the rendered HTML to w,
// or the heading list when toc is set.
func Render(ctx context.Context, w io.Writer, path string, toc bool, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := app.logger()

	svc, _, err := app.pipeline(logger)
	if err != nil {
		return err
	}

	page, err := svc.Load(ctx, pages.Request{Path: path})
	if errors.Is(err, apperr.ErrNotFound) {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err != nil {
		return err
	}

	if toc {
		for _, h := range page.Headings {
			if _, err := fmt.Fprintf(w, "- [%s](#%s)\n", h.Text, h.ID); err != nil {
				return err
			}
		}
		return nil
	}
	_, err = io.WriteString(w, page.HTML)
	return err
}
