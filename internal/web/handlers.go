package web

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/docpages/internal/apperr"
	"github.com/starford/docpages/internal/checksum"
	"github.com/starford/docpages/internal/models"
	"github.com/starford/docpages/internal/pages"
)

// PageLoader runs the content pipeline for one request.
type PageLoader interface {
	Load(ctx context.Context, req pages.Request) (*models.Page, error)
}

// Handler holds page and API route handlers.
type Handler struct {
	svc        PageLoader
	logger     *slog.Logger
	menu       []models.PageDescriptor
	siteMap    []models.PageDescriptor
	siteTitle  string
	pageMaxAge time.Duration
	liveReload bool
	css        []byte
}

// Page handles GET /*: it renders the page shell for the request path. When
// the path has no page, the request is re-executed on the not-found route
// and answered with 404.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.Load(r.Context(), pages.Request{Path: r.URL.Path})
	switch {
	case err == nil:
		h.writePage(w, r, http.StatusOK, page)
	case errors.Is(err, apperr.ErrNotFound):
		h.notFound(w, r)
	default:
		h.serverError(w, r, err)
	}
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.Load(r.Context(), pages.Request{Path: r.URL.Path, ErrorRoute: true})
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			h.logger.Error("not-found page failed", slog.String("error", err.Error()))
		}
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	}
	h.writePage(w, r, http.StatusNotFound, page)
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	h.logger.Error("page load failed",
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (h *Handler) writePage(w http.ResponseWriter, r *http.Request, status int, page *models.Page) {
	if status == http.StatusOK {
		etag := checksum.ETag([]byte(page.HTML))
		w.Header().Set("ETag", etag)
		w.Header().Set("Cache-Control", cacheControlValue(h.pageMaxAge))
		if !page.LastModified.IsZero() {
			w.Header().Set("Last-Modified", page.LastModified.UTC().Format(http.TimeFormat))
		}
		if checksum.Match(r.Header.Get("If-None-Match"), etag) {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}

	body, err := renderShell(pageView{
		SiteTitle:   h.siteTitle,
		Page:        page,
		Content:     template.HTML(page.HTML),
		Menu:        h.menu,
		CurrentPath: strings.ToLower(page.Descriptor.URL),
		LiveReload:  h.liveReload,
	})
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// GetPage handles GET /api/pages/*.
func (h *Handler) GetPage(w http.ResponseWriter, r *http.Request) {
	path := "/" + strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	page, err := h.svc.Load(r.Context(), pages.Request{Path: path})
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "not found")
			return
		}
		h.logger.Error("api page load failed", slog.String("path", path), slog.String("error", err.Error()))
		h.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.writeJSON(w, http.StatusOK, page)
}

// SiteMap handles GET /api/sitemap.
func (h *Handler) SiteMap(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{"pages": h.siteMap})
}

// ChromaCSS handles GET /static/chroma.css.
func (h *Handler) ChromaCSS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	http.ServeContent(w, r, "chroma.css", time.Time{}, bytes.NewReader(h.css))
}
