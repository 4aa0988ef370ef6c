// Package pages runs the content pipeline: resolve a request path, locate
// and read its markdown source, render it, and collect its headings.
package pages

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/starford/docpages/internal/apperr"
	"github.com/starford/docpages/internal/markdown"
	"github.com/starford/docpages/internal/models"
	"github.com/starford/docpages/internal/sitemap"
	"github.com/starford/docpages/internal/storage"
)

// Request identifies the page to load.
type Request struct {
	Path string
	// ErrorRoute is set when the hosting layer re-executes a request to
	// render its not-found page.
	ErrorRoute bool
}

// Service coordinates the site map, storage and renderer.
type Service struct {
	tree     *sitemap.Tree
	store    storage.Provider
	renderer *markdown.Renderer
	logger   *slog.Logger
}

// NewService creates a new page service.
func NewService(tree *sitemap.Tree, store storage.Provider, renderer *markdown.Renderer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{tree: tree, store: store, renderer: renderer, logger: logger}
}

// Tree returns the site map the service resolves against.
func (s *Service) Tree() *sitemap.Tree {
	return s.tree
}

// Renderer returns the markdown renderer.
func (s *Service) Renderer() *markdown.Renderer {
	return s.renderer
}

// Sources lists the markdown files under the content root.
func (s *Service) Sources() ([]models.SourceMetadata, error) {
	return s.store.List()
}

// Load runs the pipeline for req. Resolution and lookup failures return
// apperr.ErrNotFound; engine faults return apperr.ErrRenderFailed.
func (s *Service) Load(ctx context.Context, req Request) (*models.Page, error) {
	res := s.tree.Resolve(req.Path, req.ErrorRoute)
	if res.Kind == sitemap.NoMatch {
		s.logger.Debug("pages: no matching page", slog.String("request_path", req.Path))
		return nil, apperr.ErrNotFound
	}

	path, err := s.store.Locate(res.Page.URL)
	if err != nil {
		s.logger.Warn("pages: unsafe page url",
			slog.String("url", res.Page.URL),
			slog.String("error", err.Error()))
		return nil, apperr.ErrNotFound
	}

	modified, err := s.store.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, storage.ErrPathEscape) {
			s.logger.Debug("pages: missing content file", slog.String("url", res.Page.URL))
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("pages: stat %s: %w", res.Page.URL, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("pages: read %s: %w", res.Page.URL, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	meta, body := splitFrontMatter(data)

	out, err := s.renderer.Render(string(body))
	if err != nil {
		s.logger.Error("pages: render failed",
			slog.String("url", res.Page.URL),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %s: %v", apperr.ErrRenderFailed, res.Page.URL, err)
	}

	return &models.Page{
		Descriptor:   res.Page,
		HTML:         out.HTML,
		Headings:     markdown.ExtractHeadings(out.Document, out.Source),
		LastModified: modified,
		Meta:         meta,
		NotFound:     res.Kind == sitemap.NotFound,
	}, nil
}
