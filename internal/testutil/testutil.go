// Package testutil provides shared test helpers for setting up content roots
// and page services.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/docpages/internal/markdown"
	"github.com/starford/docpages/internal/models"
	"github.com/starford/docpages/internal/pages"
	"github.com/starford/docpages/internal/sitemap"
	"github.com/starford/docpages/internal/storage"
)

// SiteMap returns a small two-level site map used across tests.
func SiteMap() []models.PageDescriptor {
	return []models.PageDescriptor{
		{Title: "Home", Name: "home", URL: "/", Description: "Start here", ShowInMenu: true},
		{Title: "About", Name: "about", URL: "/about", ShowInMenu: true},
		{
			Title: "Docs", Name: "docs", URL: "/docs", ShowInMenu: true,
			Children: []models.PageDescriptor{
				{Title: "Intro", Name: "intro", URL: "/docs/intro", ShowInMenu: true},
				{Title: "Hidden", Name: "hidden", URL: "/docs/hidden", ShowInMenu: false},
			},
		},
		{Title: "Orphan", Name: "orphan", URL: "/orphan", ShowInMenu: true},
	}
}

// Files returns markdown sources matching SiteMap. /orphan has no file.
func Files() map[string]string {
	return map[string]string{
		"home.md":        "# Welcome\n\nHello.\n\n## Getting started\n",
		"about.md":       "---\ntitle: About us\n---\n# About\n\nWho we are.\n",
		"docs.md":        "# Docs\n\n| a | b |\n|---|---|\n| 1 | 2 |\n",
		"docs/intro.md":  "# Intro\n## Setup {#setup}\n",
		"docs/hidden.md": "# Hidden\n",
		"notfound.md":    "# Not found\n\nSorry.\n",
	}
}

// TestContent creates a temporary content root with the given markdown files
// (paths relative to the markdown directory) and returns it with a provider.
func TestContent(t *testing.T, files map[string]string) (string, *storage.FS) {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(root, storage.MarkdownDir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	store, err := storage.NewFS(root)
	if err != nil {
		t.Fatal(err)
	}
	return root, store
}

// TestService builds a page service over SiteMap and Files.
func TestService(t *testing.T) (*pages.Service, string) {
	t.Helper()
	root, store := TestContent(t, Files())
	svc := pages.NewService(sitemap.New(SiteMap()), store, markdown.New(markdown.Options{}), DiscardLogger())
	return svc, root
}

// DiscardLogger returns a logger that drops all output.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}
