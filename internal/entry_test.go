package internal

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/starford/docpages/internal/apperr"
	"github.com/starford/docpages/internal/testutil"
)

func renderConfig(t *testing.T) *Config {
	t.Helper()
	root, _ := testutil.TestContent(t, testutil.Files())
	cfg := NewDefaultConfig()
	cfg.Content.Root = root
	cfg.SiteMap = testutil.SiteMap()
	return cfg
}

func TestRender_HTML(t *testing.T) {
	cfg := renderConfig(t)

	var out bytes.Buffer
	err := Render(context.Background(), &out, "/docs/intro", false,
		WithConfig(cfg), WithLogOutput(io.Discard))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out.String(), `<h2 id="setup">Setup</h2>`) {
		t.Errorf("output = %q", out.String())
	}
}

func TestRender_TOC(t *testing.T) {
	cfg := renderConfig(t)

	var out bytes.Buffer
	err := Render(context.Background(), &out, "/", true,
		WithConfig(cfg), WithLogOutput(io.Discard))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := "- [Welcome](#welcome)\n- [Getting started](#getting-started)\n"
	if out.String() != want {
		t.Errorf("toc = %q, want %q", out.String(), want)
	}
}

func TestRender_NotFound(t *testing.T) {
	cfg := renderConfig(t)

	err := Render(context.Background(), io.Discard, "/missing", false,
		WithConfig(cfg), WithLogOutput(io.Discard))
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestRender_RequiresConfig(t *testing.T) {
	if err := Render(context.Background(), io.Discard, "/", false); err == nil {
		t.Error("expected error without config")
	}
}

func TestRender_MissingContentRoot(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Content.Root = "/nonexistent/docpages/root"

	err := Render(context.Background(), io.Discard, "/", false,
		WithConfig(cfg), WithLogOutput(io.Discard))
	if err == nil || !strings.Contains(err.Error(), "init storage") {
		t.Errorf("err = %v", err)
	}
}
