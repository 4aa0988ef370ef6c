package storage

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

const (
	// MarkdownDir is the directory under the content root holding markdown sources.
	MarkdownDir = "markdown"
	// DefaultSlug is used when a url reduces to an empty slug.
	DefaultSlug = "home"
)

var (
	ErrPathEscape        = errors.New("path escapes markdown root")
	ErrInvalidURLSegment = errors.New("invalid url segment")
)

// Slug strips one leading and one trailing slash from url, substituting
// DefaultSlug when nothing is left.
func Slug(u string) string {
	u = strings.TrimPrefix(u, "/")
	u = strings.TrimSuffix(u, "/")
	if u == "" {
		return DefaultSlug
	}
	return u
}

// Locate composes <contentRoot>/markdown/<slug>.md for a descriptor url and
// returns it as a cleaned absolute path. It does no I/O.
func Locate(u, contentRoot string) (string, error) {
	slug := Slug(u)
	if err := checkSlug(slug); err != nil {
		return "", err
	}

	root, err := filepath.Abs(filepath.Join(contentRoot, MarkdownDir))
	if err != nil {
		return "", fmt.Errorf("storage: resolve root: %w", err)
	}
	return within(root, filepath.Join(root, filepath.FromSlash(slug)+".md"))
}

// checkSlug rejects slugs that cannot form safe path components, including
// separators smuggled in through percent-encoding.
func checkSlug(slug string) error {
	if strings.ContainsAny(slug, "\\\x00") {
		return ErrInvalidURLSegment
	}
	decoded, err := url.PathUnescape(slug)
	if err != nil {
		return ErrInvalidURLSegment
	}
	if strings.ContainsAny(decoded, "\\\x00") || strings.Count(decoded, "/") != strings.Count(slug, "/") {
		return ErrInvalidURLSegment
	}
	return nil
}

// within returns the absolute form of p if it is strictly inside root.
func within(root, p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("storage: resolve path: %w", err)
	}
	if !strings.HasPrefix(abs, root+string(os.PathSeparator)) {
		return "", ErrPathEscape
	}
	return abs, nil
}
