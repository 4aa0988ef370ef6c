package sitemap

import (
	"strings"

	"github.com/starford/docpages/internal/models"
)

// Kind tags the outcome of a Resolve call.
type Kind int

const (
	// NoMatch means no descriptor matched and no not-found page was requested.
	NoMatch Kind = iota
	// Found means Page holds the matching descriptor from the tree.
	Found
	// NotFound means the not-found error route was requested.
	NotFound
)

func (k Kind) String() string {
	switch k {
	case Found:
		return "found"
	case NotFound:
		return "notfound"
	default:
		return "nomatch"
	}
}

// Resolution is the result of resolving a request path.
type Resolution struct {
	Kind Kind
	Page models.PageDescriptor
}

// Resolve maps a request path to a descriptor. Top-level descriptors are
// searched before any children; the first case-insensitive url match wins.
func (t *Tree) Resolve(requestPath string, errorRoute bool) Resolution {
	if errorRoute {
		return Resolution{Kind: NotFound, Page: NotFoundDescriptor()}
	}

	path := normalize(requestPath)

	for _, p := range t.pages {
		if strings.EqualFold(p.URL, path) {
			return Resolution{Kind: Found, Page: p}
		}
	}

	for _, p := range t.pages {
		for _, c := range p.Children {
			if strings.EqualFold(c.URL, path) {
				return Resolution{Kind: Found, Page: c}
			}
		}
	}

	return Resolution{Kind: NoMatch}
}

func normalize(path string) string {
	if len(path) > 1 && strings.HasSuffix(path, "/") {
		return path[:len(path)-1]
	}
	return path
}
