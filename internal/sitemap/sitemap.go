// Package sitemap holds the immutable page-descriptor tree and resolves
// request paths against it.
package sitemap

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/docpages/internal/models"
)

// NotFoundURL is the url of the descriptor served for the not-found error route.
const NotFoundURL = "notfound"

var urlRe = regexp.MustCompile(`^/\S*$`)

// NotFoundDescriptor returns the descriptor used for the not-found error
// route. It is never part of a configured tree.
func NotFoundDescriptor() models.PageDescriptor {
	return models.PageDescriptor{
		Title: "That page doesn't exist",
		URL:   NotFoundURL,
	}
}

// Tree is the read-only site map built once at startup.
type Tree struct {
	pages []models.PageDescriptor
}

// New builds a Tree from configured descriptors. The input is deep-copied so
// later changes to it are not observed.
func New(pages []models.PageDescriptor) *Tree {
	return &Tree{pages: clonePages(pages)}
}

// Pages returns a copy of the top-level descriptors in configured order.
func (t *Tree) Pages() []models.PageDescriptor {
	return clonePages(t.pages)
}

// Menu returns the descriptors flagged for the navigation menu, with
// hidden children filtered out.
func (t *Tree) Menu() []models.PageDescriptor {
	var out []models.PageDescriptor
	for _, p := range t.pages {
		if !p.ShowInMenu {
			continue
		}
		entry := p
		entry.Children = nil
		for _, c := range p.Children {
			if c.ShowInMenu {
				entry.Children = append(entry.Children, c)
			}
		}
		out = append(out, entry)
	}
	return out
}

// Len returns the number of descriptors in the tree, children included.
func (t *Tree) Len() int {
	n := 0
	for _, p := range t.pages {
		n += 1 + len(p.Children)
	}
	return n
}

func clonePages(in []models.PageDescriptor) []models.PageDescriptor {
	if in == nil {
		return nil
	}
	out := make([]models.PageDescriptor, len(in))
	for i, p := range in {
		out[i] = p
		out[i].Children = clonePages(p.Children)
	}
	return out
}

// ValidatePages validates configured top-level descriptors.
// Children may not have children of their own.
func ValidatePages(pages []models.PageDescriptor) error {
	for _, p := range pages {
		if err := validateDescriptor(p); err != nil {
			return err
		}
		for _, c := range p.Children {
			if err := validateDescriptor(c); err != nil {
				return err
			}
			if len(c.Children) > 0 {
				return validation.Errors{
					c.URL: validation.NewError("validation_sitemap_depth", "site map is limited to two levels"),
				}
			}
		}
	}
	return nil
}

func validateDescriptor(d models.PageDescriptor) error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.URL, validation.Required, validation.Match(urlRe)),
		validation.Field(&d.Title, validation.Length(0, 200)),
	)
}
