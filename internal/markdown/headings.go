package markdown

import (
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/util"

	"github.com/starford/docpages/internal/models"
)

// ExtractHeadings returns the (id, text) pairs of all headings in doc that
// carry an id, in document order.
func ExtractHeadings(doc ast.Node, source []byte) []models.HeadingLink {
	links := make([]models.HeadingLink, 0)
	if doc == nil {
		return links
	}
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		id := headingID(h)
		if id == "" {
			return ast.WalkSkipChildren, nil
		}
		var b strings.Builder
		flatten(h, source, &b)
		links = append(links, models.HeadingLink{ID: id, Text: strings.TrimSpace(b.String())})
		return ast.WalkSkipChildren, nil
	})
	return links
}

func headingID(h *ast.Heading) string {
	v, ok := h.AttributeString("id")
	if !ok {
		return ""
	}
	switch id := v.(type) {
	case []byte:
		return string(id)
	case string:
		return id
	}
	return ""
}

// flatten appends the plain text of n's inline children to b, with backslash
// escapes and character references resolved. Images and raw HTML contribute
// nothing; unknown kinds contribute their children's text.
func flatten(n ast.Node, source []byte, b *strings.Builder) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch v := c.(type) {
		case *ast.Text:
			value := v.Segment.Value(source)
			if !v.IsRaw() {
				value = util.UnescapePunctuations(value)
				value = util.ResolveNumericReferences(value)
				value = util.ResolveEntityNames(value)
			}
			b.Write(value)
			if v.SoftLineBreak() || v.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(v.Value)
		case *ast.AutoLink:
			b.Write(v.Label(source))
		case *ast.Image, *ast.RawHTML:
			// no text
		default:
			flatten(c, source, b)
		}
	}
}
