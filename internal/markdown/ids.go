package markdown

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// Slugify derives a GitHub-style anchor id from heading text: letters and
// digits are lowercased, spaces become hyphens, hyphens and underscores are
// kept, everything else is dropped.
func Slugify(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		case r == '-' || r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte('-')
		}
	}
	return b.String()
}

// githubIDs is a parser.IDs registry that de-duplicates ids within one
// document by appending -1, -2, ...
type githubIDs struct {
	used map[string]struct{}
}

func newGitHubIDs() parser.IDs {
	return &githubIDs{used: make(map[string]struct{})}
}

func (s *githubIDs) Generate(value []byte, kind ast.NodeKind) []byte {
	base := Slugify(string(value))
	if base == "" {
		if kind == ast.KindHeading {
			base = "heading"
		} else {
			base = "id"
		}
	}
	id := base
	for i := 1; ; i++ {
		if _, taken := s.used[id]; !taken {
			break
		}
		id = base + "-" + strconv.Itoa(i)
	}
	s.used[id] = struct{}{}
	return []byte(id)
}

func (s *githubIDs) Put(value []byte) {
	s.used[string(value)] = struct{}{}
}

// idTransformer assigns ids to headings from their rendered text, the way
// GitHub anchors them. Explicit {#id} attributes are registered first so
// generated ids never collide with them.
type idTransformer struct{}

func (idTransformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	source := reader.Source()
	ids := pc.IDs()

	var pending []*ast.Heading
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		if id := headingID(h); id != "" {
			ids.Put([]byte(id))
		} else {
			pending = append(pending, h)
		}
		return ast.WalkSkipChildren, nil
	})

	for _, h := range pending {
		var b strings.Builder
		flatten(h, source, &b)
		h.SetAttributeString("id", ids.Generate([]byte(b.String()), ast.KindHeading))
	}
}
