// Package markdown renders markdown sources to HTML with goldmark and
// extracts table-of-contents entries from the parsed document.
package markdown

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// ErrRenderEngine indicates the markdown engine itself failed.
var ErrRenderEngine = errors.New("markdown engine failure")

// DefaultHighlightStyle is the chroma style used when none is configured.
const DefaultHighlightStyle = "github"

// Options configures a Renderer.
type Options struct {
	// HighlightStyle names the chroma style used for the code stylesheet.
	HighlightStyle string
	// Transformers are extra AST transformers. Priorities below 100 run
	// before heading ids are assigned, above 1000 after styling.
	Transformers []util.PrioritizedValue
}

// Result is the output of a single Render call.
type Result struct {
	HTML     string
	Document ast.Node
	// Source is the byte slice the Document's segments refer to.
	Source []byte
}

// Renderer converts markdown to HTML. It is safe for concurrent use: the
// heading id registry is created per call.
type Renderer struct {
	md    goldmark.Markdown
	style string
}

// New creates a Renderer with GitHub-style heading ids, the extended syntax
// set and the styling hooks, applied in that order.
func New(opts Options) *Renderer {
	style := opts.HighlightStyle
	if style == "" {
		style = DefaultHighlightStyle
	}

	transformers := append([]util.PrioritizedValue{
		util.Prioritized(idTransformer{}, 100),
		util.Prioritized(classTransformer{}, 1000),
	}, opts.Transformers...)

	md := goldmark.New(
		goldmark.WithParserOptions(
			parser.WithAttribute(), // {#custom-id} on headings
		),
		goldmark.WithExtensions(
			extension.GFM, // tables, strikethrough, autolinks, task lists
			extension.Footnote,
			extension.DefinitionList,
			highlighting.NewHighlighting(
				highlighting.WithStyle(style),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithASTTransformers(transformers...),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
		),
	)
	return &Renderer{md: md, style: style}
}

// Render parses and renders source. Malformed markdown never fails; only an
// engine fault yields an error wrapping ErrRenderEngine.
func (r *Renderer) Render(source string) (res *Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			res = nil
			err = fmt.Errorf("%w: %v", ErrRenderEngine, p)
		}
	}()

	src := []byte(source)
	pc := parser.NewContext(parser.WithIDs(newGitHubIDs()))
	doc := r.md.Parser().Parse(text.NewReader(src), parser.WithContext(pc))

	var buf bytes.Buffer
	if err := r.md.Renderer().Render(&buf, src, doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderEngine, err)
	}

	return &Result{
		HTML:     buf.String(),
		Document: doc,
		Source:   src,
	}, nil
}

// WriteCSS writes the stylesheet matching the highlighting classes.
func (r *Renderer) WriteCSS(w io.Writer) error {
	return chromahtml.New(chromahtml.WithClasses(true)).WriteCSS(w, styles.Get(r.style))
}

// HasStyle reports whether name is a registered chroma style.
func HasStyle(name string) bool {
	_, ok := styles.Registry[name]
	return ok
}
