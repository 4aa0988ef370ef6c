package markdown

import (
	"bytes"

	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// Presentational classes added to generated elements.
const (
	TableClass      = "table"
	BlockquoteClass = "blockquote"
	ImageClass      = "img-fluid"
)

// classTransformer adds styling classes to tables, blockquotes and images
// without changing the document structure.
type classTransformer struct{}

func (classTransformer) Transform(doc *ast.Document, _ text.Reader, _ parser.Context) {
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.(type) {
		case *extast.Table:
			addClass(n, TableClass)
		case *ast.Blockquote:
			addClass(n, BlockquoteClass)
		case *ast.Image:
			addClass(n, ImageClass)
		}
		return ast.WalkContinue, nil
	})
}

func addClass(n ast.Node, class string) {
	existing, ok := n.AttributeString("class")
	if !ok {
		n.SetAttributeString("class", []byte(class))
		return
	}
	var cur []byte
	switch v := existing.(type) {
	case []byte:
		cur = v
	case string:
		cur = []byte(v)
	}
	for _, f := range bytes.Fields(cur) {
		if string(f) == class {
			return
		}
	}
	merged := append(append(append([]byte{}, cur...), ' '), class...)
	n.SetAttributeString("class", merged)
}
