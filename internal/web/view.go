package web

import (
	"bytes"
	"embed"
	"html/template"
	"strings"

	"github.com/starford/docpages/internal/models"
)

//go:embed templates/page.html
var templateFS embed.FS

var pageTemplate = template.Must(template.New("page.html").
	Funcs(template.FuncMap{"lower": strings.ToLower}).
	ParseFS(templateFS, "templates/page.html"))

// pageView is the data passed to the page shell.
type pageView struct {
	SiteTitle   string
	Page        *models.Page
	Content     template.HTML
	Menu        []models.PageDescriptor
	CurrentPath string
	LiveReload  bool
}

func renderShell(v pageView) ([]byte, error) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
