// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the documentation pages to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/docpages/internal/apperr"
	"github.com/starford/docpages/internal/models"
	"github.com/starford/docpages/internal/pages"
	"github.com/starford/docpages/internal/storage"
)

// SiteMapURI is the resource URI of the site map.
const SiteMapURI = "docpages://sitemap"

// Server wraps the MCP server with page tools.
type Server struct {
	mcp *server.MCPServer
	svc *pages.Service
}

// New creates a new MCP server with all page tools registered.
func New(svc *pages.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"docpages",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_pages",
		mcp.WithDescription("List every page of the site map with its url, title and whether a markdown source exists."),
	), s.listPages)

	s.mcp.AddTool(mcp.NewTool("read_page",
		mcp.WithDescription("Render a page and return its HTML, headings and front matter as JSON."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Request path of the page (e.g. /docs/intro)")),
	), s.readPage)

	s.mcp.AddTool(mcp.NewTool("get_headings",
		mcp.WithDescription("Return the table of contents (anchor id and text) of a page."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Request path of the page (e.g. /docs/intro)")),
	), s.getHeadings)

	s.mcp.AddResource(
		mcp.NewResource(SiteMapURI, "Site map",
			mcp.WithResourceDescription("Configured page tree, hidden pages included."),
			mcp.WithMIMEType("application/json"),
		),
		s.readSiteMapResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// pageEntry is one flattened row of list_pages.
type pageEntry struct {
	URL       string `json:"url"`
	Title     string `json:"title"`
	Parent    string `json:"parent,omitempty"`
	Menu      bool   `json:"menu"`
	Source    string `json:"source"`
	HasSource bool   `json:"has_source"`
}

func (s *Server) listPages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sources, err := s.svc.Sources()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	have := make(map[string]bool, len(sources))
	for _, src := range sources {
		have[src.Path] = true
	}

	entries := []pageEntry{}
	add := func(p models.PageDescriptor, parent string) {
		source := storage.Slug(p.URL) + ".md"
		entries = append(entries, pageEntry{
			URL:       p.URL,
			Title:     p.Title,
			Parent:    parent,
			Menu:      p.ShowInMenu,
			Source:    source,
			HasSource: have[source],
		})
	}
	for _, p := range s.svc.Tree().Pages() {
		add(p, "")
		for _, c := range p.Children {
			add(c, p.URL)
		}
	}
	return jsonResult(entries)
}

func (s *Server) readPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page, errResult := s.load(ctx, req)
	if errResult != nil {
		return errResult, nil
	}
	return jsonResult(page)
}

func (s *Server) getHeadings(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page, errResult := s.load(ctx, req)
	if errResult != nil {
		return errResult, nil
	}
	return jsonResult(page.Headings)
}

func (s *Server) readSiteMapResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	out, err := json.MarshalIndent(s.svc.Tree().Pages(), "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      SiteMapURI,
			MIMEType: "application/json",
			Text:     string(out),
		},
	}, nil
}

func (s *Server) load(ctx context.Context, req mcp.CallToolRequest) (*models.Page, *mcp.CallToolResult) {
	path, err := req.RequireString("path")
	if err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}
	page, err := s.svc.Load(ctx, pages.Request{Path: path})
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, mcp.NewToolResultError(fmt.Sprintf("not found: %s", path))
		}
		return nil, mcp.NewToolResultError(err.Error())
	}
	return page, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}
