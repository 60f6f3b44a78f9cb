// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes a generated archive to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/datagen/internal/catalog"
	"github.com/starford/datagen/internal/generator"
	"github.com/starford/datagen/internal/models"
	"github.com/starford/datagen/internal/storage"
	"github.com/starford/datagen/pkg/config"
)

const headerFormatURI = "datagen://header-format"

// Server wraps the MCP server with archive tools.
type Server struct {
	mcp    *server.MCPServer
	store  storage.Provider
	db     catalog.Index
	logger *slog.Logger
}

// New creates a new MCP server with all archive tools registered.
func New(store storage.Provider, db catalog.Index, logger *slog.Logger) *Server {
	s := &Server{store: store, db: db, logger: logger}

	s.mcp = server.NewMCPServer(
		"datagen",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_documents",
		mcp.WithDescription("List catalogued archive documents, optionally filtered by year and department."),
		mcp.WithString("year", mcp.Description("Optional four-digit year")),
		mcp.WithString("department", mcp.Description("Optional department name")),
	), s.listDocuments)

	s.mcp.AddTool(mcp.NewTool("read_document",
		mcp.WithDescription("Read the full text of an archive document, header included."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Archive-relative path, e.g. 2020/hr/report.txt")),
	), s.readDocument)

	s.mcp.AddTool(mcp.NewTool("search_documents",
		mcp.WithDescription("Search document titles, bodies and Aktenzeichen."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchDocuments)

	s.mcp.AddTool(mcp.NewTool("generate_archive",
		mcp.WithDescription("Generate year/department directories from a JSON blueprint into the archive root. "+
			"Fails if any of the directories already exist."),
		mcp.WithString("blueprint", mcp.Required(), mcp.Description(
			`JSON object with "years", "departments", "authors" and "texts" ([{"title","content"}])`)),
		mcp.WithString("seed", mcp.Description("Optional unsigned seed for reproducible output")),
	), s.generateArchive)

	s.mcp.AddTool(mcp.NewTool("get_header_format",
		mcp.WithDescription("Returns the layout of generated documents."),
	), s.getHeaderFormat)

	s.mcp.AddResource(
		mcp.NewResource(headerFormatURI, "Document Header Format",
			mcp.WithResourceDescription("Metadata header layout of generated archive documents."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readHeaderFormatResource,
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

func (s *Server) listDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	f := catalog.ListFilter{Department: req.GetString("department", "")}
	if y := req.GetString("year", ""); y != "" {
		year, err := strconv.Atoi(y)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid year: %s", y)), nil
		}
		f.Year = year
	}

	rows, _, err := s.db.List(f)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(rows) == 0 {
		return mcp.NewToolResultText("no documents found"), nil
	}

	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, fmt.Sprintf("%s\t%s\t%s", r.Path, r.Document.Reference, r.Document.Technique))
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) readDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := s.store.Read(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) searchDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.db.Search(query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) generateArchive(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("blueprint")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var bp models.Blueprint
	if err := config.Decode(strings.NewReader(raw), config.FormatJSON, &bp); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid blueprint: %v", err)), nil
	}

	var seed uint64
	if v := req.GetString("seed", ""); v != "" {
		seed, err = strconv.ParseUint(v, 10, 64)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid seed: %s", v)), nil
		}
	}

	engine := generator.New(s.store, generator.WithSeed(seed), generator.WithLogger(s.logger))
	if err := engine.Run(ctx, &bp); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := catalog.Sync(s.db, s.store, s.logger); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("generated, but catalog sync failed: %v", err)), nil
	}

	st, err := s.db.Stats()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("generated: %d documents catalogued", st.Documents)), nil
}

func (s *Server) getHeaderFormat(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(HeaderFormat), nil
}

func (s *Server) readHeaderFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      headerFormatURI,
			MIMEType: "text/markdown",
			Text:     HeaderFormat,
		},
	}, nil
}
