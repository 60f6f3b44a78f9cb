package mcpserver

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/datagen/internal/catalog"
	"github.com/starford/datagen/internal/models"
	"github.com/starford/datagen/internal/storage"
	"github.com/starford/datagen/internal/testutil"
)

func testServer(t *testing.T) (*Server, storage.Provider, *catalog.DB) {
	t.Helper()
	_, store := testutil.TestArchive(t)
	db := testutil.TestCatalog(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(store, db, logger), store, db
}

// callTool dispatches to the handler directly; mcp-go has no in-process
// call helper.
func callTool(t *testing.T, srv *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	var (
		result *mcp.CallToolResult
		err    error
	)
	switch name {
	case "list_documents":
		result, err = srv.listDocuments(ctx, req)
	case "read_document":
		result, err = srv.readDocument(ctx, req)
	case "search_documents":
		result, err = srv.searchDocuments(ctx, req)
	case "generate_archive":
		result, err = srv.generateArchive(ctx, req)
	case "get_header_format":
		result, err = srv.getHeaderFormat(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}
	require.NoError(t, err, "tool %s", name)
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

const blueprint = `{
	"years": [2020],
	"departments": ["hr", "legal"],
	"authors": ["A"],
	"texts": [{"title": "Report", "content": "Body."}]
}`

func TestGenerateArchive(t *testing.T) {
	srv, store, db := testServer(t)

	r := callTool(t, srv, "generate_archive", map[string]any{"blueprint": blueprint, "seed": "42"})
	require.False(t, r.IsError, resultText(r))
	assert.Equal(t, "generated: 2 documents catalogued", resultText(r))

	data, err := store.Read("2020/legal/report.txt")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Name: Report\nAutor: Ayn Rand\n"))

	_, total, err := db.List(catalog.ListFilter{Year: 2020})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

func TestGenerateArchive_Twice(t *testing.T) {
	srv, _, _ := testServer(t)
	r := callTool(t, srv, "generate_archive", map[string]any{"blueprint": blueprint})
	require.False(t, r.IsError, resultText(r))

	r = callTool(t, srv, "generate_archive", map[string]any{"blueprint": blueprint})
	assert.True(t, r.IsError, "second generation into the same root must fail")
}

func TestGenerateArchive_InvalidBlueprint(t *testing.T) {
	srv, _, _ := testServer(t)

	r := callTool(t, srv, "generate_archive", map[string]any{"blueprint": `{"years": [2020]}`})
	assert.True(t, r.IsError)
	assert.Contains(t, resultText(r), "invalid blueprint")

	r = callTool(t, srv, "generate_archive", map[string]any{
		"blueprint": `{"years":[2020],"departments":["hr"],"authors":[],"texts":[]}`,
	})
	assert.True(t, r.IsError)
	assert.Contains(t, resultText(r), "no content templates")
}

func TestListAndReadDocuments(t *testing.T) {
	srv, store, db := testServer(t)
	path := testutil.WriteDocument(t, store, "hr", testutil.Document("Memo", 2019, models.TechniqueManual))
	require.NoError(t, catalog.Sync(db, store, srv.logger))

	r := callTool(t, srv, "list_documents", map[string]any{"year": "2019"})
	assert.Contains(t, resultText(r), path)
	assert.Contains(t, resultText(r), "manuell")

	r = callTool(t, srv, "list_documents", map[string]any{"department": "legal"})
	assert.Equal(t, "no documents found", resultText(r))

	r = callTool(t, srv, "list_documents", map[string]any{"year": "neunzehn"})
	assert.True(t, r.IsError)

	r = callTool(t, srv, "read_document", map[string]any{"path": path})
	assert.True(t, strings.HasSuffix(resultText(r), "Memo body."))
}

func TestReadDocumentMissing(t *testing.T) {
	srv, _, _ := testServer(t)
	r := callTool(t, srv, "read_document", map[string]any{"path": "1999/hr/nope.txt"})
	assert.True(t, r.IsError)
}

func TestSearchDocuments(t *testing.T) {
	srv, store, db := testServer(t)
	testutil.WriteDocument(t, store, "legal", testutil.Document("Vertrag", 2020, models.TechniqueDigital))
	require.NoError(t, catalog.Sync(db, store, srv.logger))

	r := callTool(t, srv, "search_documents", map[string]any{"query": "Vertrag"})
	assert.Contains(t, resultText(r), "2020/legal/vertrag.txt")
}

func TestGetHeaderFormat(t *testing.T) {
	srv, _, _ := testServer(t)
	r := callTool(t, srv, "get_header_format", nil)
	assert.Contains(t, resultText(r), "Digitalisierungstechnik")
	assert.Contains(t, resultText(r), models.Separator)
}
