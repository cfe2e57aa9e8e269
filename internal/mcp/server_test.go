package mcp

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mfenderov/pdfvault/internal/query"
	"github.com/mfenderov/pdfvault/internal/store/sqlstore"
	"github.com/mfenderov/pdfvault/pkg/models"
)

func newTestServer(t *testing.T, docs ...models.Document) (*Server, []models.Document) {
	t.Helper()
	ctx := context.Background()

	st, err := sqlstore.Open(ctx, sqlstore.Config{
		Dialect: sqlstore.SQLite,
		DSN:     filepath.Join(t.TempDir(), "mcp.db"),
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { st.Close() })

	saved := make([]models.Document, len(docs))
	for i, d := range docs {
		if saved[i], err = st.Create(ctx, d); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	s, err := NewServer(Config{Name: "pdfvault", Version: "1.0.0"}, query.New(st))
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	return s, saved
}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if res == nil || len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content type = %T, want mcp.TextContent", res.Content[0])
	}
	return tc.Text
}

func TestServer_Creation(t *testing.T) {
	s, _ := newTestServer(t)

	if s.mcpServer == nil {
		t.Error("mcpServer should not be nil")
	}

	if _, err := NewServer(Config{Name: "pdfvault"}, nil); err == nil {
		t.Error("NewServer() without a query service should fail")
	}
}

func TestServer_SearchTool(t *testing.T) {
	s, _ := newTestServer(t,
		models.Document{Filename: "install.pdf", ExtractedText: "installation guide"},
		models.Document{Filename: "api.pdf", ExtractedText: "endpoints"},
	)
	ctx := context.Background()

	res, err := s.searchHandler(ctx, callRequest("search_documents", map[string]any{"query": "INSTALLATION"}))
	if err != nil {
		t.Fatalf("searchHandler() error = %v", err)
	}
	if res.IsError {
		t.Fatalf("searchHandler() tool error: %s", resultText(t, res))
	}

	var page models.ResultPage
	if err := json.Unmarshal([]byte(resultText(t, res)), &page); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if page.Total != 1 || page.Items[0].Filename != "install.pdf" {
		t.Errorf("search result = %+v", page)
	}
	if page.Query != "INSTALLATION" {
		t.Errorf("Query = %q, want echoed query", page.Query)
	}

	res, err = s.searchHandler(ctx, callRequest("search_documents", map[string]any{}))
	if err != nil {
		t.Fatalf("searchHandler() error = %v", err)
	}
	if !res.IsError {
		t.Error("missing query should be a tool error")
	}
}

func TestServer_ListTool(t *testing.T) {
	s, _ := newTestServer(t,
		models.Document{Filename: "clean.pdf"},
		models.Document{Filename: "pii.pdf", Emails: []string{"a@b.com"}, PIIFound: true},
	)
	ctx := context.Background()

	tests := []struct {
		name      string
		args      map[string]any
		wantTotal int
		wantErr   bool
	}{
		{"no filter", map[string]any{}, 2, false},
		{"pii true", map[string]any{"pii_found": true}, 1, false},
		{"pii false", map[string]any{"pii_found": false}, 1, false},
		{"bad date", map[string]any{"from_date": "yesterday"}, 0, true},
		{"limit too large", map[string]any{"limit": 501}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := s.listHandler(ctx, callRequest("list_documents", tt.args))
			if err != nil {
				t.Fatalf("listHandler() error = %v", err)
			}
			if res.IsError != tt.wantErr {
				t.Fatalf("IsError = %v, want %v: %s", res.IsError, tt.wantErr, resultText(t, res))
			}
			if tt.wantErr {
				return
			}
			var page models.ResultPage
			if err := json.Unmarshal([]byte(resultText(t, res)), &page); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if page.Total != tt.wantTotal {
				t.Errorf("Total = %d, want %d", page.Total, tt.wantTotal)
			}
		})
	}
}

func TestServer_GetDocumentTool(t *testing.T) {
	s, saved := newTestServer(t, models.Document{Filename: "doc.pdf", ExtractedText: "full body"})
	ctx := context.Background()

	res, err := s.getDocumentHandler(ctx, callRequest("get_document", map[string]any{"id": saved[0].ID}))
	if err != nil {
		t.Fatalf("getDocumentHandler() error = %v", err)
	}
	var doc models.Document
	if err := json.Unmarshal([]byte(resultText(t, res)), &doc); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if doc.ID != saved[0].ID || doc.ExtractedText != "full body" {
		t.Errorf("document = %+v", doc)
	}

	res, err = s.getDocumentHandler(ctx, callRequest("get_document", map[string]any{"id": "missing"}))
	if err != nil {
		t.Fatalf("getDocumentHandler() error = %v", err)
	}
	if !res.IsError || !strings.Contains(resultText(t, res), "not found") {
		t.Errorf("unknown id should be a not-found tool error, got %s", resultText(t, res))
	}
}

func TestServer_StatsTool(t *testing.T) {
	s, _ := newTestServer(t,
		models.Document{Filename: "a.pdf", PageCount: 2, PhoneNumbers: []string{"555-123-4567"}, PIIFound: true},
		models.Document{Filename: "b.pdf", PageCount: 3},
	)

	res, err := s.statsHandler(context.Background(), callRequest("document_stats", nil))
	if err != nil {
		t.Fatalf("statsHandler() error = %v", err)
	}
	var st models.Stats
	if err := json.Unmarshal([]byte(resultText(t, res)), &st); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	want := models.Stats{TotalDocuments: 2, DocumentsWithPII: 1, TotalPhoneNumbersFound: 1, TotalPagesProcessed: 5}
	if st != want {
		t.Errorf("stats = %+v, want %+v", st, want)
	}
}
