package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mfenderov/pdfvault/internal/query"
	"github.com/mfenderov/pdfvault/internal/store"
)

// Config holds MCP server configuration.
type Config struct {
	Name    string
	Version string
}

// Server exposes the query engine as MCP tools.
type Server struct {
	mcpServer *server.MCPServer
	queries   *query.Service
}

// NewServer creates a new MCP server with document tools.
func NewServer(config Config, queries *query.Service) (*Server, error) {
	if queries == nil {
		return nil, fmt.Errorf("query service is required")
	}

	mcpServer := server.NewMCPServer(
		config.Name,
		config.Version,
		server.WithToolCapabilities(true),
	)

	s := &Server{
		mcpServer: mcpServer,
		queries:   queries,
	}

	searchTool := mcp.NewTool("search_documents",
		mcp.WithDescription("Search ingested PDFs by text, filename, title or author (case-insensitive substring). Returns list entries without the extracted text."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query string"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results to return (default: 100, max: 500)"),
		),
		mcp.WithNumber("offset",
			mcp.Description("Number of results to skip"),
		),
	)
	mcpServer.AddTool(searchTool, s.searchHandler)

	listTool := mcp.NewTool("list_documents",
		mcp.WithDescription("List ingested PDFs, newest first, optionally filtered"),
		mcp.WithBoolean("pii_found",
			mcp.Description("Only documents with (true) or without (false) detected emails or phone numbers"),
		),
		mcp.WithString("from_date",
			mcp.Description("Earliest ingestion time, RFC 3339 (inclusive)"),
		),
		mcp.WithString("to_date",
			mcp.Description("Latest ingestion time, RFC 3339 (inclusive)"),
		),
		mcp.WithString("author",
			mcp.Description("Case-insensitive substring of the author"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results to return (default: 100, max: 500)"),
		),
		mcp.WithNumber("offset",
			mcp.Description("Number of results to skip"),
		),
	)
	mcpServer.AddTool(listTool, s.listHandler)

	getDocTool := mcp.NewTool("get_document",
		mcp.WithDescription("Get a document by ID, including extracted text and detected entities"),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Document ID to retrieve"),
		),
	)
	mcpServer.AddTool(getDocTool, s.getDocumentHandler)

	statsTool := mcp.NewTool("document_stats",
		mcp.WithDescription("Corpus-wide totals: documents, documents with PII, emails, phone numbers, pages"),
	)
	mcpServer.AddTool(statsTool, s.statsHandler)

	return s, nil
}

// searchHandler handles the search_documents tool call.
func (s *Server) searchHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query parameter is required"), nil
	}

	res, err := s.queries.Search(ctx, q, pageFrom(req))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	return jsonResult(res)
}

// listHandler handles the list_documents tool call.
func (s *Server) listHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var f store.Filter

	if _, ok := req.GetArguments()["pii_found"]; ok {
		v := req.GetBool("pii_found", false)
		f.PIIFound = &v
	}
	for _, p := range []struct {
		key string
		dst **time.Time
	}{
		{"from_date", &f.CreatedFrom},
		{"to_date", &f.CreatedTo},
	} {
		raw := req.GetString(p.key, "")
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("%s must be RFC 3339: %v", p.key, err)), nil
		}
		*p.dst = &t
	}
	f.Author = req.GetString("author", "")

	res, err := s.queries.List(ctx, f, pageFrom(req))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
	}
	return jsonResult(res)
}

// getDocumentHandler handles the get_document tool call.
func (s *Server) getDocumentHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}

	doc, err := s.queries.Get(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("get document failed: %v", err)), nil
	}
	return jsonResult(doc)
}

// statsHandler handles the document_stats tool call.
func (s *Server) statsHandler(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st, err := s.queries.Stats(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("stats failed: %v", err)), nil
	}
	return jsonResult(st)
}

func pageFrom(req mcp.CallToolRequest) query.Page {
	return query.Page{
		Offset: req.GetInt("offset", 0),
		Limit:  req.GetInt("limit", 0),
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// ServeStdio starts the MCP server using stdio transport.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
