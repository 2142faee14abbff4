package server

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/antonf/ragstack/internal/rag"
	"github.com/antonf/ragstack/internal/splitter"
	"github.com/antonf/ragstack/internal/storage"
)

// Server wraps the MCP server with its dependencies.
type Server struct {
	server *mcp.Server
}

// Config holds server dependencies.
type Config struct {
	Engine   *rag.Engine
	Markdown *splitter.MarkdownSplitter
	Store    *storage.Store
}

// NewServer creates a configured MCP server with the pipeline tools
// registered.
func NewServer(cfg *Config) *Server {
	impl := &mcp.Implementation{
		Name:    "ragstack-server",
		Version: "v0.1.0",
	}

	server := mcp.NewServer(impl, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ingest_document",
		Description: "Index a document's text for semantic search, replacing any document with the same name. Returns the number of chunks stored.",
	}, makeIngestHandler(cfg.Engine, cfg.Markdown))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "query",
		Description: "Answer a natural-language question using the indexed documents as grounding context.",
	}, makeQueryHandler(cfg.Engine))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List all ingested documents with their chunk counts.",
	}, makeListHandler(cfg.Store))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_document",
		Description: "Delete all indexed chunks of a document by name.",
	}, makeDeleteHandler(cfg.Store))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "index_status",
		Description: "Get collection statistics: document count and total stored points.",
	}, makeStatusHandler(cfg.Store))

	return &Server{server: server}
}

// Run starts the server with stdio transport (blocks until the client
// disconnects).
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// MCPServer returns the underlying MCP server instance for transport
// handlers that need to wrap it.
func (s *Server) MCPServer() *mcp.Server {
	return s.server
}
