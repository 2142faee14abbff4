package server

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/antonf/ragstack/internal/rag"
	"github.com/antonf/ragstack/internal/splitter"
	"github.com/antonf/ragstack/internal/storage"
)

// makeIngestHandler creates the ingest_document tool handler.
func makeIngestHandler(engine *rag.Engine, markdown *splitter.MarkdownSplitter) func(
	context.Context, *mcp.CallToolRequest, IngestDocumentInput,
) (*mcp.CallToolResult, IngestDocumentOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input IngestDocumentInput) (
		*mcp.CallToolResult, IngestDocumentOutput, error,
	) {
		if input.Name == "" {
			return nil, IngestDocumentOutput{}, fmt.Errorf("document name is required")
		}

		var (
			count int
			err   error
		)
		if input.Markdown {
			var chunks []string
			chunks, err = markdown.Split([]byte(input.Text))
			if err == nil {
				count, err = engine.IngestChunks(ctx, input.Name, chunks)
			}
		} else {
			count, err = engine.IngestDocument(ctx, input.Name, input.Text)
		}
		if err != nil {
			return nil, IngestDocumentOutput{}, fmt.Errorf("ingest failed: %w", err)
		}

		return nil, IngestDocumentOutput{Name: input.Name, Chunks: count}, nil
	}
}

// makeQueryHandler creates the query tool handler. MCP tool results are not
// streamed, so the handler drains the answer stream; a mid-stream failure is
// reported alongside the partial answer rather than discarding it.
func makeQueryHandler(engine *rag.Engine) func(
	context.Context, *mcp.CallToolRequest, QueryInput,
) (*mcp.CallToolResult, QueryOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input QueryInput) (
		*mcp.CallToolResult, QueryOutput, error,
	) {
		stream, err := engine.Query(ctx, input.Query)
		if err != nil {
			return nil, QueryOutput{}, fmt.Errorf("query failed: %w", err)
		}
		defer stream.Close()

		output := QueryOutput{Sources: []QuerySource{}}
		for {
			_, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				output.Incomplete = true
				output.Error = err.Error()
				break
			}
		}

		output.Answer = stream.Answer()
		for _, match := range stream.Sources() {
			output.Sources = append(output.Sources, QuerySource{
				Document:   match.Document,
				ChunkIndex: match.ChunkIndex,
				Score:      match.Score,
			})
		}
		return nil, output, nil
	}
}

// makeListHandler creates the list_documents tool handler.
func makeListHandler(store *storage.Store) func(
	context.Context, *mcp.CallToolRequest, ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ListDocumentsInput) (
		*mcp.CallToolResult, ListDocumentsOutput, error,
	) {
		docs, err := store.ListDocuments(ctx)
		if err != nil {
			return nil, ListDocumentsOutput{}, fmt.Errorf("failed to list documents: %w", err)
		}

		summaries := make([]DocumentSummary, 0, len(docs))
		for _, doc := range docs {
			summaries = append(summaries, DocumentSummary{Name: doc.Name, Chunks: doc.Chunks})
		}
		return nil, ListDocumentsOutput{Documents: summaries, Count: len(summaries)}, nil
	}
}

// makeDeleteHandler creates the delete_document tool handler.
func makeDeleteHandler(store *storage.Store) func(
	context.Context, *mcp.CallToolRequest, DeleteDocumentInput,
) (*mcp.CallToolResult, DeleteDocumentOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input DeleteDocumentInput) (
		*mcp.CallToolResult, DeleteDocumentOutput, error,
	) {
		if input.Name == "" {
			return nil, DeleteDocumentOutput{}, fmt.Errorf("document name is required")
		}
		if err := store.DeleteDocument(ctx, input.Name); err != nil {
			return nil, DeleteDocumentOutput{}, fmt.Errorf("delete failed: %w", err)
		}
		return nil, DeleteDocumentOutput{Name: input.Name, Deleted: true}, nil
	}
}

// makeStatusHandler creates the index_status tool handler.
func makeStatusHandler(store *storage.Store) func(
	context.Context, *mcp.CallToolRequest, IndexStatusInput,
) (*mcp.CallToolResult, IndexStatusOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input IndexStatusInput) (
		*mcp.CallToolResult, IndexStatusOutput, error,
	) {
		docs, err := store.ListDocuments(ctx)
		if err != nil {
			return nil, IndexStatusOutput{}, fmt.Errorf("failed to list documents: %w", err)
		}

		points, err := store.PointsCount(ctx)
		if err != nil {
			return nil, IndexStatusOutput{}, fmt.Errorf("failed to get collection info: %w", err)
		}

		return nil, IndexStatusOutput{
			Collection: store.Collection(),
			Documents:  len(docs),
			Points:     points,
		}, nil
	}
}
