// Package rag drives the end-to-end pipeline: ingestion of documents into the
// vector collection, and retrieval-grounded streaming answers to queries.
package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/antonf/ragstack/internal/generation"
	"github.com/antonf/ragstack/internal/storage"
)

// DefaultContextSize is how many top matches are assembled into the prompt.
const DefaultContextSize = 3

// contextSeparator delimits passages inside the assembled context.
const contextSeparator = "\n\n---\n\n"

// noContextSentinel replaces an empty context so the generator is told
// explicitly that retrieval found nothing, instead of receiving a blank
// prompt section.
const noContextSentinel = "No relevant context found in the document."

// promptTemplate interpolates context and query. It instructs the generator
// to reason step by step and to admit ignorance rather than hallucinate.
const promptTemplate = `Context information is below.
---------------------
%s
---------------------
Given the context information above I want you to think step by step to answer the query in a crisp manner, in case you don't know the answer say 'I don't know!'.
Query: %s
Answer: `

// Splitter chunks raw text.
type Splitter interface {
	Split(text string) []string
}

// Embedder batches chunk texts into vectors.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Store is the write/read surface of the vector collection the engine needs.
type Store interface {
	UpsertPoints(ctx context.Context, points []*storage.Point) (int, error)
	DeleteDocument(ctx context.Context, name string) error
}

// Searcher returns matches for a query text, best first.
type Searcher interface {
	Search(ctx context.Context, query string) ([]storage.ScoredMatch, error)
}

// Config assembles the engine's collaborators. ContextSize defaults to
// DefaultContextSize when not positive.
type Config struct {
	Splitter    Splitter
	Embedder    Embedder
	Store       Store
	Retriever   Searcher
	Generator   generation.Generator
	ContextSize int
	Logger      *slog.Logger
}

// Engine owns the session-level pipeline flow. Ingestion and query paths
// share no mutable state, so a query may run while documents are ingested.
type Engine struct {
	splitter    Splitter
	embedder    Embedder
	store       Store
	retriever   Searcher
	generator   generation.Generator
	contextSize int
	logger      *slog.Logger
}

// NewEngine creates an Engine from cfg.
func NewEngine(cfg Config) *Engine {
	contextSize := cfg.ContextSize
	if contextSize <= 0 {
		contextSize = DefaultContextSize
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		splitter:    cfg.Splitter,
		embedder:    cfg.Embedder,
		store:       cfg.Store,
		retriever:   cfg.Retriever,
		generator:   cfg.Generator,
		contextSize: contextSize,
		logger:      logger,
	}
}

// IngestDocument splits text and indexes the resulting chunks under name.
// Returns the number of chunks stored.
func (e *Engine) IngestDocument(ctx context.Context, name, text string) (int, error) {
	return e.IngestChunks(ctx, name, e.splitter.Split(text))
}

// IngestChunks embeds pre-split chunks and upserts them, tagging every point
// with the document name and its chunk index. Re-ingesting an existing name
// replaces the document wholesale. An embedding failure aborts the whole
// document; no partially indexed state is reported as success.
func (e *Engine) IngestChunks(ctx context.Context, name string, chunks []string) (int, error) {
	kept := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		if strings.TrimSpace(chunk) != "" {
			kept = append(kept, chunk)
		}
	}
	if len(kept) == 0 {
		e.logger.Warn("Document produced no chunks", "document", name)
		return 0, nil
	}

	vectors, err := e.embedder.EmbedTexts(ctx, kept)
	if err != nil {
		return 0, fmt.Errorf("embed document %q: %w", name, err)
	}
	if len(vectors) != len(kept) {
		return 0, fmt.Errorf("embed document %q: got %d vectors for %d chunks",
			name, len(vectors), len(kept))
	}

	points := make([]*storage.Point, len(kept))
	for i, chunk := range kept {
		points[i] = &storage.Point{
			ID:         uuid.New().String(),
			Vector:     vectors[i],
			Text:       chunk,
			Document:   name,
			ChunkIndex: i,
		}
	}

	// The old points go away only after embedding succeeded, so a failed
	// ingest leaves the previous version of the document intact.
	if err := e.store.DeleteDocument(ctx, name); err != nil {
		return 0, fmt.Errorf("replace document %q: %w", name, err)
	}

	written, err := e.store.UpsertPoints(ctx, points)
	if err != nil {
		return 0, fmt.Errorf("store document %q (%d/%d points written): %w",
			name, written, len(points), err)
	}

	e.logger.Info("Ingested document", "document", name, "chunks", len(points))
	return len(points), nil
}

// Query retrieves relevant chunks, assembles them into a bounded context
// prompt and starts a streaming generation. The returned stream delivers
// fragments as they arrive; the caller may abandon it at any point via Close
// or context cancellation.
func (e *Engine) Query(ctx context.Context, query string) (*AnswerStream, error) {
	matches, err := e.retriever.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}
	e.logger.Debug("Retrieved matches", "query", query, "matches", len(matches))

	prompt := fmt.Sprintf(promptTemplate, e.buildContext(matches), query)

	stream, err := e.generator.StreamComplete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}

	return &AnswerStream{inner: stream, sources: matches}, nil
}

// buildContext concatenates the text payloads of the top matches. Matches
// without a usable payload are skipped; if nothing remains the explicit
// no-context sentinel is returned.
func (e *Engine) buildContext(matches []storage.ScoredMatch) string {
	limit := min(e.contextSize, len(matches))

	passages := make([]string, 0, limit)
	for _, match := range matches[:limit] {
		if match.Text == "" {
			continue
		}
		passages = append(passages, match.Text)
	}

	if len(passages) == 0 {
		return noContextSentinel
	}
	return strings.Join(passages, contextSeparator)
}

// AnswerStream hands generation fragments to the caller in order while
// accumulating the full answer for record-keeping. A mid-stream error leaves
// already-delivered fragments intact and is reported explicitly; io.EOF marks
// clean completion.
type AnswerStream struct {
	inner   generation.Stream
	sources []storage.ScoredMatch
	answer  strings.Builder
}

// Recv returns the next fragment.
func (a *AnswerStream) Recv() (generation.Fragment, error) {
	frag, err := a.inner.Recv()
	if err == nil {
		a.answer.WriteString(frag.Text)
	}
	return frag, err
}

// Answer returns the concatenation of all fragments delivered so far.
func (a *AnswerStream) Answer() string {
	return a.answer.String()
}

// Sources returns the matches that grounded this answer, best first.
func (a *AnswerStream) Sources() []storage.ScoredMatch {
	return a.sources
}

// Close releases the underlying provider connection.
func (a *AnswerStream) Close() error {
	return a.inner.Close()
}

// Document is one unit of a multi-document ingestion request.
type Document struct {
	Name     string
	Text     string
	Markdown bool
}

// IngestResult reports the outcome of a multi-document ingestion.
type IngestResult struct {
	TotalDocs      int
	TotalChunks    int
	SuccessfulDocs int
	FailedDocs     []FailedDoc
	Duration       time.Duration
}

// FailedDoc records a document that failed to ingest.
type FailedDoc struct {
	Name   string
	Reason string
}

// MarkdownSplitter is the optional structure-aware splitter used for
// markdown documents during multi-document ingestion.
type MarkdownSplitter interface {
	Split(source []byte) ([]string, error)
}

// IngestAll processes documents independently: one document's failure is
// recorded and does not block the others. Markdown documents are split at
// header boundaries when a markdown splitter is provided.
func (e *Engine) IngestAll(ctx context.Context, docs []Document, markdown MarkdownSplitter) *IngestResult {
	start := time.Now()
	result := &IngestResult{TotalDocs: len(docs)}

	for _, doc := range docs {
		chunks, err := e.splitDocument(doc, markdown)
		if err == nil {
			var count int
			count, err = e.IngestChunks(ctx, doc.Name, chunks)
			if err == nil {
				result.SuccessfulDocs++
				result.TotalChunks += count
				continue
			}
		}
		e.logger.Warn("Failed to ingest document", "document", doc.Name, "error", err)
		result.FailedDocs = append(result.FailedDocs, FailedDoc{
			Name:   doc.Name,
			Reason: err.Error(),
		})
	}

	result.Duration = time.Since(start)
	e.logger.Info("Ingestion complete",
		"successful", result.SuccessfulDocs,
		"failed", len(result.FailedDocs),
		"chunks", result.TotalChunks,
		"duration", result.Duration,
	)
	return result
}

func (e *Engine) splitDocument(doc Document, markdown MarkdownSplitter) ([]string, error) {
	if doc.Markdown && markdown != nil {
		chunks, err := markdown.Split([]byte(doc.Text))
		if err != nil {
			return nil, fmt.Errorf("split markdown: %w", err)
		}
		return chunks, nil
	}
	return e.splitter.Split(doc.Text), nil
}
