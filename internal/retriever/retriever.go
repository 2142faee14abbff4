// Package retriever embeds a query and finds its nearest stored chunks.
package retriever

import (
	"context"
	"fmt"

	"github.com/antonf/ragstack/internal/storage"
)

// DefaultSearchLimit is the top-K used when no limit is configured.
const DefaultSearchLimit = 10

// Embedder is the single-item query embedding dependency.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Searcher is the vector search dependency.
type Searcher interface {
	Search(ctx context.Context, vector []float32, limit int) ([]storage.ScoredMatch, error)
}

// Retriever embeds query text and issues a top-K vector search. Results are
// returned unfiltered by score; thresholding is the caller's business.
type Retriever struct {
	embedder Embedder
	store    Searcher
	limit    int
}

// New creates a Retriever. If limit is not positive, DefaultSearchLimit is
// used.
func New(embedder Embedder, store Searcher, limit int) *Retriever {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	return &Retriever{
		embedder: embedder,
		store:    store,
		limit:    limit,
	}
}

// Search returns the stored chunks most similar to the query text, ordered by
// descending similarity.
func (r *Retriever) Search(ctx context.Context, query string) ([]storage.ScoredMatch, error) {
	vector, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	matches, err := r.store.Search(ctx, vector, r.limit)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	return matches, nil
}
