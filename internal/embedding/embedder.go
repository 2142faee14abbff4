// Package embedding batches chunk text through an embedding provider and
// exposes the single-item query path used at search time.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/openai/openai-go"
)

const (
	// Model is the OpenAI model used for generating embeddings.
	Model = "text-embedding-3-small"

	// Dimension is the vector dimension for text-embedding-3-small. The
	// vector collection must be created with this dimensionality.
	Dimension = 1536

	// DefaultBatchSize is the number of chunks sent per API call.
	DefaultBatchSize = 20
)

// provider is the one network call the embedder depends on: one vector per
// input text, in input order, or whole-call failure.
type provider interface {
	createEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// Embedder turns chunk texts into vectors, batching provider calls and
// retrying rate-limited batches with exponential backoff. Any other batch
// failure aborts the whole operation; there is no partial success.
type Embedder struct {
	provider  provider
	batchSize int
}

// NewEmbedder creates an Embedder with the given client and optional batch
// size. If batchSize is not positive, DefaultBatchSize is used.
func NewEmbedder(client *Client, batchSize int) *Embedder {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Embedder{
		provider:  client,
		batchSize: batchSize,
	}
}

// EmbedTexts generates one vector per non-empty text, in input order. Texts
// that are empty after trimming are skipped entirely; callers that need
// positional pairing must filter such texts before calling.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	valid := make([]string, 0, len(texts))
	for _, t := range texts {
		if strings.TrimSpace(t) != "" {
			valid = append(valid, t)
		}
	}
	if len(valid) == 0 {
		return nil, nil
	}

	vectors := make([][]float32, 0, len(valid))
	for i := 0; i < len(valid); i += e.batchSize {
		end := min(i+e.batchSize, len(valid))
		batch := valid[i:end]

		batchVectors, err := e.embedBatchWithRetry(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("embed batch %d-%d: %w", i, end, err)
		}
		if len(batchVectors) != len(batch) {
			return nil, fmt.Errorf("embed batch %d-%d: provider returned %d vectors for %d texts",
				i, end, len(batchVectors), len(batch))
		}
		vectors = append(vectors, batchVectors...)
	}

	return vectors, nil
}

// EmbedQuery generates the vector for a single query text. Queries are never
// chunked; this is the one-item degenerate case of the batch call.
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("embed query: text is empty")
	}

	vectors, err := e.embedBatchWithRetry(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embed query: provider returned %d vectors", len(vectors))
	}
	return vectors[0], nil
}

// embedBatchWithRetry calls the provider for one batch, retrying with
// exponential backoff on rate limit errors (HTTP 429). Other errors are
// permanent and fail immediately.
func (e *Embedder) embedBatchWithRetry(ctx context.Context, texts []string) ([][]float32, error) {
	var vectors [][]float32

	operation := func() error {
		v, err := e.provider.createEmbeddings(ctx, texts)
		if err != nil {
			if isRateLimitError(err) {
				return err // retry with backoff
			}
			return backoff.Permanent(err)
		}
		vectors = v
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second

	err := backoff.Retry(operation, backoff.WithContext(b, ctx))
	return vectors, err
}

// isRateLimitError checks if the error is a rate limit error (HTTP 429).
func isRateLimitError(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}
