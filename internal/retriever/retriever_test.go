package retriever

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antonf/ragstack/internal/storage"
)

type fakeEmbedder struct {
	vector []float32
	err    error
}

func (f *fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return f.vector, f.err
}

type fakeSearcher struct {
	gotVector []float32
	gotLimit  int
	matches   []storage.ScoredMatch
	err       error
}

func (f *fakeSearcher) Search(ctx context.Context, vector []float32, limit int) ([]storage.ScoredMatch, error) {
	f.gotVector = vector
	f.gotLimit = limit
	return f.matches, f.err
}

func TestSearch_EmbedsThenSearches(t *testing.T) {
	embedder := &fakeEmbedder{vector: []float32{0.1, 0.2, 0.3}}
	searcher := &fakeSearcher{matches: []storage.ScoredMatch{
		{ID: "a", Score: 0.9, Text: "best match"},
		{ID: "b", Score: 0.5, Text: "weaker match"},
	}}

	r := New(embedder, searcher, 0)
	matches, err := r.Search(context.Background(), "some question")
	require.NoError(t, err)

	assert.Equal(t, embedder.vector, searcher.gotVector, "query vector is passed through unchanged")
	assert.Equal(t, DefaultSearchLimit, searcher.gotLimit)
	require.Len(t, matches, 2)
	assert.Equal(t, "best match", matches[0].Text, "results keep descending score order")
}

func TestSearch_CustomLimit(t *testing.T) {
	searcher := &fakeSearcher{}
	r := New(&fakeEmbedder{vector: []float32{1}}, searcher, 25)

	_, err := r.Search(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, 25, searcher.gotLimit)
}

func TestSearch_EmbedFailure(t *testing.T) {
	r := New(&fakeEmbedder{err: fmt.Errorf("quota exceeded")}, &fakeSearcher{}, 0)

	_, err := r.Search(context.Background(), "q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embed query")
}

func TestSearch_StoreFailureIsError(t *testing.T) {
	searcher := &fakeSearcher{err: fmt.Errorf("store timeout")}
	r := New(&fakeEmbedder{vector: []float32{1}}, searcher, 0)

	matches, err := r.Search(context.Background(), "q")
	require.Error(t, err, "a failed search must never look like zero results")
	assert.Nil(t, matches)
}
