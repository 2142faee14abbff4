package embedding

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider records batches and returns one vector per text whose first
// component is the running input position, so tests can verify order.
type fakeProvider struct {
	batches    [][]string
	failOnCall int // 1-based call number to fail on, 0 = never
	shortBy    int // return this many fewer vectors than inputs
	calls      int
	position   int
}

func (f *fakeProvider) createEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.failOnCall > 0 && f.calls == f.failOnCall {
		return nil, fmt.Errorf("provider down")
	}
	f.batches = append(f.batches, texts)

	count := len(texts) - f.shortBy
	vectors := make([][]float32, 0, count)
	for i := 0; i < count; i++ {
		vectors = append(vectors, []float32{float32(f.position)})
		f.position++
	}
	return vectors, nil
}

func texts(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("chunk %d", i)
	}
	return out
}

func TestEmbedTexts_OrderAndCountAcrossBatchSizes(t *testing.T) {
	for _, batchSize := range []int{1, 3, 4, 10, 25} {
		t.Run(fmt.Sprintf("batch=%d", batchSize), func(t *testing.T) {
			fake := &fakeProvider{}
			e := &Embedder{provider: fake, batchSize: batchSize}

			vectors, err := e.EmbedTexts(context.Background(), texts(10))
			require.NoError(t, err)
			require.Len(t, vectors, 10)

			for i, v := range vectors {
				assert.Equal(t, float32(i), v[0], "vector %d out of order", i)
			}
		})
	}
}

func TestEmbedTexts_BatchBoundaries(t *testing.T) {
	fake := &fakeProvider{}
	e := &Embedder{provider: fake, batchSize: 4}

	_, err := e.EmbedTexts(context.Background(), texts(10))
	require.NoError(t, err)

	require.Len(t, fake.batches, 3)
	assert.Len(t, fake.batches[0], 4)
	assert.Len(t, fake.batches[1], 4)
	assert.Len(t, fake.batches[2], 2)
}

func TestEmbedTexts_FiltersEmptyTexts(t *testing.T) {
	fake := &fakeProvider{}
	e := &Embedder{provider: fake, batchSize: 10}

	input := []string{"first", "", "  \n ", "second"}
	vectors, err := e.EmbedTexts(context.Background(), input)
	require.NoError(t, err)

	require.Len(t, vectors, 2)
	require.Len(t, fake.batches, 1)
	assert.Equal(t, []string{"first", "second"}, fake.batches[0])
}

func TestEmbedTexts_AllEmpty(t *testing.T) {
	fake := &fakeProvider{}
	e := &Embedder{provider: fake, batchSize: 10}

	vectors, err := e.EmbedTexts(context.Background(), []string{"", "   "})
	require.NoError(t, err)
	assert.Empty(t, vectors)
	assert.Zero(t, fake.calls, "provider should not be called for empty input")
}

func TestEmbedTexts_BatchFailureAbortsWholeOperation(t *testing.T) {
	fake := &fakeProvider{failOnCall: 2}
	e := &Embedder{provider: fake, batchSize: 4}

	vectors, err := e.EmbedTexts(context.Background(), texts(10))
	require.Error(t, err)
	assert.Nil(t, vectors, "no partial results on batch failure")
	assert.Contains(t, err.Error(), "embed batch")
}

func TestEmbedTexts_CountMismatchIsError(t *testing.T) {
	fake := &fakeProvider{shortBy: 1}
	e := &Embedder{provider: fake, batchSize: 10}

	_, err := e.EmbedTexts(context.Background(), texts(5))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "4 vectors for 5 texts")
}

func TestEmbedQuery(t *testing.T) {
	fake := &fakeProvider{}
	e := &Embedder{provider: fake, batchSize: 10}

	vector, err := e.EmbedQuery(context.Background(), "what is this about?")
	require.NoError(t, err)
	assert.Equal(t, []float32{0}, vector)
	require.Len(t, fake.batches, 1)
	assert.Len(t, fake.batches[0], 1, "queries are never chunked or batched")
}

func TestEmbedQuery_EmptyText(t *testing.T) {
	e := &Embedder{provider: &fakeProvider{}, batchSize: 10}

	_, err := e.EmbedQuery(context.Background(), "   ")
	require.Error(t, err)
}

func TestNewEmbedder_DefaultBatchSize(t *testing.T) {
	e := NewEmbedder(&Client{}, 0)
	assert.Equal(t, DefaultBatchSize, e.batchSize)

	e = NewEmbedder(&Client{}, 7)
	assert.Equal(t, 7, e.batchSize)
}
