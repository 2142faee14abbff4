package embedding

import (
	"context"
	"fmt"
	"os"

	"github.com/openai/openai-go"
)

// Client wraps the OpenAI client for embedding generation.
type Client struct {
	client *openai.Client
	model  string
}

// NewClient creates an OpenAI-backed embedding client for the given model.
// If model is empty, Model is used. It reads OPENAI_API_KEY from the
// environment and returns an error if not set.
func NewClient(model string) (*Client, error) {
	if os.Getenv("OPENAI_API_KEY") == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}
	if model == "" {
		model = Model
	}

	// openai-go reads OPENAI_API_KEY from the environment.
	client := openai.NewClient()

	return &Client{client: &client, model: model}, nil
}

// Client returns the underlying OpenAI client for reuse by other adapters
// (the generation provider shares one connection).
func (c *Client) Client() *openai.Client {
	return c.client
}

// createEmbeddings issues one embeddings API call and returns one vector per
// input text, in input order.
func (c *Client) createEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := c.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
		Model: c.model,
	})
	if err != nil {
		return nil, err
	}

	vectors := make([][]float32, len(resp.Data))
	for i, data := range resp.Data {
		vectors[i] = toFloat32(data.Embedding)
	}
	return vectors, nil
}

// toFloat32 converts the API's float64 components to the float32 the vector
// store expects.
func toFloat32(f64 []float64) []float32 {
	f32 := make([]float32, len(f64))
	for i, v := range f64 {
		f32[i] = float32(v)
	}
	return f32
}
