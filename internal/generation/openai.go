package generation

import (
	"context"
	"fmt"
	"io"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/packages/ssestream"
)

// DefaultModel is the chat model used when none is configured.
const DefaultModel = openai.ChatModelGPT4o

const defaultTemperature = 0.7

// OpenAI streams chat completions from the OpenAI API.
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI creates a generator over an existing OpenAI client (shared with
// the embedding client). If model is empty, DefaultModel is used.
func NewOpenAI(client *openai.Client, model string) *OpenAI {
	if model == "" {
		model = DefaultModel
	}
	return &OpenAI{client: client, model: model}
}

// StreamComplete starts a streaming completion for the prompt. Fragments are
// delivered strictly in generation order; canceling ctx ends the stream.
func (g *OpenAI) StreamComplete(ctx context.Context, prompt string) (Stream, error) {
	inner := g.client.Chat.Completions.NewStreaming(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model:       g.model,
		Temperature: openai.Float(defaultTemperature),
	})
	if err := inner.Err(); err != nil {
		return nil, fmt.Errorf("start completion stream: %w", err)
	}
	return &openaiStream{inner: inner}, nil
}

// openaiStream normalizes server-sent chunks into Fragments, skipping chunks
// that carry no text delta.
type openaiStream struct {
	inner *ssestream.Stream[openai.ChatCompletionChunk]
}

func (s *openaiStream) Recv() (Fragment, error) {
	for s.inner.Next() {
		chunk := s.inner.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		if delta := chunk.Choices[0].Delta.Content; delta != "" {
			return Fragment{Text: delta}, nil
		}
	}
	if err := s.inner.Err(); err != nil {
		return Fragment{}, fmt.Errorf("completion stream: %w", err)
	}
	return Fragment{}, io.EOF
}

func (s *openaiStream) Close() error {
	return s.inner.Close()
}
