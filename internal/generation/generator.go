// Package generation adapts text-generation providers to one normalized
// streaming fragment shape, keeping provider-specific response parsing out of
// the orchestrator.
package generation

import "context"

// Fragment is one increment of a streamed answer.
type Fragment struct {
	Text string
}

// Stream is a finite, non-restartable sequence of fragments. Recv returns
// io.EOF on clean stream end; any other error means the stream failed
// mid-flight and already-delivered fragments stand. Close releases the
// underlying connection and is safe to call at any point.
type Stream interface {
	Recv() (Fragment, error)
	Close() error
}

// Generator starts a streaming completion for a prompt.
type Generator interface {
	StreamComplete(ctx context.Context, prompt string) (Stream, error)
}
