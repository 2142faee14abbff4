// Package splitter turns raw document text into bounded, overlapping chunks
// suitable for embedding and retrieval.
package splitter

import (
	"fmt"
	"strings"
)

const (
	// DefaultChunkSize is the maximum chunk length in characters.
	DefaultChunkSize = 1000

	// DefaultOverlap is the number of characters neighboring chunks share.
	DefaultOverlap = 200
)

var (
	paragraphSep = []rune("\n\n")
	sentenceSep  = []rune(". ")
)

// Splitter splits text into chunks of at most chunkSize characters, where
// consecutive chunks overlap by up to overlap characters.
type Splitter struct {
	chunkSize int
	overlap   int
}

// New creates a Splitter. chunkSize must be positive and overlap must be
// smaller than chunkSize; anything else is a configuration error.
func New(chunkSize, overlap int) (*Splitter, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("splitter: chunk size must be positive, got %d", chunkSize)
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil, fmt.Errorf("splitter: overlap %d must be in [0, %d)", overlap, chunkSize)
	}
	return &Splitter{chunkSize: chunkSize, overlap: overlap}, nil
}

// ChunkSize returns the configured maximum chunk length.
func (s *Splitter) ChunkSize() int { return s.chunkSize }

// Split chunks text into trimmed, non-empty pieces of at most chunkSize
// characters. A window ending mid-text backs off to the last paragraph break,
// then the last sentence break, as long as the break lies past the half-window
// point. The next window starts overlap characters before the previous end.
func (s *Splitter) Split(text string) []string {
	runes := []rune(text)
	if len(runes) <= s.chunkSize {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			return nil
		}
		return []string{trimmed}
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + s.chunkSize
		last := end >= len(runes)
		if last {
			end = len(runes)
		} else {
			// Prefer breaking at a paragraph, then at a sentence, but only
			// past the half-window point so chunks stay reasonably sized.
			window := runes[start:end]
			if idx := lastIndex(window, paragraphSep); idx > s.chunkSize/2 {
				end = start + idx
			} else if idx := lastIndex(window, sentenceSep); idx > s.chunkSize/2 {
				end = start + idx + 1 // keep the period
			}
		}

		if chunk := strings.TrimSpace(string(runes[start:end])); chunk != "" {
			chunks = append(chunks, chunk)
		}
		if last {
			break
		}

		next := end - s.overlap
		if next <= start {
			// Boundary backoff plus a large overlap stalled the window;
			// drop the overlap for this step to guarantee progress.
			next = end
		}
		start = next
	}

	return chunks
}

// lastIndex returns the rune index of the last occurrence of sep in window,
// or -1 if absent.
func lastIndex(window, sep []rune) int {
	for i := len(window) - len(sep); i >= 0; i-- {
		match := true
		for j := range sep {
			if window[i+j] != sep[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
