package splitter

import (
	"strings"
	"testing"
)

func TestNew_InvalidParams(t *testing.T) {
	cases := []struct {
		name      string
		chunkSize int
		overlap   int
	}{
		{"zero chunk size", 0, 0},
		{"negative chunk size", -1, 0},
		{"overlap equals chunk size", 100, 100},
		{"overlap exceeds chunk size", 100, 150},
		{"negative overlap", 100, -1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.chunkSize, tc.overlap); err == nil {
				t.Errorf("New(%d, %d) succeeded, want error", tc.chunkSize, tc.overlap)
			}
		})
	}
}

func TestSplit_ShortText(t *testing.T) {
	s, err := New(1000, 200)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	chunks := s.Split("  hello world  ")
	if len(chunks) != 1 {
		t.Fatalf("Expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != "hello world" {
		t.Errorf("Expected trimmed text, got %q", chunks[0])
	}
}

func TestSplit_EmptyText(t *testing.T) {
	s, _ := New(1000, 200)

	if chunks := s.Split(""); len(chunks) != 0 {
		t.Errorf("Empty text: expected no chunks, got %d", len(chunks))
	}
	if chunks := s.Split("   \n\n  "); len(chunks) != 0 {
		t.Errorf("Whitespace text: expected no chunks, got %d", len(chunks))
	}
}

// TestSplit_LongText exercises the documented scenario: 2500 characters with
// chunkSize=1000, overlap=200 yields 3 chunks, each at most 1000 characters,
// with a shared region between neighbors.
func TestSplit_LongText(t *testing.T) {
	text := strings.Repeat("abcdefghij", 250) // 2500 chars, no break points
	s, _ := New(1000, 200)

	chunks := s.Split(text)
	if len(chunks) != 3 {
		t.Fatalf("Expected 3 chunks, got %d", len(chunks))
	}

	for i, chunk := range chunks {
		if len(chunk) > 1000 {
			t.Errorf("Chunk %d has %d chars, want <= 1000", i, len(chunk))
		}
		if chunk == "" {
			t.Errorf("Chunk %d is empty", i)
		}
	}

	// Neighboring chunks share the overlap region.
	for i := 0; i < len(chunks)-1; i++ {
		tail := chunks[i][len(chunks[i])-200:]
		if !strings.HasPrefix(chunks[i+1], tail) {
			t.Errorf("Chunk %d does not start with chunk %d's overlap region", i+1, i)
		}
	}

	// Dropping each chunk's overlap prefix reconstructs the original.
	rebuilt := chunks[0]
	for _, chunk := range chunks[1:] {
		rebuilt += chunk[200:]
	}
	if rebuilt != text {
		t.Errorf("Reconstructed text differs from input (%d vs %d chars)", len(rebuilt), len(text))
	}
}

func TestSplit_ParagraphBoundary(t *testing.T) {
	para1 := strings.Repeat("a", 60)
	para2 := strings.Repeat("b", 60)
	text := para1 + "\n\n" + para2 // 122 chars

	s, _ := New(100, 20)
	chunks := s.Split(text)

	if len(chunks) != 2 {
		t.Fatalf("Expected 2 chunks, got %d", len(chunks))
	}
	// First chunk breaks at the paragraph boundary, not the raw window edge.
	if chunks[0] != para1 {
		t.Errorf("Chunk 0: expected first paragraph, got %q", chunks[0])
	}
	if !strings.HasSuffix(chunks[1], para2) {
		t.Errorf("Chunk 1 should end with the second paragraph")
	}
}

func TestSplit_SentenceBoundary(t *testing.T) {
	sentence := strings.Repeat("x", 70) + ". "
	rest := strings.Repeat("y", 50)
	text := sentence + rest // 122 chars, no paragraph breaks

	s, _ := New(100, 20)
	chunks := s.Split(text)

	if len(chunks) != 2 {
		t.Fatalf("Expected 2 chunks, got %d", len(chunks))
	}
	// Sentence break keeps the period on the first chunk.
	if !strings.HasSuffix(chunks[0], ".") {
		t.Errorf("Chunk 0 should end at the sentence boundary, got %q", chunks[0])
	}
	if !strings.HasSuffix(chunks[1], rest) {
		t.Errorf("Chunk 1 should contain the remainder")
	}
}

// Boundary backoff combined with a large overlap must not stall the window.
func TestSplit_ProgressWithLargeOverlap(t *testing.T) {
	text := strings.Repeat(strings.Repeat("w", 51)+"\n\n", 40)
	s, _ := New(100, 60)

	chunks := s.Split(text)
	if len(chunks) == 0 {
		t.Fatal("Expected chunks")
	}
	for i, chunk := range chunks {
		if chunk == "" {
			t.Errorf("Chunk %d is empty", i)
		}
		if len(chunk) > 100 {
			t.Errorf("Chunk %d has %d chars, want <= 100", i, len(chunk))
		}
	}
}

func TestSplit_NeverReturnsEmptyChunks(t *testing.T) {
	text := strings.Repeat("text. ", 30) + strings.Repeat(" \n\n ", 20) + strings.Repeat("more. ", 30)
	s, _ := New(50, 10)

	for i, chunk := range s.Split(text) {
		if strings.TrimSpace(chunk) == "" {
			t.Errorf("Chunk %d is empty after trimming", i)
		}
	}
}
