package splitter

import (
	"strings"
	"testing"
)

func newMarkdownForTest(t *testing.T, chunkSize, overlap int) *MarkdownSplitter {
	t.Helper()
	window, err := New(chunkSize, overlap)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return NewMarkdown(window)
}

// TestMarkdownSplit_BasicHeaders tests splitting with H1 and multiple H2s.
func TestMarkdownSplit_BasicHeaders(t *testing.T) {
	input := `# Getting Started

Introduction text here.

## Installation

Install steps here.

## Configuration

Config details here.
`

	m := newMarkdownForTest(t, 1000, 200)
	chunks, err := m.Split([]byte(input))
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}

	// Expect 3 chunks: H1, H1>H2 Installation, H1>H2 Configuration
	if len(chunks) != 3 {
		t.Fatalf("Expected 3 chunks, got %d", len(chunks))
	}

	if !strings.HasPrefix(chunks[0], "# Getting Started") {
		t.Errorf("Chunk 0 should carry its header path, got %q", chunks[0])
	}
	if !strings.Contains(chunks[0], "Introduction text here") {
		t.Errorf("Chunk 0 missing expected content")
	}

	if !strings.HasPrefix(chunks[1], "# Getting Started > ## Installation") {
		t.Errorf("Chunk 1 header path wrong, got %q", chunks[1])
	}
	if !strings.Contains(chunks[1], "Install steps here") {
		t.Errorf("Chunk 1 missing expected content")
	}

	if !strings.HasPrefix(chunks[2], "# Getting Started > ## Configuration") {
		t.Errorf("Chunk 2 header path wrong, got %q", chunks[2])
	}
	if !strings.Contains(chunks[2], "Config details here") {
		t.Errorf("Chunk 2 missing expected content")
	}
}

// TestMarkdownSplit_NoHeaders falls back to plain window splitting.
func TestMarkdownSplit_NoHeaders(t *testing.T) {
	input := "Just some plain text without any headers at all."

	m := newMarkdownForTest(t, 1000, 200)
	chunks, err := m.Split([]byte(input))
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}

	if len(chunks) != 1 {
		t.Fatalf("Expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != input {
		t.Errorf("Expected input text back, got %q", chunks[0])
	}
}

// TestMarkdownSplit_SubHeadersStayInSection verifies H3+ never split.
func TestMarkdownSplit_SubHeadersStayInSection(t *testing.T) {
	input := `# API Reference

Overview of the API.

## Methods

Available methods described here.

### Details

Some details here.

- List item 1
- List item 2
`

	m := newMarkdownForTest(t, 1000, 200)
	chunks, err := m.Split([]byte(input))
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}

	// 2 chunks (H1 and H2); the H3 stays inside the Methods section.
	if len(chunks) != 2 {
		t.Fatalf("Expected 2 chunks, got %d", len(chunks))
	}
	if !strings.Contains(chunks[1], "Details") {
		t.Errorf("Methods chunk missing H3 subsection")
	}
	if !strings.Contains(chunks[1], "List item 1") {
		t.Errorf("Methods chunk missing list content")
	}
}

// TestMarkdownSplit_OversizedSection verifies window re-splitting keeps the
// chunk size bound.
func TestMarkdownSplit_OversizedSection(t *testing.T) {
	body := strings.Repeat("This sentence pads the section well past the window size. ", 20)
	input := "# Big Section\n\n" + body

	m := newMarkdownForTest(t, 200, 40)
	chunks, err := m.Split([]byte(input))
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}

	if len(chunks) < 2 {
		t.Fatalf("Expected oversized section to be re-split, got %d chunks", len(chunks))
	}
	for i, chunk := range chunks {
		if len([]rune(chunk)) > 200 {
			t.Errorf("Chunk %d has %d chars, want <= 200", i, len([]rune(chunk)))
		}
		if strings.TrimSpace(chunk) == "" {
			t.Errorf("Chunk %d is empty", i)
		}
	}
}
