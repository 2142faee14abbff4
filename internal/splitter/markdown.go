package splitter

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"go.abhg.dev/goldmark/toc"
)

// MarkdownSplitter splits markdown at H1/H2 boundaries so chunks follow the
// document's own structure, then window-splits any section that exceeds the
// chunk size. Each chunk carries its header hierarchy as a prefix so retrieval
// keeps section context.
type MarkdownSplitter struct {
	parser goldmark.Markdown
	window *Splitter
}

// NewMarkdown creates a MarkdownSplitter that re-splits oversized sections
// with the given window splitter.
func NewMarkdown(window *Splitter) *MarkdownSplitter {
	md := goldmark.New(
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
	)
	return &MarkdownSplitter{parser: md, window: window}
}

// section is one header-delimited region of the document.
type section struct {
	headerPath string
	content    string
}

// Split chunks markdown source. Documents without headers fall back to plain
// window splitting.
func (m *MarkdownSplitter) Split(source []byte) ([]string, error) {
	reader := text.NewReader(source)
	doc := m.parser.Parser().Parse(reader)

	tree, err := toc.Inspect(doc, source,
		toc.MinDepth(1),
		toc.MaxDepth(2),
		toc.Compact(true),
	)
	if err != nil {
		return nil, fmt.Errorf("inspect markdown structure: %w", err)
	}

	if len(tree.Items) == 0 {
		return m.window.Split(string(source)), nil
	}

	sections := m.collectSections(doc, source, tree.Items)

	var chunks []string
	for _, sec := range sections {
		body := sec.content
		if sec.headerPath != "" {
			body = sec.headerPath + "\n\n" + sec.content
		}
		if len([]rune(body)) <= m.window.ChunkSize() {
			if trimmed := strings.TrimSpace(body); trimmed != "" {
				chunks = append(chunks, trimmed)
			}
			continue
		}
		chunks = append(chunks, m.window.Split(body)...)
	}

	return chunks, nil
}

// collectSections flattens the TOC tree in document order and slices the
// source between consecutive heading starts.
func (m *MarkdownSplitter) collectSections(doc ast.Node, source []byte, items toc.Items) []section {
	type flatItem struct {
		headerPath string
		node       ast.Node
	}

	var flat []flatItem
	var walk func(items toc.Items, ancestors []string)
	walk = func(items toc.Items, ancestors []string) {
		for _, item := range items {
			path := append(ancestors[:len(ancestors):len(ancestors)], string(item.Title))
			node := headingByID(doc, string(item.ID))
			if node != nil && node.Lines().Len() > 0 {
				flat = append(flat, flatItem{headerPath: formatHeaderPath(path), node: node})
			}
			if len(item.Items) > 0 {
				walk(item.Items, path)
			}
		}
	}
	walk(items, nil)

	sections := make([]section, 0, len(flat))
	for i, item := range flat {
		start := item.node.Lines().At(0).Start
		end := len(source)
		if i+1 < len(flat) {
			end = flat[i+1].node.Lines().At(0).Start
		}
		sections = append(sections, section{
			headerPath: item.headerPath,
			content:    strings.TrimSpace(string(source[start:end])),
		})
	}
	return sections
}

// formatHeaderPath renders a header hierarchy like
// "# Installation > ## Prerequisites".
func formatHeaderPath(path []string) string {
	parts := make([]string, len(path))
	for i, title := range path {
		parts[i] = fmt.Sprintf("%s %s", strings.Repeat("#", i+1), title)
	}
	return strings.Join(parts, " > ")
}

// headingByID locates a heading node by its auto-generated ID.
func headingByID(node ast.Node, id string) ast.Node {
	var found ast.Node
	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering && n.Kind() == ast.KindHeading {
			attr, ok := n.AttributeString("id")
			if ok && string(attr.([]byte)) == id {
				found = n
				return ast.WalkStop, nil
			}
		}
		return ast.WalkContinue, nil
	})
	return found
}
