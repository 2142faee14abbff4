// Package extract turns uploaded file bytes into plain text for the pipeline.
// Corrupt input fails with a typed error rather than producing partial
// garbage.
package extract

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/dslipak/pdf"
)

// Kind identifies a supported input format.
type Kind string

const (
	KindText     Kind = "txt"
	KindMarkdown Kind = "md"
	KindPDF      Kind = "pdf"
)

// Error is the typed extraction failure for one document.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindForPath maps a file extension to its Kind. Unsupported extensions
// return an error.
func KindForPath(path string) (Kind, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt":
		return KindText, nil
	case ".md", ".markdown":
		return KindMarkdown, nil
	case ".pdf":
		return KindPDF, nil
	default:
		return "", fmt.Errorf("unsupported file type %q", filepath.Ext(path))
	}
}

// Extract returns the plain text of data for the given kind.
func Extract(data []byte, kind Kind) (string, error) {
	switch kind {
	case KindText, KindMarkdown:
		return extractPlain(data, kind)
	case KindPDF:
		return extractPDF(data)
	default:
		return "", &Error{Kind: kind, Err: fmt.Errorf("unsupported kind")}
	}
}

func extractPlain(data []byte, kind Kind) (string, error) {
	if !utf8.Valid(data) {
		return "", &Error{Kind: kind, Err: fmt.Errorf("content is not valid UTF-8")}
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", &Error{Kind: kind, Err: fmt.Errorf("content is empty")}
	}
	return text, nil
}

// extractPDF pulls text page by page. Pages that fail to decode are skipped;
// a document yielding no text at all is an error.
func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &Error{Kind: KindPDF, Err: fmt.Errorf("open: %w", err)}
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if strings.TrimSpace(text) != "" {
			pages = append(pages, strings.TrimSpace(text))
		}
	}

	if len(pages) == 0 {
		return "", &Error{Kind: KindPDF, Err: fmt.Errorf("no extractable text")}
	}
	return strings.Join(pages, "\n\n"), nil
}
