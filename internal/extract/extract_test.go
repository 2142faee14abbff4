package extract

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindForPath(t *testing.T) {
	cases := []struct {
		path string
		kind Kind
	}{
		{"notes.txt", KindText},
		{"README.md", KindMarkdown},
		{"guide.markdown", KindMarkdown},
		{"paper.PDF", KindPDF},
		{"dir/nested/file.Txt", KindText},
	}
	for _, tc := range cases {
		kind, err := KindForPath(tc.path)
		require.NoError(t, err, tc.path)
		assert.Equal(t, tc.kind, kind, tc.path)
	}
}

func TestKindForPath_Unsupported(t *testing.T) {
	for _, path := range []string{"archive.zip", "image.png", "noextension"} {
		_, err := KindForPath(path)
		assert.Error(t, err, path)
	}
}

func TestExtract_PlainText(t *testing.T) {
	text, err := Extract([]byte("  hello\nworld  \n"), KindText)
	require.NoError(t, err)
	assert.Equal(t, "hello\nworld", text)
}

func TestExtract_Markdown(t *testing.T) {
	text, err := Extract([]byte("# Title\n\nBody."), KindMarkdown)
	require.NoError(t, err)
	assert.Equal(t, "# Title\n\nBody.", text)
}

func TestExtract_InvalidUTF8(t *testing.T) {
	_, err := Extract([]byte{0xff, 0xfe, 0xfd}, KindText)
	require.Error(t, err)

	var extractErr *Error
	require.True(t, errors.As(err, &extractErr), "corrupt input must fail with a typed error")
	assert.Equal(t, KindText, extractErr.Kind)
}

func TestExtract_EmptyContent(t *testing.T) {
	_, err := Extract([]byte("   \n  "), KindText)
	require.Error(t, err)
}

func TestExtract_CorruptPDF(t *testing.T) {
	_, err := Extract([]byte("definitely not a pdf"), KindPDF)
	require.Error(t, err)

	var extractErr *Error
	require.True(t, errors.As(err, &extractErr))
	assert.Equal(t, KindPDF, extractErr.Kind)
}

func TestExtract_UnsupportedKind(t *testing.T) {
	_, err := Extract([]byte("data"), Kind("docx"))
	require.Error(t, err)
}
