// Package server exposes the pipeline over the Model Context Protocol.
package server

// IngestDocumentInput defines the input for the ingest_document tool.
type IngestDocumentInput struct {
	// Name is the document name, unique within the collection. Re-ingesting
	// under an existing name replaces the previous points wholesale.
	Name string `json:"name" jsonschema:"required,description=Document name (unique within the collection)"`
	// Text is the raw document text to index.
	Text string `json:"text" jsonschema:"required,description=Plain text content of the document"`
	// Markdown selects header-aware splitting for markdown content.
	Markdown bool `json:"markdown,omitempty" jsonschema:"description=Treat the text as markdown and split at header boundaries"`
}

// IngestDocumentOutput reports the ingestion outcome.
type IngestDocumentOutput struct {
	Name   string `json:"name"`
	Chunks int    `json:"chunks"`
}

// QueryInput defines the input for the query tool.
type QueryInput struct {
	// Query is the natural-language question.
	Query string `json:"query" jsonschema:"required,description=The natural-language question to answer from the indexed documents"`
}

// QuerySource identifies one retrieved passage that grounded the answer.
type QuerySource struct {
	Document   string  `json:"document"`
	ChunkIndex int     `json:"chunk_index"`
	Score      float32 `json:"score"`
}

// QueryOutput contains the generated answer. Incomplete is set when the
// generation stream failed after partial output; the partial answer is kept.
type QueryOutput struct {
	Answer     string        `json:"answer"`
	Incomplete bool          `json:"incomplete,omitempty"`
	Error      string        `json:"error,omitempty"`
	Sources    []QuerySource `json:"sources"`
}

// ListDocumentsInput takes no parameters.
type ListDocumentsInput struct{}

// DocumentSummary is one ingested document and its chunk count.
type DocumentSummary struct {
	Name   string `json:"name"`
	Chunks int    `json:"chunks"`
}

// ListDocumentsOutput lists everything currently ingested.
type ListDocumentsOutput struct {
	Documents []DocumentSummary `json:"documents"`
	Count     int               `json:"count"`
}

// DeleteDocumentInput defines the input for the delete_document tool.
type DeleteDocumentInput struct {
	// Name is the document whose points should be removed.
	Name string `json:"name" jsonschema:"required,description=Name of the document to delete from the index"`
}

// DeleteDocumentOutput confirms the deletion.
type DeleteDocumentOutput struct {
	Name    string `json:"name"`
	Deleted bool   `json:"deleted"`
}

// IndexStatusInput takes no parameters.
type IndexStatusInput struct{}

// IndexStatusOutput reports collection-level statistics.
type IndexStatusOutput struct {
	Collection string `json:"collection"`
	Documents  int    `json:"documents"`
	Points     uint64 `json:"points"`
}
