package storage

// Payload field keys for stored points.
const (
	PayloadContext    = "context"     // chunk text
	PayloadDocument   = "document"    // owning document name
	PayloadChunkIndex = "chunk_index" // zero-based position within the document
)

// DefaultUpsertBatchSize bounds how many points go into one upsert request.
const DefaultUpsertBatchSize = 512

// scrollPageSize is the page size for cursor-based listing.
const scrollPageSize = 100

// Point is one vector plus payload headed for the collection. ID must be a
// UUID unique across ingestion runs.
type Point struct {
	ID         string
	Vector     []float32
	Text       string
	Document   string
	ChunkIndex int
}

// ScoredMatch is a search result: a stored point's payload plus its cosine
// similarity score (higher is more similar).
type ScoredMatch struct {
	ID         string
	Score      float32
	Text       string
	Document   string
	ChunkIndex int
}

// DocumentInfo aggregates the stored points of one document.
type DocumentInfo struct {
	Name     string
	Chunks   int
	PointIDs []string
}
