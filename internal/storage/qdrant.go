// Package storage is a thin CRUD façade over one named collection in a
// remote Qdrant-compatible vector index.
package storage

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/qdrant/go-client/qdrant"
)

// DefaultTimeout bounds every network operation against the store.
const DefaultTimeout = 30 * time.Second

// Store wraps the Qdrant client for a single collection. It holds no state
// beyond the connection handle, collection name and expected dimensionality;
// the handle is safe to reuse across calls.
type Store struct {
	client     *qdrant.Client
	collection string
	dimension  uint64
	timeout    time.Duration
}

// NewStore connects to the vector store and validates connectivity with a
// health check, retrying with exponential backoff before failing fast.
func NewStore(host string, port int, collection string, dimension uint64) (*Store, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("create qdrant client: %w", err)
	}

	s := &Store{
		client:     client,
		collection: collection,
		dimension:  dimension,
		timeout:    DefaultTimeout,
	}

	if err := s.healthCheckWithRetry(context.Background()); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %v", ErrStoreUnreachable, err)
	}

	return s, nil
}

// Collection returns the collection name this store operates on.
func (s *Store) Collection() string { return s.collection }

// healthCheckWithRetry performs the startup health check with exponential
// backoff. Initial interval 500ms, max interval 10s, max elapsed 30s.
func (s *Store) healthCheckWithRetry(ctx context.Context) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second

	return backoff.Retry(func() error {
		return s.Health(ctx)
	}, backoff.WithContext(b, ctx))
}

// Health performs a single health check against the store.
func (s *Store) Health(ctx context.Context) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	result, err := s.client.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	if result == nil || result.Title == "" {
		return fmt.Errorf("health check returned invalid response")
	}
	return nil
}

// EnsureCollection creates the collection with cosine distance if it does not
// exist. Idempotent: an existing collection is left untouched, and its
// dimensionality is not verified (a mismatch surfaces later as an upsert or
// search error from the store).
func (s *Store) EnsureCollection(ctx context.Context) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return &Error{Op: "ensure collection", Err: err}
	}
	if exists {
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     s.dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return &Error{Op: "ensure collection", Err: err}
	}
	return nil
}

// UpsertPoints writes points in sequential batches of at most
// DefaultUpsertBatchSize. A batch failure stops further batches; the returned
// count is how many points were written before the failure.
func (s *Store) UpsertPoints(ctx context.Context, points []*Point) (int, error) {
	for i, p := range points {
		if uint64(len(p.Vector)) != s.dimension {
			return 0, &Error{Op: "upsert", Err: fmt.Errorf(
				"%w: point %d has %d dimensions, expected %d",
				ErrDimensionMismatch, i, len(p.Vector), s.dimension)}
		}
	}

	written := 0
	for i := 0; i < len(points); i += DefaultUpsertBatchSize {
		end := min(i+DefaultUpsertBatchSize, len(points))
		batch := points[i:end]

		structs := make([]*qdrant.PointStruct, len(batch))
		for j, p := range batch {
			structs[j] = &qdrant.PointStruct{
				Id:      qdrant.NewIDUUID(p.ID),
				Vectors: qdrant.NewVectors(p.Vector...),
				Payload: qdrant.NewValueMap(map[string]any{
					PayloadContext:    p.Text,
					PayloadDocument:   p.Document,
					PayloadChunkIndex: p.ChunkIndex,
				}),
			}
		}

		if err := s.upsertBatch(ctx, structs); err != nil {
			return written, &Error{Op: "upsert", Written: written, Err: err}
		}
		written += len(batch)
	}

	return written, nil
}

func (s *Store) upsertBatch(ctx context.Context, points []*qdrant.PointStruct) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         points,
	})
	return err
}

// Search returns up to limit matches ordered by descending similarity.
// A failed search is an error, never an empty result.
func (s *Store) Search(ctx context.Context, vector []float32, limit int) ([]ScoredMatch, error) {
	if uint64(len(vector)) != s.dimension {
		return nil, &Error{Op: "search", Err: fmt.Errorf(
			"%w: query has %d dimensions, expected %d",
			ErrDimensionMismatch, len(vector), s.dimension)}
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	results, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, &Error{Op: "search", Err: err}
	}

	matches := make([]ScoredMatch, 0, len(results))
	for _, result := range results {
		payload := result.Payload
		matches = append(matches, ScoredMatch{
			ID:         result.Id.GetUuid(),
			Score:      result.Score,
			Text:       payload[PayloadContext].GetStringValue(),
			Document:   payload[PayloadDocument].GetStringValue(),
			ChunkIndex: int(payload[PayloadChunkIndex].GetIntegerValue()),
		})
	}
	return matches, nil
}

// ListDocuments scrolls through all stored points and aggregates them by
// document name. It exists so callers can audit what has been ingested
// without separate bookkeeping.
func (s *Store) ListDocuments(ctx context.Context) ([]DocumentInfo, error) {
	byName := make(map[string]*DocumentInfo)
	var offset *qdrant.PointId

	for {
		resp, err := s.scrollPage(ctx, offset)
		if err != nil {
			return nil, &Error{Op: "list documents", Err: err}
		}

		for _, result := range resp.GetResult() {
			name := result.Payload[PayloadDocument].GetStringValue()
			if name == "" {
				continue
			}
			info, ok := byName[name]
			if !ok {
				info = &DocumentInfo{Name: name}
				byName[name] = info
			}
			info.Chunks++
			info.PointIDs = append(info.PointIDs, result.Id.GetUuid())
		}

		// The scroll offset is inclusive, so the cursor must be the first
		// unreturned ID from the response, never the last returned one.
		offset = resp.GetNextPageOffset()
		if offset == nil {
			break
		}
	}

	docs := make([]DocumentInfo, 0, len(byName))
	for _, info := range byName {
		docs = append(docs, *info)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Name < docs[j].Name })
	return docs, nil
}

// scrollPage goes through the low-level points client because the high-level
// Scroll drops the next-page cursor from the response.
func (s *Store) scrollPage(ctx context.Context, offset *qdrant.PointId) (*qdrant.ScrollResponse, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	return s.client.GetPointsClient().Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: s.collection,
		Limit:          qdrant.PtrOf(uint32(scrollPageSize)),
		Offset:         offset,
		WithPayload:    qdrant.NewWithPayload(true),
	})
}

// DeleteDocument removes every point whose document payload equals name,
// using a server-side filter so documents larger than one scroll page are
// deleted correctly.
func (s *Store) DeleteDocument(ctx context.Context, name string) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collection,
		Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch(PayloadDocument, name),
			},
		}),
	})
	if err != nil {
		return &Error{Op: "delete document", Err: err}
	}
	return nil
}

// DeleteCollection drops the whole collection. Irreversible; used for full
// resets.
func (s *Store) DeleteCollection(ctx context.Context) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	if err := s.client.DeleteCollection(ctx, s.collection); err != nil {
		return &Error{Op: "delete collection", Err: err}
	}
	return nil
}

// PointsCount returns the approximate number of points in the collection.
func (s *Store) PointsCount(ctx context.Context) (uint64, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	info, err := s.client.GetCollectionInfo(ctx, s.collection)
	if err != nil {
		return 0, &Error{Op: "collection info", Err: err}
	}
	return info.GetPointsCount(), nil
}

// Close closes the underlying client connection.
func (s *Store) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// opCtx bounds a single network operation.
func (s *Store) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}
