package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrStoreUnreachable means the vector store failed its startup health check.
	ErrStoreUnreachable = errors.New("vector store unreachable")

	// ErrDimensionMismatch means a vector's length does not match the
	// collection dimensionality.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// Error is the typed failure every store operation returns. For upserts,
// Written records how many points landed before the failing batch.
type Error struct {
	Op      string
	Written int
	Err     error
}

func (e *Error) Error() string {
	if e.Op == "upsert" {
		return fmt.Sprintf("store %s (%d points written): %v", e.Op, e.Written, e.Err)
	}
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
