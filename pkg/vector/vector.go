// Package vector provides named collections of embedding vectors with cosine
// nearest-neighbor search. Backends: in-memory, PostgreSQL with pgvector,
// and embedded SQLite.
package vector

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

var (
	ErrCollectionNotFound = errors.New("collection not found")
	ErrInvalidCollection  = errors.New("invalid collection name")
	ErrDimensionMismatch  = errors.New("vector dimension mismatch")
	ErrUnknownBackend     = errors.New("unknown vector backend")
)

var collectionPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,62}$`)

// Point is a vector stored under a stable ID with an arbitrary payload.
type Point struct {
	ID      string
	Vector  []float64
	Payload map[string]any
}

// Hit is a query result. Score is the cosine similarity to the query vector.
type Hit struct {
	ID      string
	Score   float64
	Payload map[string]any
}

// Index stores points in named collections. All backends use cosine
// distance. Implementations must be safe for concurrent use.
type Index interface {
	Exists(ctx context.Context, collection string) (bool, error)
	Create(ctx context.Context, collection string, dimension int) error
	Count(ctx context.Context, collection string) (int, error)
	Upsert(ctx context.Context, collection string, points []Point) error
	Query(ctx context.Context, collection string, vector []float64, limit int) ([]Hit, error)
	Close() error
}

// ValidateCollection rejects names that are not safe SQL identifiers.
func ValidateCollection(name string) error {
	if !collectionPattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidCollection, name)
	}
	return nil
}
