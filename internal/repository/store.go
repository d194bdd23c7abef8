package repository

import (
	"context"
	"errors"

	"roommatch/internal/model"
)

// ErrUnknownCollection is returned when an operation names a collection that
// was never created. Absence is an error, not an empty result, so a misspelled
// collection name cannot masquerade as "no matches".
var ErrUnknownCollection = errors.New("unknown collection")

// VectorStore is the persistence boundary for candidate records. Both
// implementations order query results by ascending cosine distance; tie order
// between equal distances is store-defined and not guaranteed stable.
type VectorStore interface {
	// Upsert writes records into a collection, overwriting existing ids.
	// Best-effort: no partial-failure rollback beyond a single batch.
	Upsert(ctx context.Context, collection string, records []model.CandidateRecord) error

	// Query returns the k nearest candidates to the given embedding,
	// ascending by distance.
	Query(ctx context.Context, collection string, embedding []float32, k int) ([]model.Retrieved, error)

	// Count returns the number of records in a collection. A collection that
	// was never created yields ErrUnknownCollection.
	Count(ctx context.Context, collection string) (int, error)

	// Reset removes a collection and all its records
	Reset(ctx context.Context, collection string) error
}
