package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"roommatch/internal/model"
)

// MemoryStore is a brute-force in-memory VectorStore. It serves tests and
// small embedded deployments; distances assume L2-normalized embeddings, so
// cosine distance is computed as 1 - dot(a, b).
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]model.CandidateRecord
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]model.CandidateRecord),
	}
}

// Upsert writes records, creating the collection on first use
func (s *MemoryStore) Upsert(_ context.Context, collection string, records []model.CandidateRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	coll, ok := s.collections[collection]
	if !ok {
		coll = make(map[string]model.CandidateRecord)
		s.collections[collection] = coll
	}
	for _, rec := range records {
		if rec.ID == "" {
			return fmt.Errorf("record with empty id")
		}
		coll[rec.ID] = rec
	}
	return nil
}

// Query returns the k nearest records ascending by cosine distance
func (s *MemoryStore) Query(_ context.Context, collection string, embedding []float32, k int) ([]model.Retrieved, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	coll, ok := s.collections[collection]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCollection, collection)
	}
	if k <= 0 {
		k = 5
	}

	hits := make([]model.Retrieved, 0, len(coll))
	for _, rec := range coll {
		hits = append(hits, model.Retrieved{
			CandidateRecord: rec,
			Distance:        1 - dot(rec.Embedding.Slice(), embedding),
		})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})
	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// Count returns the record count; ErrUnknownCollection when never created
func (s *MemoryStore) Count(_ context.Context, collection string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	coll, ok := s.collections[collection]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCollection, collection)
	}
	return len(coll), nil
}

// Reset removes a collection entirely
func (s *MemoryStore) Reset(_ context.Context, collection string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[collection]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCollection, collection)
	}
	delete(s.collections, collection)
	return nil
}

func dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

var _ VectorStore = (*MemoryStore)(nil)
