package repository

import (
	"context"
	"errors"
	"testing"

	"roommatch/internal/model"

	"github.com/pgvector/pgvector-go"
)

func record(id string, embedding []float32) model.CandidateRecord {
	return model.CandidateRecord{
		ID:        id,
		Document:  "doc " + id,
		Metadata:  model.JSONMap{},
		Embedding: pgvector.NewVector(embedding),
	}
}

func TestMemoryStoreQueryOrdering(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	// Unit vectors at decreasing similarity to (1, 0)
	err := store.Upsert(ctx, "apartments", []model.CandidateRecord{
		record("far", []float32{0, 1}),
		record("near", []float32{1, 0}),
		record("mid", []float32{0.7071, 0.7071}),
	})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	hits, err := store.Query(ctx, "apartments", []float32{1, 0}, 3)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(hits) != 3 {
		t.Fatalf("Query() returned %d hits, want 3", len(hits))
	}

	wantOrder := []string{"near", "mid", "far"}
	for i, want := range wantOrder {
		if hits[i].ID != want {
			t.Errorf("hit %d = %q, want %q", i, hits[i].ID, want)
		}
	}
	for i := 1; i < len(hits); i++ {
		if hits[i].Distance < hits[i-1].Distance {
			t.Errorf("distances not non-decreasing: %v then %v", hits[i-1].Distance, hits[i].Distance)
		}
	}
}

func TestMemoryStoreQueryLimit(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	err := store.Upsert(ctx, "apartments", []model.CandidateRecord{
		record("a", []float32{1, 0}),
		record("b", []float32{0, 1}),
	})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	hits, err := store.Query(ctx, "apartments", []float32{1, 0}, 1)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(hits) != 1 {
		t.Errorf("Query() returned %d hits, want 1", len(hits))
	}
}

func TestMemoryStoreUnknownCollection(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if _, err := store.Query(ctx, "missing", []float32{1}, 3); !errors.Is(err, ErrUnknownCollection) {
		t.Errorf("Query() error = %v, want ErrUnknownCollection", err)
	}
	if _, err := store.Count(ctx, "missing"); !errors.Is(err, ErrUnknownCollection) {
		t.Errorf("Count() error = %v, want ErrUnknownCollection", err)
	}
	if err := store.Reset(ctx, "missing"); !errors.Is(err, ErrUnknownCollection) {
		t.Errorf("Reset() error = %v, want ErrUnknownCollection", err)
	}
}

func TestMemoryStoreEmptyCollectionIsNotUnknown(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if err := store.Upsert(ctx, "students", nil); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	count, err := store.Count(ctx, "students")
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 0 {
		t.Errorf("Count() = %d, want 0", count)
	}

	hits, err := store.Query(ctx, "students", []float32{1}, 3)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("Query() returned %d hits, want 0", len(hits))
	}
}

func TestMemoryStoreUpsertOverwrites(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if err := store.Upsert(ctx, "apartments", []model.CandidateRecord{record("a", []float32{1, 0})}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	updated := record("a", []float32{0, 1})
	updated.Document = "updated"
	if err := store.Upsert(ctx, "apartments", []model.CandidateRecord{updated}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	count, err := store.Count(ctx, "apartments")
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 1 {
		t.Errorf("Count() = %d, want 1", count)
	}

	hits, err := store.Query(ctx, "apartments", []float32{0, 1}, 1)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if hits[0].Document != "updated" {
		t.Errorf("Document = %q, want %q", hits[0].Document, "updated")
	}
}
