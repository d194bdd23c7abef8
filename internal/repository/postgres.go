package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"roommatch/internal/model"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

// PgStore is the Postgres + pgvector implementation of VectorStore. Records
// from all collections share one table keyed by (collection, id); a registry
// table tracks which collections exist and their embedding dimension.
type PgStore struct {
	db        *sqlx.DB
	dimension int
}

// NewPgStore connects to PostgreSQL and ensures the schema exists
func NewPgStore(dsn string, dimension, maxConn, maxIdleConn int) (*PgStore, error) {
	// Disable prepared statement caching to avoid "unnamed prepared statement
	// does not exist" errors behind pgbouncer-style poolers
	if !strings.Contains(dsn, "?") {
		dsn += "?prefer_simple_protocol=true"
	} else {
		dsn += "&prefer_simple_protocol=true"
	}

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &PgStore{db: db, dimension: dimension}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

// DB exposes the underlying handle so the user store can share the pool
func (s *PgStore) DB() *sqlx.DB {
	return s.db
}

// Close closes the database connection
func (s *PgStore) Close() error {
	return s.db.Close()
}

func (s *PgStore) ensureSchema() error {
	schema := fmt.Sprintf(`
		CREATE EXTENSION IF NOT EXISTS vector;

		CREATE TABLE IF NOT EXISTS collections (
			name       TEXT PRIMARY KEY,
			dimension  INT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS candidates (
			collection TEXT NOT NULL REFERENCES collections(name) ON DELETE CASCADE,
			id         TEXT NOT NULL,
			document   TEXT NOT NULL,
			metadata   JSONB,
			embedding  vector(%d) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (collection, id)
		);

		CREATE TABLE IF NOT EXISTS users (
			uuid       TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			student_id TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`, s.dimension)

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// Upsert writes records into a collection, creating it on first use
func (s *PgStore) Upsert(ctx context.Context, collection string, records []model.CandidateRecord) error {
	if len(records) == 0 {
		return nil
	}
	for _, rec := range records {
		if len(rec.Embedding.Slice()) != s.dimension {
			return fmt.Errorf("record %q: embedding dimension %d, store expects %d",
				rec.ID, len(rec.Embedding.Slice()), s.dimension)
		}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO collections (name, dimension) VALUES ($1, $2)
		ON CONFLICT (name) DO NOTHING
	`, collection, s.dimension)
	if err != nil {
		return fmt.Errorf("failed to register collection: %w", err)
	}

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO candidates (collection, id, document, metadata, embedding)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (collection, id) DO UPDATE
		SET document = EXCLUDED.document,
		    metadata = EXCLUDED.metadata,
		    embedding = EXCLUDED.embedding,
		    updated_at = NOW()
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.ExecContext(ctx, collection, rec.ID, rec.Document, rec.Metadata, rec.Embedding); err != nil {
			return fmt.Errorf("failed to upsert record %q: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit upsert: %w", err)
	}
	return nil
}

// Query returns the k nearest candidates by cosine distance. Embeddings are
// L2-normalized on ingestion, so <=> gives cosine-equivalent ordering.
func (s *PgStore) Query(ctx context.Context, collection string, embedding []float32, k int) ([]model.Retrieved, error) {
	if k <= 0 {
		k = 5
	}
	if err := s.mustExist(ctx, collection); err != nil {
		return nil, err
	}

	var hits []model.Retrieved
	err := s.db.SelectContext(ctx, &hits, `
		SELECT id, document, metadata, embedding, created_at, updated_at,
		       embedding <=> $1 AS distance
		FROM candidates
		WHERE collection = $2
		ORDER BY distance ASC
		LIMIT $3
	`, pgvector.NewVector(embedding), collection, k)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection %q: %w", collection, err)
	}
	return hits, nil
}

// Count returns the record count; ErrUnknownCollection when never created
func (s *PgStore) Count(ctx context.Context, collection string) (int, error) {
	if err := s.mustExist(ctx, collection); err != nil {
		return 0, err
	}
	var count int
	err := s.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM candidates WHERE collection = $1`, collection)
	if err != nil {
		return 0, fmt.Errorf("failed to count collection %q: %w", collection, err)
	}
	return count, nil
}

// Reset drops a collection and its records
func (s *PgStore) Reset(ctx context.Context, collection string) error {
	if err := s.mustExist(ctx, collection); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM collections WHERE name = $1`, collection)
	if err != nil {
		return fmt.Errorf("failed to reset collection %q: %w", collection, err)
	}
	return nil
}

func (s *PgStore) mustExist(ctx context.Context, collection string) error {
	var name string
	err := s.db.GetContext(ctx, &name, `SELECT name FROM collections WHERE name = $1`, collection)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: %q", ErrUnknownCollection, collection)
	}
	if err != nil {
		return fmt.Errorf("failed to look up collection %q: %w", collection, err)
	}
	return nil
}

var _ VectorStore = (*PgStore)(nil)
