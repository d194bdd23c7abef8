package repository

import (
	"context"
	"fmt"

	"roommatch/internal/model"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// UserStore keeps PII records (name, student id) away from the matching
// pipeline. The pipeline only ever sees the opaque uuid this store returns.
type UserStore struct {
	db *sqlx.DB
}

// NewUserStore creates a user store on an existing database handle
func NewUserStore(db *sqlx.DB) *UserStore {
	return &UserStore{db: db}
}

// SaveUser stores a user record and returns its generated uuid
func (s *UserStore) SaveUser(ctx context.Context, name, studentID string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (uuid, name, student_id) VALUES ($1, $2, $3)`,
		id, name, studentID)
	if err != nil {
		return "", fmt.Errorf("failed to save user: %w", err)
	}
	return id, nil
}

// FetchRecent returns the most recently created user records
func (s *UserStore) FetchRecent(ctx context.Context, limit int) ([]model.User, error) {
	if limit <= 0 {
		limit = 10
	}
	var users []model.User
	err := s.db.SelectContext(ctx, &users, `
		SELECT uuid, name, student_id, created_at
		FROM users
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}
	return users, nil
}
