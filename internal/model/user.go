package model

import "time"

// User is a PII record kept outside the matching pipeline. Only the opaque
// UUID ever reaches the embedding/LLM side.
type User struct {
	UUID      string    `json:"uuid" db:"uuid"`
	Name      string    `json:"name" db:"name"`
	StudentID string    `json:"student_id" db:"student_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// SaveUserRequest is the body for POST /users
type SaveUserRequest struct {
	Name      string `json:"name" binding:"required"`
	StudentID string `json:"student_id" binding:"required"`
}
