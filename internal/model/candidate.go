package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/pgvector/pgvector-go"
)

// CandidateRecord is a single entry in a vector collection: either an
// apartment listing or a student/roommate profile chunk. Records are created
// at ingestion time and only change by re-ingestion.
type CandidateRecord struct {
	ID        string          `json:"id" db:"id"`
	Document  string          `json:"document" db:"document"`
	Metadata  JSONMap         `json:"metadata,omitempty" db:"metadata"`
	Embedding pgvector.Vector `json:"-" db:"embedding"`
	CreatedAt time.Time       `json:"created_at,omitempty" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at,omitempty" db:"updated_at"`
}

// Retrieved is a candidate paired with its cosine distance to the query
// embedding. Smaller distance means more similar.
type Retrieved struct {
	CandidateRecord
	Distance float64 `json:"distance" db:"distance"`
}

// JSONMap represents a JSONB metadata field
type JSONMap map[string]interface{}

// Value implements driver.Valuer interface
func (j JSONMap) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner interface
func (j *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return json.Unmarshal([]byte(value.(string)), j)
	}
	return json.Unmarshal(bytes, j)
}
