package models

import "time"

// SequenceCounter is one independent counter stream, keyed by a composite
// scope such as "ORDER:25082026" or "P09202526". LastValue only ever moves
// forward; every mutation goes through the sequence repository's atomic
// upsert.
type SequenceCounter struct {
	ScopeKey  string    `json:"scope_key" db:"scope_key"`
	LastValue int       `json:"last_value" db:"last_value"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
