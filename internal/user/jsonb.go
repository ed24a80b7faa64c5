// AngelaMos | 2026
// jsonb.go

package user

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONB maps a nullable Postgres jsonb column onto T. Valid is false for
// SQL NULL.
type JSONB[T any] struct {
	V     T
	Valid bool
}

func NewJSONB[T any](v T) JSONB[T] {
	return JSONB[T]{V: v, Valid: true}
}

func (j *JSONB[T]) Scan(src any) error {
	var zero T
	j.V, j.Valid = zero, false

	var raw []byte
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("jsonb: unsupported source type %T", src)
	}

	if string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, &j.V); err != nil {
		return fmt.Errorf("jsonb: %w", err)
	}
	j.Valid = true
	return nil
}

func (j JSONB[T]) Value() (driver.Value, error) {
	if !j.Valid {
		return nil, nil
	}
	b, err := json.Marshal(j.V)
	if err != nil {
		return nil, fmt.Errorf("jsonb: %w", err)
	}
	return string(b), nil
}
