// Package repository holds the raw-SQL data access layer over the local
// sqlite store. Repositories return models.ErrNotFound for missing rows and
// wrap everything else.
package repository

import (
	"database/sql"
	"time"
)

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	value := t.Time
	return &value
}
