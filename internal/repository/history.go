package repository

import (
	"context"
	"fmt"
	"time"

	"bizbooster/internal/database"
)

// HistoryRepository is the append-only modification log. Entries are never
// updated, reordered or truncated; insertion order is the read order.
type HistoryRepository struct {
	db *database.DB
}

func NewHistoryRepository(db *database.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

func (r *HistoryRepository) Append(ctx context.Context, clientID, entry string, at time.Time) error {
	_, err := r.db.SQL.ExecContext(ctx,
		`INSERT INTO client_history (client_id, entry, created_at) VALUES (?, ?, ?)`,
		clientID, entry, at,
	)
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

// List returns the client's history in insertion order. Most-recent-first
// display is the presentation layer's concern.
func (r *HistoryRepository) List(ctx context.Context, clientID string) ([]string, error) {
	rows, err := r.db.SQL.QueryContext(ctx,
		`SELECT entry FROM client_history WHERE client_id = ? ORDER BY id ASC`,
		clientID,
	)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var entries []string
	for rows.Next() {
		var entry string
		if err := rows.Scan(&entry); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *HistoryRepository) Count(ctx context.Context, clientID string) (int, error) {
	var count int
	err := r.db.SQL.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM client_history WHERE client_id = ?`, clientID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count history: %w", err)
	}
	return count, nil
}
