package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bizbooster/internal/database"
	"bizbooster/internal/models"
)

// NotificationRepository stores scheduled reminder notifications. client_id
// is the primary key, so a client can never hold two pending notifications;
// scheduling over an existing one replaces it atomically.
type NotificationRepository struct {
	db *database.DB
}

func NewNotificationRepository(db *database.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Upsert schedules or replaces the pending notification for a client.
func (r *NotificationRepository) Upsert(ctx context.Context, n *models.PendingNotification) error {
	_, err := r.db.SQL.ExecContext(ctx,
		`INSERT INTO pending_notifications (client_id, title, body, fire_at, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (client_id) DO UPDATE SET
		    title = excluded.title,
		    body = excluded.body,
		    fire_at = excluded.fire_at,
		    created_at = excluded.created_at`,
		n.ClientID, n.Title, n.Body, n.FireAt, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("schedule notification: %w", err)
	}
	return nil
}

// Delete cancels the pending notification for a client. Cancelling an absent
// one is a no-op.
func (r *NotificationRepository) Delete(ctx context.Context, clientID string) error {
	_, err := r.db.SQL.ExecContext(ctx,
		`DELETE FROM pending_notifications WHERE client_id = ?`, clientID)
	if err != nil {
		return fmt.Errorf("cancel notification: %w", err)
	}
	return nil
}

func (r *NotificationRepository) Get(ctx context.Context, clientID string) (*models.PendingNotification, error) {
	row := r.db.SQL.QueryRowContext(ctx,
		`SELECT client_id, title, body, fire_at, created_at
		 FROM pending_notifications WHERE client_id = ?`, clientID)

	n, err := scanNotification(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	return n, err
}

// ListDue returns notifications whose fire time has passed.
func (r *NotificationRepository) ListDue(ctx context.Context, now time.Time) ([]*models.PendingNotification, error) {
	rows, err := r.db.SQL.QueryContext(ctx,
		`SELECT client_id, title, body, fire_at, created_at
		 FROM pending_notifications WHERE fire_at <= ? ORDER BY fire_at ASC`, now)
	if err != nil {
		return nil, fmt.Errorf("list due notifications: %w", err)
	}
	defer rows.Close()
	return collectNotifications(rows)
}

// ListPending enumerates every scheduled notification.
func (r *NotificationRepository) ListPending(ctx context.Context) ([]*models.PendingNotification, error) {
	rows, err := r.db.SQL.QueryContext(ctx,
		`SELECT client_id, title, body, fire_at, created_at
		 FROM pending_notifications ORDER BY fire_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list pending notifications: %w", err)
	}
	defer rows.Close()
	return collectNotifications(rows)
}

func collectNotifications(rows *sql.Rows) ([]*models.PendingNotification, error) {
	var notifications []*models.PendingNotification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func scanNotification(row rowScanner) (*models.PendingNotification, error) {
	n := &models.PendingNotification{}
	err := row.Scan(&n.ClientID, &n.Title, &n.Body, &n.FireAt, &n.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan notification: %w", err)
	}
	return n, nil
}
