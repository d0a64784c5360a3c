package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"bizbooster/internal/database"
	"bizbooster/internal/models"
)

type ClientRepository struct {
	db *database.DB
}

func NewClientRepository(db *database.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

const clientColumns = `id, name, phone, email, product, notes, tags, status,
	first_quote_date, validation_date, validated_amount,
	last_interaction, reminder_date, created_at`

func (r *ClientRepository) Create(ctx context.Context, client *models.Client) error {
	tags, err := client.Tags.MarshalDB()
	if err != nil {
		return fmt.Errorf("serialize tags: %w", err)
	}

	_, err = r.db.SQL.ExecContext(ctx,
		`INSERT INTO clients (id, name, phone, email, product, notes, tags, status,
		                      first_quote_date, validation_date, validated_amount,
		                      last_interaction, reminder_date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		client.ID, client.Name, client.Phone, client.Email, client.Product,
		client.Notes, tags, string(client.Status),
		nullTime(client.FirstQuoteDate), nullTime(client.ValidationDate),
		client.ValidatedAmount, nullTime(client.LastInteraction),
		nullTime(client.ReminderDate), client.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert client: %w", err)
	}
	return nil
}

func (r *ClientRepository) GetByID(ctx context.Context, id string) (*models.Client, error) {
	row := r.db.SQL.QueryRowContext(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE id = ?`, id)
	return scanClient(row)
}

// GetByPhone returns the first client with the given phone number. Phone is
// the dedupe key for CSV import.
func (r *ClientRepository) GetByPhone(ctx context.Context, phone string) (*models.Client, error) {
	row := r.db.SQL.QueryRowContext(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE phone = ? LIMIT 1`, phone)
	return scanClient(row)
}

// Update rewrites every mutable field of the row.
func (r *ClientRepository) Update(ctx context.Context, client *models.Client) error {
	tags, err := client.Tags.MarshalDB()
	if err != nil {
		return fmt.Errorf("serialize tags: %w", err)
	}

	res, err := r.db.SQL.ExecContext(ctx,
		`UPDATE clients SET
		    name = ?, phone = ?, email = ?, product = ?, notes = ?, tags = ?,
		    status = ?, first_quote_date = ?, validation_date = ?,
		    validated_amount = ?, last_interaction = ?, reminder_date = ?
		 WHERE id = ?`,
		client.Name, client.Phone, client.Email, client.Product, client.Notes,
		tags, string(client.Status),
		nullTime(client.FirstQuoteDate), nullTime(client.ValidationDate),
		client.ValidatedAmount, nullTime(client.LastInteraction),
		nullTime(client.ReminderDate), client.ID,
	)
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	if affected == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *ClientRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.SQL.ExecContext(ctx, `DELETE FROM clients WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	if affected == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *ClientRepository) List(ctx context.Context, filter models.ListFilter) ([]*models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients`
	var conditions []string
	var args []any

	if filter.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, string(*filter.Status))
	}
	if filter.Product != "" {
		conditions = append(conditions, "product = ?")
		args = append(args, filter.Product)
	}
	if filter.Search != "" {
		conditions = append(conditions,
			"(name LIKE ? OR phone LIKE ? OR email LIKE ? OR product LIKE ?)")
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern, pattern, pattern)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY " + orderClause(filter.Sort)

	rows, err := r.db.SQL.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var clients []*models.Client
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, client)
	}
	return clients, rows.Err()
}

// CountByStatus returns the number of clients in each lifecycle state.
func (r *ClientRepository) CountByStatus(ctx context.Context) (map[models.Status]int, error) {
	rows, err := r.db.SQL.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM clients GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count clients by status: %w", err)
	}
	defer rows.Close()

	counts := map[models.Status]int{
		models.StatusInProgress: 0,
		models.StatusValidated:  0,
		models.StatusCancelled:  0,
	}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[models.Status(status)] = count
	}
	return counts, rows.Err()
}

// AverageDecisionDays is the mean gap, in days, between last interaction and
// reminder date over validated clients that have both dates.
func (r *ClientRepository) AverageDecisionDays(ctx context.Context) (float64, error) {
	var avg sql.NullFloat64
	err := r.db.SQL.QueryRowContext(ctx,
		`SELECT AVG(julianday(reminder_date) - julianday(last_interaction))
		 FROM clients
		 WHERE status = ? AND reminder_date IS NOT NULL AND last_interaction IS NOT NULL`,
		string(models.StatusValidated),
	).Scan(&avg)
	if err != nil {
		return 0, fmt.Errorf("average decision days: %w", err)
	}
	if !avg.Valid {
		return 0, nil
	}
	return avg.Float64, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClient(row rowScanner) (*models.Client, error) {
	client := &models.Client{}
	var (
		tags            string
		status          string
		firstQuoteDate  sql.NullTime
		validationDate  sql.NullTime
		lastInteraction sql.NullTime
		reminderDate    sql.NullTime
	)

	err := row.Scan(
		&client.ID, &client.Name, &client.Phone, &client.Email,
		&client.Product, &client.Notes, &tags, &status,
		&firstQuoteDate, &validationDate, &client.ValidatedAmount,
		&lastInteraction, &reminderDate, &client.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan client: %w", err)
	}

	if err := client.Tags.UnmarshalDB(tags); err != nil {
		return nil, fmt.Errorf("parse tags: %w", err)
	}
	client.Status = models.Status(status)
	client.FirstQuoteDate = timePtr(firstQuoteDate)
	client.ValidationDate = timePtr(validationDate)
	client.LastInteraction = timePtr(lastInteraction)
	client.ReminderDate = timePtr(reminderDate)
	return client, nil
}

func orderClause(sort models.SortOption) string {
	switch sort {
	case models.SortLastInteractionOldest:
		return "last_interaction ASC"
	case models.SortReminderDateRecent:
		return "reminder_date DESC"
	case models.SortReminderDateOldest:
		return "reminder_date ASC"
	case models.SortNameAscending:
		return "name COLLATE NOCASE ASC"
	case models.SortNameDescending:
		return "name COLLATE NOCASE DESC"
	default:
		return "last_interaction DESC"
	}
}
