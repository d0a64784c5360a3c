// Package transfer handles CSV import and export of the client base.
//
// Import maps columns by header name; `name` and `phone` are required,
// `email` and `notes` optional. Phone is the dedupe key: a row whose phone
// already exists is skipped. Export emits a fixed column order with no
// quoting of embedded delimiters, a documented limitation inherited from
// the mobile app's format.
package transfer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"bizbooster/internal/models"
)

// exportColumns is the fixed export order.
var exportColumns = []string{"name", "phone", "email", "notes", "status", "lastInteraction"}

// Store is the slice of the client repository the transfer layer needs.
type Store interface {
	Create(ctx context.Context, client *models.Client) error
	GetByPhone(ctx context.Context, phone string) (*models.Client, error)
	List(ctx context.Context, filter models.ListFilter) ([]*models.Client, error)
}

type ImportResult struct {
	Created int
	Skipped int
}

// Import reads CSV rows and inserts unknown clients. Imported records start
// in progress with the interaction clock set to now, exactly as the mobile
// importer did; they do not pass through the trial gate.
func Import(ctx context.Context, store Store, r io.Reader, now func() time.Time) (ImportResult, error) {
	var result ImportResult

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return result, fmt.Errorf("read csv header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	nameIdx, hasName := columns["name"]
	phoneIdx, hasPhone := columns["phone"]
	if !hasName || !hasPhone {
		return result, fmt.Errorf("invalid csv: columns 'name' and 'phone' are required")
	}

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return result, fmt.Errorf("read csv row: %w", err)
		}
		if len(row) < 2 {
			result.Skipped++
			continue
		}

		phone := strings.TrimSpace(field(row, phoneIdx))
		if phone == "" {
			result.Skipped++
			continue
		}

		// Phone is the dedupe key.
		_, err = store.GetByPhone(ctx, phone)
		if err == nil {
			result.Skipped++
			continue
		}
		if !errors.Is(err, models.ErrNotFound) {
			return result, err
		}

		createdAt := now()
		client := &models.Client{
			ID:              uuid.NewString(),
			Name:            strings.TrimSpace(field(row, nameIdx)),
			Phone:           phone,
			Tags:            models.TagList{},
			Status:          models.StatusInProgress,
			LastInteraction: &createdAt,
			CreatedAt:       createdAt,
		}
		if idx, ok := columns["email"]; ok {
			client.Email = strings.TrimSpace(field(row, idx))
		}
		if idx, ok := columns["notes"]; ok {
			client.Notes = strings.TrimSpace(field(row, idx))
		}

		if err := store.Create(ctx, client); err != nil {
			return result, err
		}
		result.Created++
	}

	return result, nil
}

// Export writes the whole client base. Values containing the delimiter are
// emitted as-is (no quoting); newlines in notes are flattened to keep one
// row per client.
func Export(ctx context.Context, store Store, w io.Writer) error {
	clients, err := store.List(ctx, models.ListFilter{})
	if err != nil {
		return err
	}

	if _, err := io.WriteString(w, strings.Join(exportColumns, ",")+"\n"); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, client := range clients {
		lastInteraction := ""
		if client.LastInteraction != nil {
			lastInteraction = client.LastInteraction.Format(time.RFC3339)
		}
		row := []string{
			client.Name,
			client.Phone,
			client.Email,
			strings.ReplaceAll(client.Notes, "\n", " "),
			string(client.Status),
			lastInteraction,
		}
		if _, err := io.WriteString(w, strings.Join(row, ",")+"\n"); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	return nil
}

func field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
