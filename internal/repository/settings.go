package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"bizbooster/internal/database"
	"bizbooster/internal/models"
)

// SettingsRepository persists the single row of user configuration and
// subscription state.
type SettingsRepository struct {
	db *database.DB
}

func NewSettingsRepository(db *database.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// GetOrCreate retrieves the settings row, seeding defaults on first use.
func (r *SettingsRepository) GetOrCreate(ctx context.Context) (*models.Settings, error) {
	defaults := models.DefaultSettings()
	_, err := r.db.SQL.ExecContext(ctx,
		`INSERT INTO settings (id, alert_threshold_days, default_phone_prefix,
		                       sms_template, email_template, daily_alert_hour, updated_at)
		 VALUES (1, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO NOTHING`,
		defaults.AlertThresholdDays, defaults.DefaultPhonePrefix,
		defaults.SMSTemplate, defaults.EmailTemplate,
		defaults.DailyAlertHour, time.Now(),
	)
	if err != nil {
		return nil, fmt.Errorf("seed settings: %w", err)
	}
	return r.get(ctx)
}

func (r *SettingsRepository) get(ctx context.Context) (*models.Settings, error) {
	settings := &models.Settings{}
	var lastDailyAlert, updatedAt sql.NullTime

	err := r.db.SQL.QueryRowContext(ctx,
		`SELECT alert_threshold_days, default_phone_prefix, sms_template,
		        email_template, show_sorting, show_product_filter,
		        is_subscribed, total_clients_added, daily_alert_hour,
		        last_daily_alert_date, updated_at
		 FROM settings WHERE id = 1`,
	).Scan(
		&settings.AlertThresholdDays,
		&settings.DefaultPhonePrefix,
		&settings.SMSTemplate,
		&settings.EmailTemplate,
		&settings.ShowSorting,
		&settings.ShowProductFilter,
		&settings.IsSubscribed,
		&settings.TotalClientsAdded,
		&settings.DailyAlertHour,
		&lastDailyAlert,
		&updatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	settings.LastDailyAlertDate = timePtr(lastDailyAlert)
	if updatedAt.Valid {
		settings.UpdatedAt = updatedAt.Time
	}
	return settings, nil
}

func (r *SettingsRepository) SetAlertThreshold(ctx context.Context, days int) error {
	return r.set(ctx, "alert_threshold_days", models.ClampThreshold(days))
}

func (r *SettingsRepository) SetDefaultPhonePrefix(ctx context.Context, prefix string) error {
	return r.set(ctx, "default_phone_prefix", prefix)
}

func (r *SettingsRepository) SetSMSTemplate(ctx context.Context, template string) error {
	return r.set(ctx, "sms_template", template)
}

func (r *SettingsRepository) SetEmailTemplate(ctx context.Context, template string) error {
	return r.set(ctx, "email_template", template)
}

func (r *SettingsRepository) SetShowSorting(ctx context.Context, enabled bool) error {
	return r.set(ctx, "show_sorting", enabled)
}

func (r *SettingsRepository) SetShowProductFilter(ctx context.Context, enabled bool) error {
	return r.set(ctx, "show_product_filter", enabled)
}

// SetSubscribed records the purchase state reported by the billing
// collaborator.
func (r *SettingsRepository) SetSubscribed(ctx context.Context, subscribed bool) error {
	return r.set(ctx, "is_subscribed", subscribed)
}

func (r *SettingsRepository) SetLastDailyAlertDate(ctx context.Context, at time.Time) error {
	return r.set(ctx, "last_daily_alert_date", at)
}

// IncrementTotalClientsAdded raises the lifetime counter by one and returns
// the new value. The counter never goes down.
func (r *SettingsRepository) IncrementTotalClientsAdded(ctx context.Context) (int, error) {
	var total int
	err := r.db.SQL.QueryRowContext(ctx,
		`UPDATE settings
		 SET total_clients_added = total_clients_added + 1, updated_at = ?
		 WHERE id = 1
		 RETURNING total_clients_added`,
		time.Now(),
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("increment client counter: %w", err)
	}
	return total, nil
}

func (r *SettingsRepository) set(ctx context.Context, column string, value any) error {
	// column comes from the fixed method set above, never from input
	_, err := r.db.SQL.ExecContext(ctx,
		`UPDATE settings SET `+column+` = ?, updated_at = ? WHERE id = 1`,
		value, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("update settings %s: %w", column, err)
	}
	return nil
}
