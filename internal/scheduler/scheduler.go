// Package scheduler keeps pending notifications aligned with client reminder
// dates and delivers them when due. Scheduling is keyed by client id, stored
// durably, and replayed by a polling loop, so re-running any part of it with
// unchanged data produces no duplicates.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"bizbooster/internal/alert"
	"bizbooster/internal/format"
	"bizbooster/internal/lib/sl"
	"bizbooster/internal/models"
	"bizbooster/internal/notify"
	"bizbooster/internal/rrule"
)

// NotificationStore is the durable pending-notification table.
type NotificationStore interface {
	Upsert(ctx context.Context, n *models.PendingNotification) error
	Delete(ctx context.Context, clientID string) error
	ListDue(ctx context.Context, now time.Time) ([]*models.PendingNotification, error)
	ListPending(ctx context.Context) ([]*models.PendingNotification, error)
}

// ClientSource lists clients for the refresh cycle and the daily alert.
type ClientSource interface {
	List(ctx context.Context, filter models.ListFilter) ([]*models.Client, error)
}

// SettingsStore provides the alert threshold, the daily alert hour and the
// last-sent guard date.
type SettingsStore interface {
	GetOrCreate(ctx context.Context) (*models.Settings, error)
	SetLastDailyAlertDate(ctx context.Context, at time.Time) error
}

type Scheduler struct {
	notifications NotificationStore
	clients       ClientSource
	settings      SettingsStore
	notifier      notify.Notifier
	log           *slog.Logger

	checkInterval time.Duration
	notifyCh      chan struct{}
	onFire        func(clientID string)
	now           func() time.Time
}

func New(
	notifications NotificationStore,
	clients ClientSource,
	settings SettingsStore,
	notifier notify.Notifier,
	log *slog.Logger,
) *Scheduler {
	return &Scheduler{
		notifications: notifications,
		clients:       clients,
		settings:      settings,
		notifier:      notifier,
		log:           log,
		checkInterval: time.Minute,
		notifyCh:      make(chan struct{}, 1),
		now:           time.Now,
	}
}

// OnFire registers a hook invoked after a per-client reminder is delivered.
func (s *Scheduler) OnFire(fn func(clientID string)) {
	s.onFire = fn
}

// Notify triggers an immediate check. Non-blocking if a check is already pending.
func (s *Scheduler) Notify() {
	select {
	case s.notifyCh <- struct{}{}:
	default:
	}
}

// Schedule aligns the pending notification for a client with its reminder
// date: a future reminder is upserted (replacing any previous one in the
// same statement), a cleared or past reminder removes the row. Either way
// the client ends the call with at most one pending notification.
func (s *Scheduler) Schedule(ctx context.Context, client *models.Client) error {
	if !client.HasFutureReminder(s.now()) {
		return s.notifications.Delete(ctx, client.ID)
	}

	return s.notifications.Upsert(ctx, &models.PendingNotification{
		ClientID: client.ID,
		Title:    format.ReminderTitle(client),
		Body:     format.ReminderBody(client),
		FireAt:   *client.ReminderDate,
	})
}

// Cancel removes any pending notification keyed by the client id. No-op
// when none exists.
func (s *Scheduler) Cancel(ctx context.Context, clientID string) error {
	return s.notifications.Delete(ctx, clientID)
}

// Refresh resynchronizes every client's pending notification. Idempotent:
// running it twice over unchanged data changes nothing.
func (s *Scheduler) Refresh(ctx context.Context) error {
	clients, err := s.clients.List(ctx, models.ListFilter{})
	if err != nil {
		return err
	}
	for _, client := range clients {
		if err := s.Schedule(ctx, client); err != nil {
			s.log.Error("failed to refresh reminder",
				slog.String("client_id", client.ID), sl.Err(err))
		}
	}
	return nil
}

// Start runs the polling loop until the context is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	s.log.Info("scheduler started", slog.Duration("interval", s.checkInterval))
	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	// Give migrations a moment before the first pass.
	select {
	case <-ctx.Done():
		return
	case <-time.After(2 * time.Second):
	}

	s.check(ctx)

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.check(ctx)
		case <-s.notifyCh:
			s.check(ctx)
		}
	}
}

func (s *Scheduler) check(ctx context.Context) {
	s.fireDue(ctx)
	s.checkDailyAlert(ctx)
}

func (s *Scheduler) fireDue(ctx context.Context) {
	now := s.now()
	due, err := s.notifications.ListDue(ctx, now)
	if err != nil {
		s.log.Error("failed to list due notifications", sl.Err(err))
		return
	}

	for _, n := range due {
		err := s.notifier.Send(ctx, notify.Notification{
			ClientID: n.ClientID,
			Title:    n.Title,
			Body:     n.Body,
		})
		if err != nil {
			// Leave the row in place; the next tick retries.
			s.log.Error("failed to deliver reminder",
				slog.String("client_id", n.ClientID), sl.Err(err))
			continue
		}

		if err := s.notifications.Delete(ctx, n.ClientID); err != nil {
			s.log.Error("failed to clear fired reminder",
				slog.String("client_id", n.ClientID), sl.Err(err))
		}
		s.log.Info("reminder delivered", slog.String("client_id", n.ClientID))

		if s.onFire != nil {
			s.onFire(n.ClientID)
		}
	}
}

// checkDailyAlert sends the "N clients à suivre" aggregate once per day at
// the configured hour. The guard date makes re-runs replace, never stack.
func (s *Scheduler) checkDailyAlert(ctx context.Context) {
	now := s.now()

	settings, err := s.settings.GetOrCreate(ctx)
	if err != nil {
		s.log.Error("failed to load settings", sl.Err(err))
		return
	}
	if settings.DailyAlertSentToday(now) {
		return
	}

	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	occurrence, err := rrule.NextOccurrence(rrule.DailyAt(settings.DailyAlertHour), startOfDay, startOfDay)
	if err != nil {
		s.log.Error("failed to compute daily alert time", sl.Err(err))
		return
	}
	if occurrence == nil || now.Before(*occurrence) {
		return
	}

	clients, err := s.clients.List(ctx, models.ListFilter{})
	if err != nil {
		s.log.Error("failed to list clients for daily alert", sl.Err(err))
		return
	}

	overdue := alert.Filter(clients, now, settings.AlertThresholdDays)
	if len(overdue) > 0 {
		err := s.notifier.Send(ctx, notify.Notification{
			Title: format.DailyAlertTitle(),
			Body:  format.DailyAlertBody(len(overdue)),
		})
		if err != nil {
			s.log.Error("failed to deliver daily alert", sl.Err(err))
			return
		}
		s.log.Info("daily alert delivered", slog.Int("overdue", len(overdue)))
	}

	if err := s.settings.SetLastDailyAlertDate(ctx, now); err != nil {
		s.log.Error("failed to record daily alert date", sl.Err(err))
	}
}

// SetCheckInterval overrides the polling interval (used by tests).
func (s *Scheduler) SetCheckInterval(d time.Duration) {
	s.checkInterval = d
}

// SetClock overrides the time source (used by tests).
func (s *Scheduler) SetClock(now func() time.Time) {
	s.now = now
}
