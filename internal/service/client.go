// Package service implements the client lifecycle: creation behind the
// trial gate, detail mutations with their history side effects, and
// reminder-to-notification synchronization.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator"
	"github.com/google/uuid"

	"bizbooster/internal/alert"
	"bizbooster/internal/format"
	"bizbooster/internal/lib/sl"
	"bizbooster/internal/models"
	"bizbooster/internal/subscription"
)

// ClientRepository is the storage contract for client records.
type ClientRepository interface {
	Create(ctx context.Context, client *models.Client) error
	GetByID(ctx context.Context, id string) (*models.Client, error)
	Update(ctx context.Context, client *models.Client) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter models.ListFilter) ([]*models.Client, error)
	CountByStatus(ctx context.Context) (map[models.Status]int, error)
	AverageDecisionDays(ctx context.Context) (float64, error)
}

// HistoryRepository is the append-only modification log.
type HistoryRepository interface {
	Append(ctx context.Context, clientID, entry string, at time.Time) error
	List(ctx context.Context, clientID string) ([]string, error)
}

// SettingsRepository is the slice of persisted settings the service reads.
type SettingsRepository interface {
	GetOrCreate(ctx context.Context) (*models.Settings, error)
	SetAlertThreshold(ctx context.Context, days int) error
}

// ReminderScheduler keeps at most one pending notification per client.
type ReminderScheduler interface {
	Schedule(ctx context.Context, client *models.Client) error
	Cancel(ctx context.Context, clientID string) error
	Notify()
}

// InteractionKind is a client-facing communication recorded on the file.
type InteractionKind string

const (
	InteractionCall  InteractionKind = "call"
	InteractionSMS   InteractionKind = "sms"
	InteractionEmail InteractionKind = "email"
)

type ClientService struct {
	clients   ClientRepository
	history   HistoryRepository
	settings  SettingsRepository
	gate      *subscription.Gate
	scheduler ReminderScheduler
	log       *slog.Logger
	validate  *validator.Validate
	now       func() time.Time
}

func New(
	clients ClientRepository,
	history HistoryRepository,
	settings SettingsRepository,
	gate *subscription.Gate,
	scheduler ReminderScheduler,
	log *slog.Logger,
) *ClientService {
	return &ClientService{
		clients:   clients,
		history:   history,
		settings:  settings,
		gate:      gate,
		scheduler: scheduler,
		log:       log,
		validate:  validator.New(),
		now:       time.Now,
	}
}

// CreateInput carries the fields of a new client record.
type CreateInput struct {
	Name         string
	Phone        string
	Email        string
	Product      string
	Note         string
	ReminderDate *time.Time
}

// Create persists a new client. It fails with models.ErrLimitReached when
// the trial gate trips and models.ErrInvalidEmail on a malformed email; in
// both cases nothing is written. On success the lifetime counter is
// incremented exactly once.
func (s *ClientService) Create(ctx context.Context, in CreateInput) (*models.Client, error) {
	limitReached, err := s.gate.LimitReached(ctx)
	if err != nil {
		return nil, err
	}
	if limitReached {
		return nil, models.ErrLimitReached
	}

	if err := s.validateEmail(in.Email); err != nil {
		return nil, err
	}

	settings, err := s.settings.GetOrCreate(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	client := &models.Client{
		ID:              uuid.NewString(),
		Name:            strings.TrimSpace(in.Name),
		Phone:           normalizePhone(in.Phone, settings.DefaultPhonePrefix),
		Email:           strings.TrimSpace(in.Email),
		Product:         strings.TrimSpace(in.Product),
		Tags:            models.TagList{},
		Status:          models.StatusInProgress,
		FirstQuoteDate:  &now,
		LastInteraction: &now,
		ReminderDate:    in.ReminderDate,
		CreatedAt:       now,
	}
	if note := strings.TrimSpace(in.Note); note != "" {
		client.AppendNote(note, now)
	}

	if err := s.clients.Create(ctx, client); err != nil {
		return nil, err
	}

	if _, err := s.gate.Increment(ctx); err != nil {
		// The record is in; losing one counter tick is the lesser harm,
		// but it must not pass silently.
		s.log.Error("failed to increment client counter",
			slog.String("client_id", client.ID), sl.Err(err))
	}

	s.appendHistory(ctx, client.ID, "Fiche client créée")
	s.syncReminder(ctx, client)

	s.log.Info("client created", slog.String("client_id", client.ID))
	return client, nil
}

func (s *ClientService) Get(ctx context.Context, id string) (*models.Client, error) {
	return s.clients.GetByID(ctx, id)
}

func (s *ClientService) List(ctx context.Context, filter models.ListFilter) ([]*models.Client, error) {
	return s.clients.List(ctx, filter)
}

// History returns the modification log in insertion order.
func (s *ClientService) History(ctx context.Context, id string) ([]string, error) {
	if _, err := s.clients.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.history.List(ctx, id)
}

// Overdue returns the clients flagged by the alert policy under the current
// threshold.
func (s *ClientService) Overdue(ctx context.Context) ([]*models.Client, error) {
	settings, err := s.settings.GetOrCreate(ctx)
	if err != nil {
		return nil, err
	}
	clients, err := s.clients.List(ctx, models.ListFilter{})
	if err != nil {
		return nil, err
	}
	return alert.Filter(clients, s.now(), settings.AlertThresholdDays), nil
}

// AddNote appends a timestamped note and counts as a client interaction.
func (s *ClientService) AddNote(ctx context.Context, id, note string) (*models.Client, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return nil, fmt.Errorf("note is empty")
	}

	client, err := s.clients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	line := client.AppendNote(note, now)
	client.LastInteraction = &now
	if err := s.clients.Update(ctx, client); err != nil {
		return nil, err
	}

	s.appendHistory(ctx, id, "Note ajoutée : "+line)
	return client, nil
}

// AddTag adds a tag; adding one already present is a silent no-op.
func (s *ClientService) AddTag(ctx context.Context, id, tag string) (*models.Client, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return nil, fmt.Errorf("tag is empty")
	}

	client, err := s.clients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !client.Tags.Add(tag) {
		return client, nil
	}

	if err := s.clients.Update(ctx, client); err != nil {
		return nil, err
	}
	s.appendHistory(ctx, id, "Tag ajouté : "+tag)
	return client, nil
}

func (s *ClientService) RemoveTag(ctx context.Context, id, tag string) (*models.Client, error) {
	client, err := s.clients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !client.Tags.Remove(tag) {
		return client, nil
	}

	if err := s.clients.Update(ctx, client); err != nil {
		return nil, err
	}
	s.appendHistory(ctx, id, "Tag supprimé : "+tag)
	return client, nil
}

// ValidationInfo carries the extra fields of a validated client.
type ValidationInfo struct {
	ValidationDate  *time.Time
	ValidatedAmount float64
}

// SetStatus moves the client to a new lifecycle state. Validation details
// are only applied when the new status is validated.
func (s *ClientService) SetStatus(ctx context.Context, id string, status models.Status, info *ValidationInfo) (*models.Client, error) {
	client, err := s.clients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if client.Status == status {
		return client, nil
	}

	client.Status = status
	if status == models.StatusValidated {
		now := s.now()
		client.ValidationDate = &now
		if info != nil {
			if info.ValidationDate != nil {
				client.ValidationDate = info.ValidationDate
			}
			client.ValidatedAmount = info.ValidatedAmount
		}
	}

	if err := s.clients.Update(ctx, client); err != nil {
		return nil, err
	}
	s.appendHistory(ctx, id, "Statut modifié en "+string(status))
	return client, nil
}

// SetReminder sets or clears the reminder date and realigns the pending
// notification. A nil date clears both.
func (s *ClientService) SetReminder(ctx context.Context, id string, reminderDate *time.Time) (*models.Client, error) {
	client, err := s.clients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	client.ReminderDate = reminderDate
	if err := s.clients.Update(ctx, client); err != nil {
		return nil, err
	}

	if reminderDate != nil {
		s.appendHistory(ctx, id, "Date et heure de rappel modifiées à "+models.FormatTimestamp(*reminderDate))
	} else {
		s.appendHistory(ctx, id, "Rappel supprimé")
	}

	s.syncReminder(ctx, client)
	return client, nil
}

// RecordInteraction logs a call, SMS or email to the client and bumps the
// last interaction date.
func (s *ClientService) RecordInteraction(ctx context.Context, id string, kind InteractionKind) (*models.Client, error) {
	client, err := s.clients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	client.LastInteraction = &now
	if err := s.clients.Update(ctx, client); err != nil {
		return nil, err
	}

	var entry string
	switch kind {
	case InteractionCall:
		entry = "Appel effectué au " + client.Phone
	case InteractionSMS:
		entry = "SMS envoyé à " + client.Phone
	case InteractionEmail:
		entry = "Email envoyé à " + client.Email
	default:
		entry = "Interaction enregistrée"
	}
	s.appendHistory(ctx, id, entry)
	return client, nil
}

// Delete removes the record and cancels its pending notification. The
// lifetime add counter is deliberately left untouched: deleting a client
// does not free a trial slot.
func (s *ClientService) Delete(ctx context.Context, id string) error {
	if _, err := s.clients.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.scheduler.Cancel(ctx, id); err != nil {
		s.log.Error("failed to cancel reminder", slog.String("client_id", id), sl.Err(err))
	}
	return s.clients.Delete(ctx, id)
}

// SetAlertThreshold updates the overdue threshold (clamped to [1, 30]) and
// wakes the scheduler so the daily alert is recomputed. Stored records are
// never touched.
func (s *ClientService) SetAlertThreshold(ctx context.Context, days int) error {
	if err := s.settings.SetAlertThreshold(ctx, days); err != nil {
		return err
	}
	s.scheduler.Notify()
	return nil
}

// Stats summarizes the client base: counts per status and the average
// decision time of validated clients.
type Stats struct {
	CountsByStatus  map[models.Status]int
	AvgDecisionDays float64
}

func (s *ClientService) Stats(ctx context.Context) (*Stats, error) {
	counts, err := s.clients.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	avg, err := s.clients.AverageDecisionDays(ctx)
	if err != nil {
		return nil, err
	}
	return &Stats{CountsByStatus: counts, AvgDecisionDays: avg}, nil
}

// FollowUpMessage personalizes the stored SMS or email template for a
// client, the text the user sends (or hands to the AI draft assistant).
func (s *ClientService) FollowUpMessage(ctx context.Context, id string, kind InteractionKind) (string, error) {
	client, err := s.clients.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	settings, err := s.settings.GetOrCreate(ctx)
	if err != nil {
		return "", err
	}

	template := settings.SMSTemplate
	if kind == InteractionEmail {
		template = settings.EmailTemplate
	}
	return format.ApplyTemplate(template, client), nil
}

func (s *ClientService) validateEmail(email string) error {
	if email == "" {
		return nil
	}
	if err := s.validate.Var(email, "email"); err != nil {
		return models.ErrInvalidEmail
	}
	return nil
}

// appendHistory records a business event after the field mutation has been
// durably saved. A failed append is logged, never fabricated later.
func (s *ClientService) appendHistory(ctx context.Context, clientID, action string) {
	now := s.now()
	entry := models.FormatTimestamp(now) + ": " + action
	if err := s.history.Append(ctx, clientID, entry, now); err != nil {
		s.log.Error("failed to append history",
			slog.String("client_id", clientID), sl.Err(err))
	}
}

// syncReminder is best effort: a scheduling failure must not block the
// mutation it derives from, since the reminder date itself is stored and
// can be rescheduled on the next refresh.
func (s *ClientService) syncReminder(ctx context.Context, client *models.Client) {
	if err := s.scheduler.Schedule(ctx, client); err != nil {
		s.log.Error("failed to schedule reminder",
			slog.String("client_id", client.ID), sl.Err(err))
	}
}

func normalizePhone(phone, prefix string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" || strings.HasPrefix(phone, "+") || prefix == "" {
		return phone
	}
	// "0612345678" with prefix "+33" becomes "+33612345678".
	if strings.HasPrefix(phone, "0") {
		return prefix + phone[1:]
	}
	return phone
}
