package service_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizbooster/internal/models"
	"bizbooster/internal/service"
	"bizbooster/internal/subscription"
)

type fakeClientRepo struct {
	clients map[string]*models.Client
	order   []string
}

func newFakeClientRepo() *fakeClientRepo {
	return &fakeClientRepo{clients: make(map[string]*models.Client)}
}

func (f *fakeClientRepo) Create(_ context.Context, client *models.Client) error {
	clone := *client
	f.clients[client.ID] = &clone
	f.order = append(f.order, client.ID)
	return nil
}

func (f *fakeClientRepo) GetByID(_ context.Context, id string) (*models.Client, error) {
	client, ok := f.clients[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	clone := *client
	return &clone, nil
}

func (f *fakeClientRepo) Update(_ context.Context, client *models.Client) error {
	if _, ok := f.clients[client.ID]; !ok {
		return models.ErrNotFound
	}
	clone := *client
	f.clients[client.ID] = &clone
	return nil
}

func (f *fakeClientRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.clients[id]; !ok {
		return models.ErrNotFound
	}
	delete(f.clients, id)
	return nil
}

func (f *fakeClientRepo) List(context.Context, models.ListFilter) ([]*models.Client, error) {
	var all []*models.Client
	for _, id := range f.order {
		if client, ok := f.clients[id]; ok {
			clone := *client
			all = append(all, &clone)
		}
	}
	return all, nil
}

func (f *fakeClientRepo) CountByStatus(context.Context) (map[models.Status]int, error) {
	counts := map[models.Status]int{
		models.StatusInProgress: 0,
		models.StatusValidated:  0,
		models.StatusCancelled:  0,
	}
	for _, client := range f.clients {
		counts[client.Status]++
	}
	return counts, nil
}

func (f *fakeClientRepo) AverageDecisionDays(context.Context) (float64, error) {
	return 0, nil
}

type fakeHistoryRepo struct {
	entries map[string][]string
}

func newFakeHistoryRepo() *fakeHistoryRepo {
	return &fakeHistoryRepo{entries: make(map[string][]string)}
}

func (f *fakeHistoryRepo) Append(_ context.Context, clientID, entry string, _ time.Time) error {
	f.entries[clientID] = append(f.entries[clientID], entry)
	return nil
}

func (f *fakeHistoryRepo) List(_ context.Context, clientID string) ([]string, error) {
	return f.entries[clientID], nil
}

type fakeSettingsRepo struct {
	settings *models.Settings
}

func (f *fakeSettingsRepo) GetOrCreate(context.Context) (*models.Settings, error) {
	clone := *f.settings
	return &clone, nil
}

func (f *fakeSettingsRepo) SetAlertThreshold(_ context.Context, days int) error {
	f.settings.AlertThresholdDays = models.ClampThreshold(days)
	return nil
}

func (f *fakeSettingsRepo) IncrementTotalClientsAdded(context.Context) (int, error) {
	f.settings.TotalClientsAdded++
	return f.settings.TotalClientsAdded, nil
}

type fakeScheduler struct {
	scheduled map[string]*time.Time
	cancelled []string
	notified  int
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{scheduled: make(map[string]*time.Time)}
}

func (f *fakeScheduler) Schedule(_ context.Context, client *models.Client) error {
	f.scheduled[client.ID] = client.ReminderDate
	return nil
}

func (f *fakeScheduler) Cancel(_ context.Context, clientID string) error {
	f.cancelled = append(f.cancelled, clientID)
	delete(f.scheduled, clientID)
	return nil
}

func (f *fakeScheduler) Notify() { f.notified++ }

type fixture struct {
	svc       *service.ClientService
	clients   *fakeClientRepo
	history   *fakeHistoryRepo
	settings  *fakeSettingsRepo
	scheduler *fakeScheduler
}

func newFixture() *fixture {
	clients := newFakeClientRepo()
	history := newFakeHistoryRepo()
	settings := &fakeSettingsRepo{settings: models.DefaultSettings()}
	scheduler := newFakeScheduler()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc := service.New(clients, history, settings, subscription.NewGate(settings), scheduler, log)
	return &fixture{svc: svc, clients: clients, history: history, settings: settings, scheduler: scheduler}
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a record with history and counter", func(t *testing.T) {
		f := newFixture()

		client, err := f.svc.Create(ctx, service.CreateInput{
			Name:  "Jean Dupont",
			Phone: "0612345678",
			Email: "jean@example.com",
		})
		require.NoError(t, err)

		assert.Equal(t, models.StatusInProgress, client.Status)
		assert.NotNil(t, client.FirstQuoteDate)
		assert.NotNil(t, client.LastInteraction)
		assert.Equal(t, 1, f.settings.settings.TotalClientsAdded)

		entries := f.history.entries[client.ID]
		require.Len(t, entries, 1)
		assert.Contains(t, entries[0], "Fiche client créée")
	})

	t.Run("applies the default phone prefix", func(t *testing.T) {
		f := newFixture()

		client, err := f.svc.Create(ctx, service.CreateInput{Name: "Jean", Phone: "0612345678"})
		require.NoError(t, err)
		assert.Equal(t, "+33612345678", client.Phone)

		international, err := f.svc.Create(ctx, service.CreateInput{Name: "Eva", Phone: "+41791234567"})
		require.NoError(t, err)
		assert.Equal(t, "+41791234567", international.Phone)
	})

	t.Run("rejects a malformed email without writing", func(t *testing.T) {
		f := newFixture()

		_, err := f.svc.Create(ctx, service.CreateInput{Name: "Jean", Email: "pas-un-email"})
		require.ErrorIs(t, err, models.ErrInvalidEmail)
		assert.Empty(t, f.clients.clients)
		assert.Zero(t, f.settings.settings.TotalClientsAdded)
	})

	t.Run("trial limit blocks the add entirely", func(t *testing.T) {
		f := newFixture()
		f.settings.settings.TotalClientsAdded = models.TrialClientLimit

		_, err := f.svc.Create(ctx, service.CreateInput{Name: "Un De Trop"})
		require.ErrorIs(t, err, models.ErrLimitReached)
		assert.Empty(t, f.clients.clients)
		assert.Equal(t, models.TrialClientLimit, f.settings.settings.TotalClientsAdded)
	})

	t.Run("the last trial slot still works", func(t *testing.T) {
		f := newFixture()
		f.settings.settings.TotalClientsAdded = models.TrialClientLimit - 1

		_, err := f.svc.Create(ctx, service.CreateInput{Name: "Alice", Phone: "0600000000"})
		require.NoError(t, err)
		assert.Equal(t, models.TrialClientLimit, f.settings.settings.TotalClientsAdded)

		_, err = f.svc.Create(ctx, service.CreateInput{Name: "Bob"})
		assert.ErrorIs(t, err, models.ErrLimitReached)
	})

	t.Run("subscribed account ignores the limit", func(t *testing.T) {
		f := newFixture()
		f.settings.settings.TotalClientsAdded = models.TrialClientLimit + 10
		f.settings.settings.IsSubscribed = true

		_, err := f.svc.Create(ctx, service.CreateInput{Name: "Abonné"})
		assert.NoError(t, err)
	})

	t.Run("future reminder is scheduled on create", func(t *testing.T) {
		f := newFixture()
		reminder := time.Now().Add(24 * time.Hour)

		client, err := f.svc.Create(ctx, service.CreateInput{Name: "Jean", ReminderDate: &reminder})
		require.NoError(t, err)
		assert.Contains(t, f.scheduler.scheduled, client.ID)
	})
}

func TestNotesAndTags(t *testing.T) {
	ctx := context.Background()

	t.Run("notes accumulate in order", func(t *testing.T) {
		f := newFixture()
		client, err := f.svc.Create(ctx, service.CreateInput{Name: "Jean"})
		require.NoError(t, err)

		_, err = f.svc.AddNote(ctx, client.ID, "premier contact")
		require.NoError(t, err)
		updated, err := f.svc.AddNote(ctx, client.ID, "devis envoyé")
		require.NoError(t, err)

		lines := strings.Split(updated.Notes, "\n")
		require.Len(t, lines, 2)
		assert.Contains(t, lines[0], "premier contact")
		assert.Contains(t, lines[1], "devis envoyé")
	})

	t.Run("history only ever grows", func(t *testing.T) {
		f := newFixture()
		client, err := f.svc.Create(ctx, service.CreateInput{Name: "Jean"})
		require.NoError(t, err)

		previous := len(f.history.entries[client.ID])
		steps := []func() error{
			func() error { _, err := f.svc.AddNote(ctx, client.ID, "note"); return err },
			func() error { _, err := f.svc.AddTag(ctx, client.ID, "urgent"); return err },
			func() error { _, err := f.svc.SetStatus(ctx, client.ID, models.StatusValidated, nil); return err },
			func() error { _, err := f.svc.RemoveTag(ctx, client.ID, "urgent"); return err },
		}
		for _, step := range steps {
			require.NoError(t, step())
			current := len(f.history.entries[client.ID])
			assert.Greater(t, current, previous)
			previous = current
		}
	})

	t.Run("duplicate tag is a silent no-op", func(t *testing.T) {
		f := newFixture()
		client, err := f.svc.Create(ctx, service.CreateInput{Name: "Jean"})
		require.NoError(t, err)

		_, err = f.svc.AddTag(ctx, client.ID, "urgent")
		require.NoError(t, err)
		historyLen := len(f.history.entries[client.ID])

		updated, err := f.svc.AddTag(ctx, client.ID, "urgent")
		require.NoError(t, err)
		assert.Equal(t, models.TagList{"urgent"}, updated.Tags)
		assert.Len(t, f.history.entries[client.ID], historyLen, "no history entry for a no-op")
	})
}

func TestSetStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("validation stamps date and amount", func(t *testing.T) {
		f := newFixture()
		client, err := f.svc.Create(ctx, service.CreateInput{Name: "Jean"})
		require.NoError(t, err)

		updated, err := f.svc.SetStatus(ctx, client.ID, models.StatusValidated,
			&service.ValidationInfo{ValidatedAmount: 12500.50})
		require.NoError(t, err)

		assert.Equal(t, models.StatusValidated, updated.Status)
		assert.NotNil(t, updated.ValidationDate)
		assert.Equal(t, 12500.50, updated.ValidatedAmount)

		last := f.history.entries[client.ID][len(f.history.entries[client.ID])-1]
		assert.Contains(t, last, "Statut modifié en validated")
	})

	t.Run("same status writes nothing", func(t *testing.T) {
		f := newFixture()
		client, err := f.svc.Create(ctx, service.CreateInput{Name: "Jean"})
		require.NoError(t, err)
		historyLen := len(f.history.entries[client.ID])

		_, err = f.svc.SetStatus(ctx, client.ID, models.StatusInProgress, nil)
		require.NoError(t, err)
		assert.Len(t, f.history.entries[client.ID], historyLen)
	})
}

func TestSetReminder(t *testing.T) {
	ctx := context.Background()

	t.Run("setting schedules, clearing cancels", func(t *testing.T) {
		f := newFixture()
		client, err := f.svc.Create(ctx, service.CreateInput{Name: "Jean"})
		require.NoError(t, err)

		reminder := time.Now().Add(48 * time.Hour)
		updated, err := f.svc.SetReminder(ctx, client.ID, &reminder)
		require.NoError(t, err)
		require.NotNil(t, updated.ReminderDate)
		assert.Contains(t, f.scheduler.scheduled, client.ID)

		cleared, err := f.svc.SetReminder(ctx, client.ID, nil)
		require.NoError(t, err)
		assert.Nil(t, cleared.ReminderDate)
		assert.Nil(t, f.scheduler.scheduled[client.ID])

		entries := f.history.entries[client.ID]
		assert.Contains(t, entries[len(entries)-2], "Date et heure de rappel modifiées à")
		assert.Contains(t, entries[len(entries)-1], "Rappel supprimé")
	})
}

func TestRecordInteraction(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	client, err := f.svc.Create(ctx, service.CreateInput{
		Name: "Jean", Phone: "0612345678", Email: "jean@example.com",
	})
	require.NoError(t, err)

	_, err = f.svc.RecordInteraction(ctx, client.ID, service.InteractionCall)
	require.NoError(t, err)
	_, err = f.svc.RecordInteraction(ctx, client.ID, service.InteractionSMS)
	require.NoError(t, err)
	_, err = f.svc.RecordInteraction(ctx, client.ID, service.InteractionEmail)
	require.NoError(t, err)

	entries := f.history.entries[client.ID]
	require.GreaterOrEqual(t, len(entries), 4)
	assert.Contains(t, entries[len(entries)-3], "Appel effectué au +33612345678")
	assert.Contains(t, entries[len(entries)-2], "SMS envoyé à +33612345678")
	assert.Contains(t, entries[len(entries)-1], "Email envoyé à jean@example.com")
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	client, err := f.svc.Create(ctx, service.CreateInput{Name: "Jean"})
	require.NoError(t, err)
	require.Equal(t, 1, f.settings.settings.TotalClientsAdded)

	require.NoError(t, f.svc.Delete(ctx, client.ID))

	_, err = f.svc.Get(ctx, client.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Contains(t, f.scheduler.cancelled, client.ID)
	assert.Equal(t, 1, f.settings.settings.TotalClientsAdded,
		"deleting a client never frees a trial slot")

	assert.ErrorIs(t, f.svc.Delete(ctx, client.ID), models.ErrNotFound)
}

func TestSetAlertThreshold(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	require.NoError(t, f.svc.SetAlertThreshold(ctx, 45))
	assert.Equal(t, models.MaxAlertThresholdDays, f.settings.settings.AlertThresholdDays)
	assert.Equal(t, 1, f.scheduler.notified, "the scheduler is woken to recompute alerts")
}

func TestFollowUpMessage(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	client, err := f.svc.Create(ctx, service.CreateInput{Name: "Jean Dupont"})
	require.NoError(t, err)

	text, err := f.svc.FollowUpMessage(ctx, client.ID, service.InteractionSMS)
	require.NoError(t, err)
	assert.Contains(t, text, "Bonjour Jean Dupont")
	assert.NotContains(t, text, "[Nom du Client]")
}
