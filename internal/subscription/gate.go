// Package subscription enforces the trial limit on lifetime client adds.
package subscription

import (
	"context"
	"fmt"

	"bizbooster/internal/models"
)

// SettingsStore is the slice of the settings repository the gate needs.
type SettingsStore interface {
	GetOrCreate(ctx context.Context) (*models.Settings, error)
	IncrementTotalClientsAdded(ctx context.Context) (int, error)
}

// Gate tracks the lifetime "clients ever added" counter against the trial
// limit. The counter never decreases; deleting a client frees no slot.
type Gate struct {
	settings SettingsStore
	limit    int
}

func NewGate(settings SettingsStore) *Gate {
	return &Gate{settings: settings, limit: models.TrialClientLimit}
}

// LimitReached reports whether an unsubscribed account has used up its
// trial slots.
func (g *Gate) LimitReached(ctx context.Context) (bool, error) {
	settings, err := g.settings.GetOrCreate(ctx)
	if err != nil {
		return false, fmt.Errorf("load subscription state: %w", err)
	}
	return !settings.IsSubscribed && settings.TotalClientsAdded >= g.limit, nil
}

// Increment records one successful client creation. Called exactly once per
// create that persisted a record.
func (g *Gate) Increment(ctx context.Context) (int, error) {
	return g.settings.IncrementTotalClientsAdded(ctx)
}

func (g *Gate) Limit() int {
	return g.limit
}
