package subscription_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizbooster/internal/models"
	"bizbooster/internal/subscription"
)

type fakeSettings struct {
	subscribed bool
	total      int
}

func (f *fakeSettings) GetOrCreate(context.Context) (*models.Settings, error) {
	s := models.DefaultSettings()
	s.IsSubscribed = f.subscribed
	s.TotalClientsAdded = f.total
	return s, nil
}

func (f *fakeSettings) IncrementTotalClientsAdded(context.Context) (int, error) {
	f.total++
	return f.total, nil
}

func TestGate(t *testing.T) {
	ctx := context.Background()

	t.Run("open below the limit", func(t *testing.T) {
		gate := subscription.NewGate(&fakeSettings{total: models.TrialClientLimit - 1})
		reached, err := gate.LimitReached(ctx)
		require.NoError(t, err)
		assert.False(t, reached)
	})

	t.Run("closed at the limit", func(t *testing.T) {
		gate := subscription.NewGate(&fakeSettings{total: models.TrialClientLimit})
		reached, err := gate.LimitReached(ctx)
		require.NoError(t, err)
		assert.True(t, reached)
	})

	t.Run("subscription lifts the limit", func(t *testing.T) {
		gate := subscription.NewGate(&fakeSettings{
			subscribed: true,
			total:      models.TrialClientLimit + 100,
		})
		reached, err := gate.LimitReached(ctx)
		require.NoError(t, err)
		assert.False(t, reached)
	})

	t.Run("increment only moves forward", func(t *testing.T) {
		settings := &fakeSettings{total: 48}
		gate := subscription.NewGate(settings)

		n, err := gate.Increment(ctx)
		require.NoError(t, err)
		assert.Equal(t, 49, n)

		reached, err := gate.LimitReached(ctx)
		require.NoError(t, err)
		assert.False(t, reached)

		_, err = gate.Increment(ctx)
		require.NoError(t, err)

		reached, err = gate.LimitReached(ctx)
		require.NoError(t, err)
		assert.True(t, reached, "the 50th add fills the last trial slot")
	})
}
