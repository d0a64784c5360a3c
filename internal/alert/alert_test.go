package alert_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"bizbooster/internal/alert"
	"bizbooster/internal/models"
)

func clientWith(lastInteraction, reminder *time.Time) *models.Client {
	return &models.Client{
		ID:              "c1",
		Name:            "Test",
		Status:          models.StatusInProgress,
		LastInteraction: lastInteraction,
		ReminderDate:    reminder,
	}
}

func daysAgo(now time.Time, days int) *time.Time {
	t := now.AddDate(0, 0, -days)
	return &t
}

func TestIsOverdue(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
	threshold := 15

	t.Run("stale interaction and past reminder", func(t *testing.T) {
		yesterday := now.AddDate(0, 0, -1)
		c := clientWith(daysAgo(now, 20), &yesterday)
		assert.True(t, alert.IsOverdue(c, now, threshold))
	})

	t.Run("no reminder never flags, however stale", func(t *testing.T) {
		c := clientWith(daysAgo(now, 20), nil)
		assert.False(t, alert.IsOverdue(c, now, threshold))
	})

	t.Run("future reminder suppresses the alert", func(t *testing.T) {
		tomorrow := now.AddDate(0, 0, 1)
		c := clientWith(daysAgo(now, 20), &tomorrow)
		assert.False(t, alert.IsOverdue(c, now, threshold))
	})

	t.Run("recent interaction is never flagged", func(t *testing.T) {
		yesterday := now.AddDate(0, 0, -1)
		c := clientWith(daysAgo(now, 3), &yesterday)
		assert.False(t, alert.IsOverdue(c, now, threshold))
	})

	t.Run("gap equal to the threshold is not over it", func(t *testing.T) {
		c := clientWith(daysAgo(now, threshold), daysAgo(now, 1))
		assert.False(t, alert.IsOverdue(c, now, threshold))
	})

	t.Run("missing last interaction counts as just now", func(t *testing.T) {
		c := clientWith(nil, nil)
		assert.False(t, alert.IsOverdue(c, now, threshold))
	})

	t.Run("raising the threshold only removes clients", func(t *testing.T) {
		yesterday := daysAgo(now, 1)
		clients := []*models.Client{
			clientWith(daysAgo(now, 5), yesterday),
			clientWith(daysAgo(now, 16), yesterday),
			clientWith(daysAgo(now, 25), yesterday),
			clientWith(daysAgo(now, 40), yesterday),
		}
		for threshold := 1; threshold < 30; threshold++ {
			wider := alert.Filter(clients, now, threshold)
			narrower := alert.Filter(clients, now, threshold+1)
			assert.GreaterOrEqual(t, len(wider), len(narrower),
				"threshold %d flagged fewer clients than threshold %d", threshold, threshold+1)
		}
	})
}

func TestFilterPreservesOrder(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)

	yesterday := daysAgo(now, 1)
	first := clientWith(daysAgo(now, 30), yesterday)
	first.ID = "first"
	fresh := clientWith(daysAgo(now, 2), yesterday)
	second := clientWith(daysAgo(now, 20), yesterday)
	second.ID = "second"

	overdue := alert.Filter([]*models.Client{first, fresh, second}, now, 15)

	assert.Len(t, overdue, 2)
	assert.Equal(t, "first", overdue[0].ID)
	assert.Equal(t, "second", overdue[1].ID)
}
