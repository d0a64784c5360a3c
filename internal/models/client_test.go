package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizbooster/internal/models"
)

func TestTagList(t *testing.T) {
	t.Run("add rejects duplicates", func(t *testing.T) {
		tags := models.TagList{}
		assert.True(t, tags.Add("urgent"))
		assert.False(t, tags.Add("urgent"))
		assert.Equal(t, models.TagList{"urgent"}, tags)
	})

	t.Run("remove reports presence", func(t *testing.T) {
		tags := models.TagList{"a", "b", "c"}
		assert.True(t, tags.Remove("b"))
		assert.False(t, tags.Remove("b"))
		assert.Equal(t, models.TagList{"a", "c"}, tags)
	})

	t.Run("insertion order survives the db round trip", func(t *testing.T) {
		tags := models.TagList{"chantier", "devis", "relance"}
		data, err := tags.MarshalDB()
		require.NoError(t, err)

		var decoded models.TagList
		require.NoError(t, decoded.UnmarshalDB(data))
		assert.Equal(t, tags, decoded)
	})

	t.Run("empty column yields an empty list", func(t *testing.T) {
		var tags models.TagList
		require.NoError(t, tags.UnmarshalDB(""))
		assert.NotNil(t, tags)
		assert.Empty(t, tags)
	})
}

func TestAppendNote(t *testing.T) {
	at := time.Date(2026, 3, 10, 14, 30, 0, 0, time.Local)
	c := &models.Client{}

	line := c.AppendNote("premier contact", at)
	assert.Equal(t, "10/03/2026 14:30: premier contact", line)
	assert.Equal(t, line, c.Notes)

	second := c.AppendNote("devis envoyé", at.Add(time.Hour))
	assert.Equal(t, line+"\n"+second, c.Notes)
}

func TestHasFutureReminder(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)

	c := &models.Client{}
	assert.False(t, c.HasFutureReminder(now))

	past := now.Add(-time.Minute)
	c.ReminderDate = &past
	assert.False(t, c.HasFutureReminder(now))

	future := now.Add(time.Minute)
	c.ReminderDate = &future
	assert.True(t, c.HasFutureReminder(now))
}

func TestParseStatus(t *testing.T) {
	status, ok := models.ParseStatus(" Validated ")
	assert.True(t, ok)
	assert.Equal(t, models.StatusValidated, status)

	status, ok = models.ParseStatus("unknown")
	assert.False(t, ok)
	assert.Equal(t, models.StatusInProgress, status)
}
