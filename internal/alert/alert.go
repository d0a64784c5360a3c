// Package alert decides which clients need a follow-up nudge.
package alert

import (
	"time"

	"bizbooster/internal/models"
)

// IsOverdue reports whether a client should be surfaced in the alert
// section. Two conditions must both hold: the last interaction is more than
// thresholdDays old, and the reminder date has passed. A client with a
// future reminder or no reminder at all is never flagged, however stale; a
// missing last interaction counts as "just now" and never trips the gap.
func IsOverdue(client *models.Client, now time.Time, thresholdDays int) bool {
	lastInteraction := now
	if client.LastInteraction != nil {
		lastInteraction = *client.LastInteraction
	}
	gapDays := int(now.Sub(lastInteraction).Hours() / 24)
	if gapDays <= thresholdDays {
		return false
	}

	return client.ReminderDate != nil && client.ReminderDate.Before(now)
}

// Filter returns the clients flagged by IsOverdue, preserving input order.
func Filter(clients []*models.Client, now time.Time, thresholdDays int) []*models.Client {
	var overdue []*models.Client
	for _, client := range clients {
		if IsOverdue(client, now, thresholdDays) {
			overdue = append(overdue, client)
		}
	}
	return overdue
}
