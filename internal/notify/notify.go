// Package notify abstracts the local notification channel. The business
// layer schedules against this interface and never touches the Telegram API
// directly.
package notify

import "context"

// Notification is one message to deliver to the user. ClientID is the
// correlation key carried in the interaction payload; it is empty for
// aggregate alerts.
type Notification struct {
	ClientID string
	Title    string
	Body     string
}

type Notifier interface {
	Send(ctx context.Context, n Notification) error
}
