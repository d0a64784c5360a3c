package models

import "time"

// PendingNotification is a scheduled reminder waiting to fire. The client id
// is the primary key: a client can never have two live notifications.
type PendingNotification struct {
	ClientID  string    `json:"client_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	FireAt    time.Time `json:"fire_at"`
	CreatedAt time.Time `json:"created_at"`
}
