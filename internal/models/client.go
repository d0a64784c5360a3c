package models

import (
	"encoding/json"
	"strings"
	"time"
)

// Status is the lifecycle state of a client record.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusValidated  Status = "validated"
	StatusCancelled  Status = "cancelled"
)

// ParseStatus maps user input to a Status, defaulting to in_progress.
func ParseStatus(s string) (Status, bool) {
	switch Status(strings.TrimSpace(strings.ToLower(s))) {
	case StatusInProgress:
		return StatusInProgress, true
	case StatusValidated:
		return StatusValidated, true
	case StatusCancelled:
		return StatusCancelled, true
	}
	return StatusInProgress, false
}

type Client struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Phone           string     `json:"phone"`
	Email           string     `json:"email"`
	Product         string     `json:"product"`
	Notes           string     `json:"notes"` // newline-delimited timestamped entries, append-only
	Tags            TagList    `json:"tags"`
	Status          Status     `json:"status"`
	FirstQuoteDate  *time.Time `json:"first_quote_date"`
	ValidationDate  *time.Time `json:"validation_date"`
	ValidatedAmount float64    `json:"validated_amount"`
	LastInteraction *time.Time `json:"last_interaction"`
	ReminderDate    *time.Time `json:"reminder_date"`
	CreatedAt       time.Time  `json:"created_at"`
}

// HasFutureReminder reports whether the client should have a pending
// notification at the given instant.
func (c *Client) HasFutureReminder(now time.Time) bool {
	return c.ReminderDate != nil && c.ReminderDate.After(now)
}

// AppendNote adds a timestamped note line. Existing lines are never rewritten.
func (c *Client) AppendNote(note string, at time.Time) string {
	line := FormatTimestamp(at) + ": " + note
	if c.Notes == "" {
		c.Notes = line
	} else {
		c.Notes = c.Notes + "\n" + line
	}
	return line
}

// TagList is an ordered set of tags. Insertion order is preserved for
// display, duplicates are rejected on Add.
type TagList []string

// Add appends a tag if not already present and reports whether it was added.
func (t *TagList) Add(tag string) bool {
	for _, existing := range *t {
		if existing == tag {
			return false
		}
	}
	*t = append(*t, tag)
	return true
}

// Remove deletes a tag and reports whether it was present.
func (t *TagList) Remove(tag string) bool {
	for i, existing := range *t {
		if existing == tag {
			*t = append((*t)[:i], (*t)[i+1:]...)
			return true
		}
	}
	return false
}

func (t TagList) Contains(tag string) bool {
	for _, existing := range t {
		if existing == tag {
			return true
		}
	}
	return false
}

// MarshalDB serializes the list for the tags column.
func (t TagList) MarshalDB() (string, error) {
	if t == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(t))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// UnmarshalDB parses the tags column. An empty column yields an empty list.
func (t *TagList) UnmarshalDB(data string) error {
	if data == "" {
		*t = TagList{}
		return nil
	}
	var values []string
	if err := json.Unmarshal([]byte(data), &values); err != nil {
		return err
	}
	*t = TagList(values)
	return nil
}

// FormatTimestamp renders timestamps the way they appear in notes and
// history entries.
func FormatTimestamp(t time.Time) string {
	return t.Format("02/01/2006 15:04")
}
