// Package rrule wraps RFC 5545 recurrence rules for the daily alert cycle.
package rrule

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// DailyAt returns the rule for a once-a-day occurrence at the given local
// hour.
func DailyAt(hour int) string {
	return fmt.Sprintf("FREQ=DAILY;BYHOUR=%d;BYMINUTE=0;BYSECOND=0", hour)
}

// Parse parses an RFC 5545 RRULE string anchored at dtstart.
func Parse(ruleStr string, dtstart time.Time) (*rrule.RRule, error) {
	ruleStr = strings.TrimPrefix(ruleStr, "RRULE:")

	opt, err := rrule.StrToROption(ruleStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse RRULE: %w", err)
	}

	// Anchor the rule in local time so occurrences land on the user's
	// wall clock, not UTC.
	opt.Dtstart = time.Date(
		dtstart.Year(), dtstart.Month(), dtstart.Day(),
		dtstart.Hour(), dtstart.Minute(), dtstart.Second(), 0,
		time.Local,
	)
	return rrule.NewRRule(*opt)
}

// NextOccurrence returns the next occurrence after the given time, or nil
// when the rule has run out.
func NextOccurrence(ruleStr string, dtstart, after time.Time) (*time.Time, error) {
	rule, err := Parse(ruleStr, dtstart)
	if err != nil {
		return nil, err
	}

	next := rule.After(after, false)
	if next.IsZero() {
		return nil, nil
	}
	return &next, nil
}
