// Package sl provides small helpers for structured logging with slog.
package sl

import "log/slog"

// Err returns a slog.Attr carrying the error text under the "error" key,
// so failures are logged uniformly:
//
//	log.Error("failed to do something", sl.Err(err))
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}
