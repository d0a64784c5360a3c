package models

import "errors"

var (
	// ErrNotFound is returned for operations on an unknown client id.
	ErrNotFound = errors.New("client not found")

	// ErrLimitReached is returned when creating a client would exceed the
	// trial limit for an unsubscribed account.
	ErrLimitReached = errors.New("trial client limit reached")

	// ErrInvalidEmail is returned when an email field does not have a
	// valid shape. The mutation carrying it is rejected entirely.
	ErrInvalidEmail = errors.New("invalid email format")
)
