package store

import "errors"

// Common storage errors.
var (
	// ErrNotFound is returned when a release or event is not found.
	ErrNotFound = errors.New("not found")
)
