package storage

import "errors"

// Common storage errors.
var (
	// ErrNotFound is returned when a document is not found.
	ErrNotFound = errors.New("document not found")

	// ErrMissingKey is returned when an upserted document has no project ID.
	ErrMissingKey = errors.New("document has no project ID")
)
