package core

import "errors"

// Common errors.
var (
	// ErrNotFound is the normal outcome of a slug lookup that misses.
	ErrNotFound = errors.New("article not found")
	// ErrInvalidStatus rejects statuses outside the draft/published workflow.
	ErrInvalidStatus = errors.New("invalid article status")
	// ErrEmptySlug is returned when a title yields no slug characters.
	ErrEmptySlug = errors.New("title produces an empty slug")
	// ErrInvalidInput wraps validation failures of a create request.
	ErrInvalidInput = errors.New("invalid article input")
	// ErrReadOnly is returned by write operations on a read-only store.
	ErrReadOnly = errors.New("store is in read-only mode")
	// ErrWatchUnsupported is returned when the repository cannot watch for changes.
	ErrWatchUnsupported = errors.New("repository does not support watching")
)
