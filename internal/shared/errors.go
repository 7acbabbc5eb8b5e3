package shared

import "errors"

var (
	// ErrNotFound indicates the referenced record is absent from the partition consulted.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput indicates a request rejected before any state mutation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrPersistence indicates the dataset could not be written.
	ErrPersistence = errors.New("persistence failure")
)
