package storage

import "errors"

// Common client storage errors
var (
	// ErrAuthNotFound indicates that no credentials are stored
	ErrAuthNotFound = errors.New("authentication data not found")

	// ErrPreferenceNotFound indicates that preference key is not set
	ErrPreferenceNotFound = errors.New("preference not found")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")
)
