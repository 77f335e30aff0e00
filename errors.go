package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for model management operations.
// Use errors.Is() to check for specific error conditions.
var (
	// ErrUnknownModel indicates the identifier is not in the catalog.
	ErrUnknownModel = errors.New("models: unknown model")

	// ErrNotInstalled indicates the model file is not present in the cache.
	ErrNotInstalled = errors.New("models: model not installed")

	// ErrNetworkError indicates a network or connection failure.
	ErrNetworkError = errors.New("models: network error")

	// ErrStorageError indicates a filesystem operation failed.
	ErrStorageError = errors.New("models: storage error")

	// ErrInsufficientSpace indicates the cache filesystem cannot hold the download.
	ErrInsufficientSpace = errors.New("models: insufficient disk space")
)

// unknownModel wraps ErrUnknownModel with the offending identifier.
func unknownModel(id string) error {
	return fmt.Errorf("%w: %q", ErrUnknownModel, id)
}
