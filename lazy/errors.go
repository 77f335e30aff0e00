package lazy

import (
	"errors"
	"fmt"
)

// ErrNotFound is reported by a Loader when the dependency is unavailable.
// Loaders wrap it with the underlying reason.
var ErrNotFound = errors.New("lazy: dependency not found")

// ImportError is the default error returned when a dependency is unavailable.
type ImportError struct {
	// Name is the dependency that failed to load.
	Name string

	// Msg is the full message, including the reason.
	Msg string
}

func (e *ImportError) Error() string {
	return e.Msg
}

// ErrorKind builds the error returned when a dependency is unavailable.
// It receives the dependency name and the final message.
type ErrorKind func(name, msg string) error

// importError is the default ErrorKind.
func importError(name, msg string) error {
	return &ImportError{Name: name, Msg: msg}
}

// NotFound wraps ErrNotFound with a reason, for use by Loaders.
func NotFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}
