// Command whispercpp-models manages the local whisper.cpp model cache.
//
// Configuration is loaded from environment variables:
//   - WHISPERCPP_MODELS_URL: Host to fetch models from instead of Hugging Face (optional)
//   - XDG_DATA_HOME: Data home the whispercpp/ cache directory lives under (optional)
package main

import (
	"errors"
	"os"

	models "github.com/transcribee/whispercpp"
	"github.com/transcribee/whispercpp/cli"
	"github.com/transcribee/whispercpp/lazy"
)

// CLI exit codes for standardized error reporting.
const (
	// ExitSuccess indicates the operation completed successfully.
	ExitSuccess = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError = 1

	// ExitUnknownModel indicates the model is not in the catalog.
	ExitUnknownModel = 3

	// ExitNotInstalled indicates the model is not in the local cache.
	ExitNotInstalled = 4

	// ExitNetworkError indicates a network or connection failure.
	ExitNetworkError = 5

	// ExitInsufficientSpace indicates the cache filesystem is too full.
	ExitInsufficientSpace = 6

	// ExitStorageError indicates a filesystem operation failed.
	ExitStorageError = 7
)

func main() {
	cfg := models.Config{
		BaseURL: os.Getenv("WHISPERCPP_MODELS_URL"),
	}

	cmd := cli.NewCommand(cfg)
	cmd.Use = "whispercpp-models"
	if err := cmd.Execute(); err != nil {
		os.Exit(exitCodeFromError(err))
	}
}

// exitCodeFromError maps error types to exit codes.
func exitCodeFromError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var importErr *lazy.ImportError
	switch {
	case errors.Is(err, models.ErrUnknownModel):
		return ExitUnknownModel
	case errors.Is(err, models.ErrNotInstalled):
		return ExitNotInstalled
	case errors.Is(err, models.ErrNetworkError):
		return ExitNetworkError
	case errors.Is(err, models.ErrInsufficientSpace):
		return ExitInsufficientSpace
	case errors.Is(err, models.ErrStorageError):
		return ExitStorageError
	case errors.As(err, &importErr):
		return ExitStorageError
	default:
		return ExitGeneralError
	}
}
