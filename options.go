package models

import (
	"log/slog"
	"net/http"
)

// DownloadOption configures a download operation.
type DownloadOption func(*downloadConfig)

// downloadConfig holds configuration for a download operation.
type downloadConfig struct {
	// force causes re-download even if the model file is already cached.
	force bool

	// progressFn is called with progress updates during download.
	progressFn func(DownloadProgress)
}

// newDownloadConfig returns a downloadConfig with default values.
func newDownloadConfig() *downloadConfig {
	return &downloadConfig{}
}

// WithForce forces re-download even if the model file is already cached.
func WithForce() DownloadOption {
	return func(c *downloadConfig) {
		c.force = true
	}
}

// WithProgress sets a callback for progress updates during download.
// The callback runs on the downloading goroutine.
func WithProgress(fn func(DownloadProgress)) DownloadOption {
	return func(c *downloadConfig) {
		c.progressFn = fn
	}
}

// ManagerOption configures a Manager.
type ManagerOption func(*managerConfig)

// managerConfig holds configuration for Manager construction.
type managerConfig struct {
	// httpClient is used for all model downloads.
	httpClient HTTPClient

	// logger receives diagnostic log messages.
	logger Logger

	// catalog overrides the catalog derived from Config.BaseURL.
	catalog *Catalog

	// freeSpace reports available bytes on the filesystem holding a path.
	freeSpace func(path string) (uint64, error)
}

// newManagerConfig returns a managerConfig with default values.
func newManagerConfig() *managerConfig {
	return &managerConfig{
		httpClient: http.DefaultClient,
		freeSpace:  FreeSpace,
	}
}

// WithHTTPClient sets a custom HTTP client for downloads.
// Useful for testing with mock servers or customizing timeouts.
// If not set, http.DefaultClient is used.
func WithHTTPClient(client HTTPClient) ManagerOption {
	return func(c *managerConfig) {
		c.httpClient = client
	}
}

// WithLogger sets a logger for diagnostic output and download notices.
// If not set, or set to a nil *slog.Logger, logging is disabled.
func WithLogger(logger Logger) ManagerOption {
	return func(c *managerConfig) {
		if l, ok := logger.(*slog.Logger); ok && l == nil {
			logger = nil
		}
		c.logger = logger
	}
}

// WithCatalog replaces the catalog models are looked up in.
func WithCatalog(catalog *Catalog) ManagerOption {
	return func(c *managerConfig) {
		c.catalog = catalog
	}
}

// HTTPClient is the interface for HTTP operations.
// *http.Client satisfies this interface.
type HTTPClient interface {
	// Do sends an HTTP request and returns an HTTP response.
	Do(req *http.Request) (*http.Response, error)
}

// Logger is the interface for diagnostic logging.
// Compatible with slog, zap, logrus, and other structured loggers.
type Logger interface {
	// Debug logs a debug-level message with optional key-value pairs.
	Debug(msg string, keysAndValues ...any)

	// Info logs an info-level message with optional key-value pairs.
	Info(msg string, keysAndValues ...any)

	// Warn logs a warning-level message with optional key-value pairs.
	Warn(msg string, keysAndValues ...any)

	// Error logs an error-level message with optional key-value pairs.
	Error(msg string, keysAndValues ...any)
}
