package lazy

import (
	"log/slog"
)

// Option configures a Module.
type Option func(*options)

// options holds configuration for a Module.
type options struct {
	// registry is the shared registry the value is published to. May be nil.
	registry *Registry

	// warning is logged once after the first successful load.
	warning string

	// errMsg prefixes the error returned when the dependency is unavailable.
	errMsg string

	// errKind builds the error returned when the dependency is unavailable.
	errKind ErrorKind

	// logger receives the one-time warning and diagnostics. May be nil.
	logger Logger
}

// newOptions returns options with default values.
func newOptions() options {
	return options{
		registry: Shared,
		errKind:  importError,
		logger:   slog.Default(),
	}
}

// WithRegistry publishes the loaded value to r instead of Shared.
// A nil r disables publishing to a shared registry.
func WithRegistry(r *Registry) Option {
	return func(o *options) {
		o.registry = r
	}
}

// WithWarning logs msg at warn level after the first successful load.
// The warning is emitted at most once per Module.
func WithWarning(msg string) Option {
	return func(o *options) {
		o.warning = msg
	}
}

// WithError sets the error returned when the dependency is unavailable.
// kind builds the error from the module name and the final message, which
// is msg followed by the reason. A nil kind keeps the default *ImportError.
func WithError(kind ErrorKind, msg string) Option {
	return func(o *options) {
		if kind != nil {
			o.errKind = kind
		}
		o.errMsg = msg
	}
}

// WithLogger sets the logger for the one-time warning and diagnostics.
// If not set, slog.Default() is used. A nil logger, including a nil
// *slog.Logger, disables logging.
func WithLogger(logger Logger) Option {
	return func(o *options) {
		if l, ok := logger.(*slog.Logger); ok && l == nil {
			logger = nil
		}
		o.logger = logger
	}
}

// Logger is the interface for diagnostic logging.
// Compatible with slog, zap, logrus, and other structured loggers.
type Logger interface {
	// Debug logs a debug-level message with optional key-value pairs.
	Debug(msg string, keysAndValues ...any)

	// Warn logs a warning-level message with optional key-value pairs.
	Warn(msg string, keysAndValues ...any)
}
