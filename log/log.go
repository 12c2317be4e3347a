// Package log provides structured logging for the JAM execution substrate
// (PVM interpreter, codec, host-call dispatcher, invocation drivers). It
// wraps Go's log/slog with per-module child loggers so that e.g. the
// interpreter and the host dispatcher can be filtered or redirected
// independently, and renders through the LogFormatter family in
// formatter.go rather than slog's own handlers, so the same entry can be
// printed as JSON, aligned text, or ANSI-colored text without touching
// call sites.
package log

import (
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with this substrate's module-tagging
// conventions.
type Logger struct {
	inner *slog.Logger
}

// defaultLogger is the process-wide logger used by the package-level
// convenience functions.
var defaultLogger *Logger

func init() {
	defaultLogger = New(slog.LevelInfo)
}

// New creates a Logger that renders JSON lines to stderr at the given
// level. Equivalent to NewWithFormatter(&JSONFormatter{}, os.Stderr, level).
func New(level slog.Level) *Logger {
	return NewWithFormatter(&JSONFormatter{}, os.Stderr, level)
}

// NewWithFormatter creates a Logger that renders each record through f and
// writes the result to w, one line per record. Pass a *TextFormatter for
// aligned plain text, a *ColorFormatter for an interactive terminal, or a
// *JSONFormatter (the default) for machine-readable output.
func NewWithFormatter(f LogFormatter, w io.Writer, level slog.Level) *Logger {
	return &Logger{inner: slog.New(newFormatterHandler(f, w, level))}
}

// NewWithHandler creates a Logger backed by the supplied slog.Handler. This
// escape hatch bypasses the LogFormatter bridge entirely -- useful for
// tests that want to inspect slog's own attribute tree, or for an embedder
// that already has a slog.Handler wired to its own sink.
func NewWithHandler(h slog.Handler) *Logger {
	return &Logger{inner: slog.New(h)}
}

// SetDefault replaces the package-level default logger.
func SetDefault(l *Logger) {
	if l != nil {
		defaultLogger = l
	}
}

// Default returns the current package-level default logger.
func Default() *Logger {
	return defaultLogger
}

// Module returns a child logger with an additional "module" attribute. This
// is the primary way subsystems (pvm, hostcall, invocation, codec,
// keyderiv, ...) obtain their own contextual logger.
func (l *Logger) Module(name string) *Logger {
	return &Logger{inner: l.inner.With("module", name)}
}

// With returns a child logger with additional key-value context.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{inner: l.inner.With(args...)}
}

// Debug logs at LevelDebug. The interpreter and host dispatcher do not log
// at this level; they write no per-instruction or per-host-call records.
func (l *Logger) Debug(msg string, args ...any) { l.inner.Debug(msg, args...) }

// Info logs at LevelInfo.
func (l *Logger) Info(msg string, args ...any) { l.inner.Info(msg, args...) }

// Warn logs at LevelWarn. Terminal transitions (panic, fault, out of gas)
// are not logged by the invocation drivers; they are reported only through
// the returned status.
func (l *Logger) Warn(msg string, args ...any) { l.inner.Warn(msg, args...) }

// Error logs at LevelError.
func (l *Logger) Error(msg string, args ...any) { l.inner.Error(msg, args...) }

// ---------------------------------------------------------------------------
// Package-level convenience functions -- delegate to defaultLogger.
// ---------------------------------------------------------------------------

// Debug logs at LevelDebug using the default logger.
func Debug(msg string, args ...any) { defaultLogger.Debug(msg, args...) }

// Info logs at LevelInfo using the default logger.
func Info(msg string, args ...any) { defaultLogger.Info(msg, args...) }

// Warn logs at LevelWarn using the default logger.
func Warn(msg string, args ...any) { defaultLogger.Warn(msg, args...) }

// Error logs at LevelError using the default logger.
func Error(msg string, args ...any) { defaultLogger.Error(msg, args...) }
