// FILE: default.go
package plog

import (
	"io"
	"time"
)

// Global instance for package-level functions
var defaultLogger = NewLogger()

// Default returns the logger behind the package-level functions
func Default() *Logger {
	return defaultLogger
}

// ApplyConfig configures the default logger
func ApplyConfig(cfg *Config) error {
	return defaultLogger.ApplyConfig(cfg)
}

// ApplyOverride applies "key=value" overrides to the default logger
func ApplyOverride(overrides ...string) error {
	return defaultLogger.ApplyOverride(overrides...)
}

// Start starts the default logger
func Start() error {
	return defaultLogger.Start()
}

// Shutdown gracefully closes the default logger
func Shutdown(timeout ...time.Duration) error {
	return defaultLogger.Shutdown(timeout...)
}

// Flush waits for queued records and syncs the default logger's outputs
func Flush(timeout time.Duration) error {
	return defaultLogger.Flush(timeout)
}

// SetLevel replaces the default logger's level mask
func SetLevel(m Level) {
	defaultLogger.SetLevel(m)
}

// SetFilter sets the default logger's content filter
func SetFilter(pattern string) error {
	return defaultLogger.SetFilter(pattern)
}

// Count returns the default logger's emitted count for the levels in mask
func Count(mask Level) uint64 {
	return defaultLogger.Count(mask)
}

// WriteStats dumps the default logger's counters
func WriteStats(w io.Writer) error {
	return defaultLogger.WriteStats(w)
}

// Debugf logs a message at debug level
func Debugf(format string, args ...any) {
	defaultLogger.logf(LevelDebug, "", format, args)
}

// Infof logs a message at info level
func Infof(format string, args ...any) {
	defaultLogger.logf(LevelInfo, "", format, args)
}

// Okf logs a success message
func Okf(format string, args ...any) {
	defaultLogger.logf(LevelOk, "", format, args)
}

// Warnf logs a message at warning level
func Warnf(format string, args ...any) {
	defaultLogger.logf(LevelWarn, "", format, args)
}

// Errorf logs a message at error level
func Errorf(format string, args ...any) {
	defaultLogger.logf(LevelError, "", format, args)
}

// Tracef logs a message at trace level
func Tracef(format string, args ...any) {
	defaultLogger.logf(LevelTrace, "", format, args)
}

// Rawf logs a headerless message
func Rawf(format string, args ...any) {
	defaultLogger.logf(LevelRaw, "", format, args)
}

// Raw logs args as space-separated values without a header
func Raw(args ...any) {
	defaultLogger.logRaw(args)
}
