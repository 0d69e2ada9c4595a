package compat

import (
	"fmt"
	"strings"

	"github.com/lixenwraith/plog"
)

// FastHTTPAdapter wraps plog.Logger to implement the fasthttp Logger interface
type FastHTTPAdapter struct {
	logger        *plog.Logger
	view          *plog.ThreadLogger
	defaultLevel  plog.Level
	levelDetector func(string) plog.Level // Function to detect log level from message
}

// NewFastHTTPAdapter creates a new fasthttp-compatible logger adapter.
// Records are tagged with the "fasthttp" thread name.
func NewFastHTTPAdapter(logger *plog.Logger, opts ...FastHTTPOption) *FastHTTPAdapter {
	adapter := &FastHTTPAdapter{
		logger:        logger,
		view:          logger.Thread("fasthttp"),
		defaultLevel:  plog.LevelInfo,
		levelDetector: DetectLogLevel,
	}

	for _, opt := range opts {
		opt(adapter)
	}

	return adapter
}

// FastHTTPOption allows customizing adapter behavior
type FastHTTPOption func(*FastHTTPAdapter)

// WithDefaultLevel sets the level of Printf calls the detector does not classify
func WithDefaultLevel(level plog.Level) FastHTTPOption {
	return func(a *FastHTTPAdapter) {
		a.defaultLevel = level
	}
}

// WithLevelDetector sets a custom function to detect log level from message content.
// A detector returning 0 leaves the default level in place.
func WithLevelDetector(detector func(string) plog.Level) FastHTTPOption {
	return func(a *FastHTTPAdapter) {
		a.levelDetector = detector
	}
}

// Printf implements fasthttp's Logger interface
func (a *FastHTTPAdapter) Printf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)

	level := a.defaultLevel
	if a.levelDetector != nil {
		if detected := a.levelDetector(msg); detected != 0 {
			level = detected
		}
	}
	if plog.MaskToID(level) < 0 {
		level = plog.LevelInfo
	}

	a.view.LogAt(callerInfo(level), "%s", msg)
}

// DetectLogLevel classifies a message by keyword, returning 0 when nothing matches
func DetectLogLevel(msg string) plog.Level {
	msgLower := strings.ToLower(msg)

	if strings.Contains(msgLower, "error") ||
		strings.Contains(msgLower, "failed") ||
		strings.Contains(msgLower, "fatal") ||
		strings.Contains(msgLower, "panic") {
		return plog.LevelError
	}

	if strings.Contains(msgLower, "warn") ||
		strings.Contains(msgLower, "deprecated") ||
		strings.Contains(msgLower, "cannot be served") {
		return plog.LevelWarn
	}

	if strings.Contains(msgLower, "debug") ||
		strings.Contains(msgLower, "trace") {
		return plog.LevelDebug
	}

	return 0
}
