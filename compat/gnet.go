package compat

import (
	"fmt"
	"os"
	"time"

	"github.com/lixenwraith/plog"
)

// GnetAdapter wraps plog.Logger to implement the gnet logging.Logger interface
type GnetAdapter struct {
	logger       *plog.Logger
	view         *plog.ThreadLogger
	fatalHandler func(msg string) // Customizable fatal behavior
}

// NewGnetAdapter creates a new gnet-compatible logger adapter.
// Records are tagged with the "gnet" thread name.
func NewGnetAdapter(logger *plog.Logger, opts ...GnetOption) *GnetAdapter {
	adapter := &GnetAdapter{
		logger: logger,
		view:   logger.Thread("gnet"),
		fatalHandler: func(msg string) {
			os.Exit(1) // Default behavior matches gnet expectations
		},
	}

	for _, opt := range opts {
		opt(adapter)
	}

	return adapter
}

// GnetOption allows customizing adapter behavior
type GnetOption func(*GnetAdapter)

// WithFatalHandler sets a custom fatal handler
func WithFatalHandler(handler func(string)) GnetOption {
	return func(a *GnetAdapter) {
		a.fatalHandler = handler
	}
}

// WithThreadName replaces the "gnet" thread tag
func WithThreadName(name string) GnetOption {
	return func(a *GnetAdapter) {
		a.view = a.logger.Thread(name)
	}
}

// Debugf logs at debug level with printf-style formatting
func (a *GnetAdapter) Debugf(format string, args ...any) {
	a.view.LogAt(callerInfo(plog.LevelDebug), format, args...)
}

// Infof logs at info level with printf-style formatting
func (a *GnetAdapter) Infof(format string, args ...any) {
	a.view.LogAt(callerInfo(plog.LevelInfo), format, args...)
}

// Warnf logs at warn level with printf-style formatting
func (a *GnetAdapter) Warnf(format string, args ...any) {
	a.view.LogAt(callerInfo(plog.LevelWarn), format, args...)
}

// Errorf logs at error level with printf-style formatting
func (a *GnetAdapter) Errorf(format string, args ...any) {
	a.view.LogAt(callerInfo(plog.LevelError), format, args...)
}

// Fatalf logs at error level and triggers fatal handler
func (a *GnetAdapter) Fatalf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	a.view.LogAt(callerInfo(plog.LevelError), "fatal: %s", msg)

	// Ensure log is flushed before exit
	_ = a.logger.Flush(100 * time.Millisecond)

	if a.fatalHandler != nil {
		a.fatalHandler(msg)
	}
}
