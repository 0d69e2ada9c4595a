// FILE: record.go
package plog

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/lixenwraith/plog/driver"
	"github.com/lixenwraith/plog/rotation"
)

// Debugf logs a message at debug level
func (l *Logger) Debugf(format string, args ...any) {
	l.logf(LevelDebug, "", format, args)
}

// Infof logs a message at info level
func (l *Logger) Infof(format string, args ...any) {
	l.logf(LevelInfo, "", format, args)
}

// Okf logs a success message
func (l *Logger) Okf(format string, args ...any) {
	l.logf(LevelOk, "", format, args)
}

// Warnf logs a message at warning level
func (l *Logger) Warnf(format string, args ...any) {
	l.logf(LevelWarn, "", format, args)
}

// Errorf logs a message at error level
func (l *Logger) Errorf(format string, args ...any) {
	l.logf(LevelError, "", format, args)
}

// Tracef logs a message at trace level
func (l *Logger) Tracef(format string, args ...any) {
	l.logf(LevelTrace, "", format, args)
}

// Rawf logs a headerless message
func (l *Logger) Rawf(format string, args ...any) {
	l.logf(LevelRaw, "", format, args)
}

// Raw logs args as space-separated values without a header. Composite values are dumped.
func (l *Logger) Raw(args ...any) {
	l.logRaw(args)
}

// LogAt logs with an explicit call site, for bridges that carry their own file and line.
// info.Level must be a single level; the file is reduced to its base name.
func (l *Logger) LogAt(info LineInfo, format string, args ...any) {
	l.logAt(info, "", format, args)
}

func (l *Logger) logAt(info LineInfo, thread string, format string, args []any) {
	level := Level(info.Level)
	if MaskToID(level) < 0 || !l.enabled(level) {
		return
	}
	l.emit(normalize(info), thread, l.formatter.Load().Body(format, args...))
}

// ThreadLogger tags every record with a fixed thread name
type ThreadLogger struct {
	l    *Logger
	name string
}

// Thread returns a view of the logger whose records carry name as their thread tag
func (l *Logger) Thread(name string) *ThreadLogger {
	return &ThreadLogger{l: l, name: name}
}

func (t *ThreadLogger) Debugf(format string, args ...any) { t.l.logf(LevelDebug, t.name, format, args) }
func (t *ThreadLogger) Infof(format string, args ...any)  { t.l.logf(LevelInfo, t.name, format, args) }
func (t *ThreadLogger) Okf(format string, args ...any)    { t.l.logf(LevelOk, t.name, format, args) }
func (t *ThreadLogger) Warnf(format string, args ...any)  { t.l.logf(LevelWarn, t.name, format, args) }
func (t *ThreadLogger) Errorf(format string, args ...any) { t.l.logf(LevelError, t.name, format, args) }
func (t *ThreadLogger) Tracef(format string, args ...any) { t.l.logf(LevelTrace, t.name, format, args) }
func (t *ThreadLogger) Rawf(format string, args ...any)   { t.l.logf(LevelRaw, t.name, format, args) }

// LogAt logs with an explicit call site under the view's thread tag
func (t *ThreadLogger) LogAt(info LineInfo, format string, args ...any) {
	t.l.logAt(info, t.name, format, args)
}

// enabled is the cheapest rejection path, evaluated before the call site is resolved
func (l *Logger) enabled(level Level) bool {
	return l.filter.Allows(level) &&
		l.state.Started.Load() &&
		!l.state.LoggerDisabled.Load()
}

// logf resolves the call site of the public method's caller and emits the expanded body
func (l *Logger) logf(level Level, thread string, format string, args []any) {
	if !l.enabled(level) {
		return
	}
	info := callSite(level, callerSkip)
	l.emit(info, thread, l.formatter.Load().Body(format, args...))
}

func (l *Logger) logRaw(args []any) {
	if !l.enabled(LevelRaw) {
		return
	}
	info := callSite(LevelRaw, callerSkip)
	l.emit(info, "", l.formatter.Load().RawBody(args...))
}

// emit builds the record, applies the content filter, writes the file line on the caller's goroutine,
// then hands the record to the transport or dispatches it inline. The level counter is incremented last
// and only for records that were not dropped.
func (l *Logger) emit(info LineInfo, thread string, body string) {
	id := MaskToID(Level(info.Level))
	if id < 0 {
		return
	}
	if thread == "" {
		thread = l.getConfig().ThreadName
	}

	rec := newMessage(info, thread)
	rec.Body = body
	rec.Prefix = l.formatter.Load().ConsolePrefix(rec.Fields())

	if !l.filter.Match(rec.Prefix, rec.Body) {
		releaseMessage(rec)
		return
	}
	rec.Seq = l.seq.Add(1)

	// The file line is written before ownership leaves this goroutine
	if fd := l.file.Load(); fd != nil {
		l.writeFile(fd, rec)
	}

	if p := l.state.processor.Load(); p != nil {
		l.state.Pending.Add(1)
		if !p.transport.push(rec) {
			l.state.Pending.Add(-1)
			l.state.DroppedLogs.Add(1)
			releaseMessage(rec)
			return
		}
	} else {
		l.dispatch(rec)
	}

	l.counts[id].Add(1)
}

// dispatch fans a record out to the registry and releases it
func (l *Logger) dispatch(rec *driver.Record) {
	if failed := l.registry.Dispatch(rec); failed > 0 {
		l.internalLog("warning - %d driver(s) failed to write record %d\n", failed, rec.Seq)
	}
	l.state.TotalLogsProcessed.Add(1)
	releaseMessage(rec)
}

func (l *Logger) writeFile(fd *driver.File, rec *driver.Record) {
	err := fd.Write(rec)
	if err == nil {
		return
	}
	l.state.FileFailures.Add(1)
	// A lost stream was already reported when its rotation failed
	if !errors.Is(err, rotation.ErrStreamLost) {
		l.internalLog("error - file write failed: %v\n", err)
	}
}

// internalLog handles writing internal logger diagnostics to stderr, if enabled
func (l *Logger) internalLog(format string, args ...any) {
	cfg := l.getConfig()
	if !cfg.InternalErrorsToStderr {
		return
	}

	if !strings.HasPrefix(format, "plog: ") {
		format = "plog: " + format
	}

	fmt.Fprintf(os.Stderr, format, args...)
}
