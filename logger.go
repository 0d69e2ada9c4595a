// FILE: logger.go
package plog

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/plog/driver"
	"github.com/lixenwraith/plog/formatter"
	"github.com/lixenwraith/plog/rotation"
	"github.com/lixenwraith/plog/sanitizer"
)

var (
	// ErrNotInitialized is returned by operations that need ApplyConfig first
	ErrNotInitialized = errors.New("plog: logger not initialized, call ApplyConfig first")
	// ErrAlreadyStarted is returned when drivers are registered after the first Start
	ErrAlreadyStarted = errors.New("plog: logger already started")
)

// Logger owns every piece of mutable logging state: level mask, content filter,
// per-level counters, driver registry, file rotation and the asynchronous transport
type Logger struct {
	currentConfig atomic.Value // stores *Config
	state         State
	initMu        sync.Mutex

	filter    *Filter
	formatter atomic.Pointer[formatter.Formatter]
	registry  *driver.Registry
	stdio     *driver.Stdio
	file      atomic.Pointer[driver.File]

	counts [numLevels]atomic.Uint64
	seq    atomic.Uint64
}

// NewLogger creates a new Logger instance with default settings.
// The console driver is registered first; ApplyConfig must be called before Start.
func NewLogger() *Logger {
	cfg := DefaultConfig()
	l := &Logger{
		filter:   NewFilter(cfg.mask(), int(cfg.MaxFilterLen)),
		registry: driver.NewRegistry(),
		stdio:    driver.NewStdio(cfg.StdoutTarget),
	}
	l.currentConfig.Store(cfg)
	l.formatter.Store(newFormatter(cfg))
	l.state.ProcessorExited.Store(true)
	l.state.LoggerStartTime.Store(time.Now())

	// Registration of the first driver on an empty registry cannot fail
	_ = l.registry.Register(l.stdio, cfg.EnableStdout)
	return l
}

// ApplyConfig applies a validated configuration to the logger
func (l *Logger) ApplyConfig(cfg *Config) error {
	if cfg == nil {
		return fmtErrorf("configuration cannot be nil")
	}

	if err := cfg.Validate(); err != nil {
		return fmtErrorf("invalid configuration: %w", err)
	}

	l.initMu.Lock()
	defer l.initMu.Unlock()

	return l.applyConfig(cfg.Clone())
}

// GetConfig returns a copy of current configuration
func (l *Logger) GetConfig() *Config {
	return l.getConfig().Clone()
}

// RegisterDriver adds an output backend after the built-in console driver.
// Drivers are initialized in registration order by the first Start.
func (l *Logger) RegisterDriver(d driver.Driver, enabled bool) error {
	if l.state.DriversReady.Load() {
		return ErrAlreadyStarted
	}
	if err := l.registry.Register(d, enabled); err != nil {
		return fmtErrorf("failed to register driver: %w", err)
	}
	return nil
}

// EnableDriver enables or disables a registered driver by name
func (l *Logger) EnableDriver(name string, enabled bool) error {
	return l.registry.SetEnabled(name, enabled)
}

// Start initializes the registered drivers on first use and, in async mode, starts the drain goroutine.
// Safe to call multiple times.
func (l *Logger) Start() error {
	if !l.state.IsInitialized.Load() {
		return ErrNotInitialized
	}

	if !l.state.Started.CompareAndSwap(false, true) {
		return nil
	}

	if l.state.DriversReady.CompareAndSwap(false, true) {
		if err := l.registry.Init(); err != nil {
			l.state.DriversReady.Store(false)
			l.state.Started.Store(false)
			return fmtErrorf("failed to start: %w", err)
		}
	}

	cfg := l.getConfig()
	if cfg.Async {
		p, err := l.newProcessor(cfg)
		if err != nil {
			l.state.Started.Store(false)
			return err
		}
		l.state.processor.Store(p)
		go l.processMessages(p)
	}

	if cfg.HeartbeatIntervalS > 0 {
		l.startHeartbeat(time.Duration(cfg.HeartbeatIntervalS) * time.Second)
	}
	return nil
}

// Stop halts log processing. Queued records are drained before the drain goroutine exits,
// and the transport is destroyed only after it has been joined. Can be restarted with Start.
func (l *Logger) Stop(timeout ...time.Duration) error {
	if !l.state.Started.CompareAndSwap(true, false) {
		return nil
	}

	l.stopHeartbeat()

	var err error
	if p := l.state.processor.Swap(nil); p != nil {
		p.running.Store(false)

		effectiveTimeout := time.Duration(l.getConfig().ShutdownTimeoutMs) * time.Millisecond
		if len(timeout) > 0 {
			effectiveTimeout = timeout[0]
		}

		select {
		case <-p.done:
			// Records pushed after the final drain are still delivered
			p.transport.destroy(func(rec *driver.Record) {
				l.dispatch(rec)
				l.state.Pending.Add(-1)
			})
		case <-time.After(effectiveTimeout):
			err = fmtErrorf("processor did not exit within timeout (%v)", effectiveTimeout)
		}
	}

	if flushErr := l.registry.Flush(); flushErr != nil {
		err = combineErrors(err, fmtErrorf("failed to flush drivers: %w", flushErr))
	}
	return err
}

// Shutdown stops processing, closes every driver and the log files
func (l *Logger) Shutdown(timeout ...time.Duration) error {
	if !l.state.ShutdownCalled.CompareAndSwap(false, true) {
		return nil
	}

	l.state.LoggerDisabled.Store(true)

	if !l.state.IsInitialized.Load() {
		l.state.ShutdownCalled.Store(false)
		l.state.LoggerDisabled.Store(false)
		return nil
	}

	finalErr := l.Stop(timeout...)

	l.initMu.Lock()
	defer l.initMu.Unlock()

	l.state.IsInitialized.Store(false)

	if err := l.registry.Close(); err != nil {
		finalErr = combineErrors(finalErr, fmtErrorf("failed to close drivers: %w", err))
	}
	l.state.DriversReady.Store(false)

	if fd := l.file.Swap(nil); fd != nil {
		if err := fd.Close(); err != nil {
			finalErr = combineErrors(finalErr, fmtErrorf("failed to close log file: %w", err))
		}
	}

	return finalErr
}

// Flush waits until every queued record has been dispatched, then flushes drivers and syncs the log files
func (l *Logger) Flush(timeout time.Duration) error {
	l.state.flushMutex.Lock()
	defer l.state.flushMutex.Unlock()

	if !l.state.IsInitialized.Load() || l.state.ShutdownCalled.Load() {
		return fmtErrorf("logger not initialized or already shut down")
	}

	deadline := time.Now().Add(timeout)
	for l.state.Pending.Load() > 0 {
		if time.Now().After(deadline) {
			return fmtErrorf("timeout waiting for %d queued records (%v)", l.state.Pending.Load(), timeout)
		}
		time.Sleep(minWaitTime)
	}

	err := l.registry.Flush()
	if fd := l.file.Load(); fd != nil {
		err = combineErrors(err, fd.Flush())
	}
	return err
}

// SetLevel replaces the level mask
func (l *Logger) SetLevel(m Level) {
	l.initMu.Lock()
	defer l.initMu.Unlock()

	cfg := l.getConfig().Clone()
	cfg.Level = strconv.FormatUint(uint64(m), 10)
	l.currentConfig.Store(cfg)
	l.filter.SetMask(m)
}

// Level returns the current level mask
func (l *Logger) Level() Level {
	return l.filter.Mask()
}

// SetFilter sets the substring a record must contain in its prefix or body to be emitted.
// An empty pattern disables content filtering. On ErrFilterTooLong the previous pattern stays active.
func (l *Logger) SetFilter(pattern string) error {
	return l.filter.SetPattern(pattern)
}

// Filter returns the current content filter pattern
func (l *Logger) Filter() string {
	return l.filter.Pattern()
}

// EnableFileLogging opens <directory>/<name>.log (and .err with error-split) and starts writing file lines.
// If file logging is already on, streams lost to a failed rotation are reopened instead.
func (l *Logger) EnableFileLogging() error {
	cfg := l.GetConfig()
	if cfg.EnableFile && l.file.Load() != nil {
		return l.RecoverFileLogging()
	}
	cfg.EnableFile = true
	return l.ApplyConfig(cfg)
}

// RecoverFileLogging reopens log streams that a failed rotation left lost.
// Streams that are still healthy are left untouched.
func (l *Logger) RecoverFileLogging() error {
	fd := l.file.Load()
	if fd == nil {
		return fmtErrorf("file logging is not enabled")
	}

	mgr := fd.Manager()
	streams := []rotation.Stream{rotation.Main}
	if mgr.Split() {
		streams = append(streams, rotation.Error)
	}

	var err error
	for _, s := range streams {
		if rerr := mgr.Recover(s); rerr != nil {
			err = combineErrors(err, fmtErrorf("failed to recover %s stream: %w", s, rerr))
		}
	}
	return err
}

// DisableFileLogging closes the log files
func (l *Logger) DisableFileLogging() error {
	cfg := l.GetConfig()
	cfg.EnableFile = false
	return l.ApplyConfig(cfg)
}

// getConfig returns the current configuration (thread-safe)
func (l *Logger) getConfig() *Config {
	return l.currentConfig.Load().(*Config)
}

// applyConfig is the internal implementation for applying configuration, assuming initMu is held.
// The only step that can fail, opening the log files, runs before any state is replaced.
func (l *Logger) applyConfig(cfg *Config) error {
	oldCfg := l.getConfig()
	wasInitialized := l.state.IsInitialized.Load()
	f := newFormatter(cfg)

	if err := l.applyFileConfig(oldCfg, cfg, f, wasInitialized); err != nil {
		return err
	}

	needsRestart := l.state.Started.Load() && processorConfigChanged(oldCfg, cfg)
	if needsRestart {
		if err := l.Stop(); err != nil {
			return fmtErrorf("failed to stop processor for restart: %w", err)
		}
	}

	l.currentConfig.Store(cfg)
	l.formatter.Store(f)
	l.filter.SetMask(cfg.mask())
	l.filter.SetMaxLen(int(cfg.MaxFilterLen))

	l.stdio.SetTarget(cfg.StdoutTarget)
	_ = l.registry.SetEnabled(l.stdio.Name(), cfg.EnableStdout)

	l.state.IsInitialized.Store(true)
	l.state.ShutdownCalled.Store(false)
	l.state.LoggerDisabled.Store(false)

	if needsRestart {
		return l.Start()
	}
	return nil
}

// applyFileConfig opens, reuses or closes the rotation manager behind the file driver
func (l *Logger) applyFileConfig(oldCfg, cfg *Config, f *formatter.Formatter, wasInitialized bool) error {
	current := l.file.Load()

	if !cfg.EnableFile {
		if old := l.file.Swap(nil); old != nil {
			if err := old.Close(); err != nil {
				l.internalLog("warning - failed to close log file during disable: %v\n", err)
			}
		}
		return nil
	}

	if current != nil && wasInitialized && !fileConfigChanged(oldCfg, cfg) {
		// Same files, new formatting options
		l.file.Store(driver.NewFile(current.Manager(), f, uint32(errorSplitMask)))
		return nil
	}

	if err := os.MkdirAll(cfg.Directory, 0755); err != nil {
		return fmtErrorf("failed to create log directory '%s': %w", cfg.Directory, err)
	}

	mgr := rotation.New(rotation.Options{
		MaxSizeBytes: cfg.MaxSizeMB * rotation.MB,
		ErrorSplit:   cfg.ErrorSplit,
		Lock:         cfg.RotationLock,
		LockTimeout:  time.Duration(cfg.RotationLockTimeoutMs) * time.Millisecond,
	})
	if err := mgr.Enable(filepath.Join(cfg.Directory, cfg.Name)); err != nil {
		return fmtErrorf("failed to open log file: %w", err)
	}

	if old := l.file.Swap(driver.NewFile(mgr, f, uint32(errorSplitMask))); old != nil {
		if err := old.Close(); err != nil {
			l.internalLog("warning - failed to close old log file: %v\n", err)
		}
	}
	return nil
}

// newFormatter builds the shared formatter for a configuration
func newFormatter(cfg *Config) *formatter.Formatter {
	san := sanitizer.New().Policy(sanitizer.PolicyPreset(cfg.Sanitization))
	return formatter.New(san).
		TimestampFormat(cfg.TimestampFormat).
		Color(cfg.EnableColor).
		MaxPrefix(int(cfg.MaxPrefixLen)).
		MaxBody(int(cfg.MaxMessageLen))
}

// fileConfigChanged reports whether the log files must be reopened
func fileConfigChanged(oldCfg, newCfg *Config) bool {
	return oldCfg.Directory != newCfg.Directory ||
		oldCfg.Name != newCfg.Name ||
		oldCfg.MaxSizeMB != newCfg.MaxSizeMB ||
		oldCfg.ErrorSplit != newCfg.ErrorSplit ||
		oldCfg.RotationLock != newCfg.RotationLock ||
		oldCfg.RotationLockTimeoutMs != newCfg.RotationLockTimeoutMs
}

// processorConfigChanged reports whether a running logger must restart its drain goroutine or heartbeat
func processorConfigChanged(oldCfg, newCfg *Config) bool {
	return oldCfg.Async != newCfg.Async ||
		oldCfg.AsyncTransport != newCfg.AsyncTransport ||
		oldCfg.RingCapacity != newCfg.RingCapacity ||
		oldCfg.PollIntervalMs != newCfg.PollIntervalMs ||
		oldCfg.HeartbeatIntervalS != newCfg.HeartbeatIntervalS
}
