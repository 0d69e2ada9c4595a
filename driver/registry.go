package driver

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
)

// Status is a snapshot of one registered driver
type Status struct {
	Name      string
	Enabled   bool
	Failures  uint64
	LastError error
}

type entry struct {
	drv      Driver
	enabled  atomic.Bool
	failures atomic.Uint64
	mu       sync.Mutex // guards lastErr
	lastErr  error
}

func (e *entry) fail(err error) {
	e.failures.Add(1)
	e.mu.Lock()
	e.lastErr = err
	e.mu.Unlock()
}

// Registry holds drivers in registration order.
// Registration happens before logging starts; dispatch is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries []*entry
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a driver. Names must be unique.
func (r *Registry) Register(d Driver, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entries {
		if e.drv.Name() == d.Name() {
			return errors.Wrapf(ErrDuplicateDriver, "%q", d.Name())
		}
	}
	e := &entry{drv: d}
	e.enabled.Store(enabled)
	r.entries = append(r.entries, e)
	return nil
}

// SetEnabled toggles a registered driver
func (r *Registry) SetEnabled(name string, enabled bool) error {
	e := r.find(name)
	if e == nil {
		return errors.Wrapf(ErrUnknownDriver, "%q", name)
	}
	e.enabled.Store(enabled)
	return nil
}

// Enabled reports whether a driver is registered and enabled
func (r *Registry) Enabled(name string) bool {
	e := r.find(name)
	return e != nil && e.enabled.Load()
}

// Len returns the number of registered drivers
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Init initializes every registered driver in registration order, enabled or not,
// so a driver enabled later never writes into uninitialized state.
// It stops at the first failure and closes the drivers initialized before it.
func (r *Registry) Init() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i, e := range r.entries {
		initializer, ok := e.drv.(Initializer)
		if !ok {
			continue
		}
		if err := initializer.Init(); err != nil {
			for _, done := range r.entries[:i] {
				if c, ok := done.drv.(Closer); ok {
					_ = c.Close()
				}
			}
			return errors.Wrapf(ErrDriverInit, "%s: %v", e.drv.Name(), err)
		}
	}
	return nil
}

// Dispatch writes rec to every enabled driver in registration order, flushing after each write.
// A failing driver does not stop the others; failures are counted per driver.
// It returns the number of drivers that failed.
func (r *Registry) Dispatch(rec *Record) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	failed := 0
	for _, e := range r.entries {
		if !e.enabled.Load() {
			continue
		}
		if err := safeWrite(e.drv, rec); err != nil {
			e.fail(err)
			failed++
		}
	}
	return failed
}

// Flush flushes all enabled drivers and returns the first error
func (r *Registry) Flush() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var firstErr error
	for _, e := range r.entries {
		if f, ok := e.drv.(Flusher); ok && e.enabled.Load() {
			if err := f.Flush(); err != nil && firstErr == nil {
				firstErr = errors.Wrapf(err, "flush %s", e.drv.Name())
			}
		}
	}
	return firstErr
}

// Close closes every driver that holds resources, enabled or not
func (r *Registry) Close() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var firstErr error
	for _, e := range r.entries {
		if c, ok := e.drv.(Closer); ok {
			if err := c.Close(); err != nil && firstErr == nil {
				firstErr = errors.Wrapf(err, "close %s", e.drv.Name())
			}
		}
	}
	return firstErr
}

// Failures returns the failure count of a driver
func (r *Registry) Failures(name string) uint64 {
	if e := r.find(name); e != nil {
		return e.failures.Load()
	}
	return 0
}

// Status returns a snapshot of every driver in registration order
func (r *Registry) Status() []Status {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Status, 0, len(r.entries))
	for _, e := range r.entries {
		e.mu.Lock()
		last := e.lastErr
		e.mu.Unlock()
		out = append(out, Status{
			Name:      e.drv.Name(),
			Enabled:   e.enabled.Load(),
			Failures:  e.failures.Load(),
			LastError: last,
		})
	}
	return out
}

func (r *Registry) find(name string) *entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.entries {
		if e.drv.Name() == name {
			return e
		}
	}
	return nil
}

// safeWrite writes and flushes one driver, converting a panic into ErrDriverWrite
func safeWrite(d Driver, rec *Record) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = errors.Wrapf(ErrDriverWrite, "%s panicked: %s", d.Name(), fmt.Sprint(p))
		}
	}()

	if err = d.Write(rec); err != nil {
		return errors.Wrapf(err, "%s", d.Name())
	}
	if f, ok := d.(Flusher); ok {
		if err = f.Flush(); err != nil {
			return errors.Wrapf(err, "flush %s", d.Name())
		}
	}
	return nil
}
