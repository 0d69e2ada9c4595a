// Package rotation manages size-based rotation of the main and error-split log streams.
package rotation

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"
)

// MB is the multiplier for thresholds configured in megabytes
const MB int64 = 1024 * 1024

const (
	mainExt    = ".log"
	errorExt   = ".err"
	backupExt  = ".old"
	lockExt    = ".lock"
	lockRetry  = 10 * time.Millisecond
	filePerm   = 0644
	openFlags  = os.O_APPEND | os.O_CREATE | os.O_WRONLY
	noRotation = 0
)

var (
	// ErrClosed is returned for writes while the manager is not enabled
	ErrClosed = errors.New("rotation: manager closed")
	// ErrAlreadyEnabled is returned by Enable on an active manager
	ErrAlreadyEnabled = errors.New("rotation: already enabled")
	// ErrNoStream is returned for the error stream when error-split is off
	ErrNoStream = errors.New("rotation: stream not configured")
	// ErrRotation is returned when rename or reopen fails during rotation
	ErrRotation = errors.New("rotation: rotation failed")
	// ErrStreamLost is returned for writes to a stream whose rotation failed, until Recover succeeds
	ErrStreamLost = errors.New("rotation: stream lost after failed rotation")
	// ErrLockTimeout is returned when the cross-process rotation lock cannot be taken in time
	ErrLockTimeout = errors.New("rotation: lock timeout")
)

// State of the manager
type State int32

const (
	Closed State = iota
	Active
	Rotating
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Active:
		return "active"
	case Rotating:
		return "rotating"
	default:
		return "unknown"
	}
}

// Stream selects the main log or the error-split log
type Stream int

const (
	Main Stream = iota
	Error
)

func (s Stream) String() string {
	if s == Error {
		return "error"
	}
	return "main"
}

// Options configure a Manager
type Options struct {
	MaxSizeBytes int64         // rotation threshold per stream, 0 disables rotation
	ErrorSplit   bool          // open a second stream at <path>.err
	Lock         bool          // take a <path>.lock file lock around rename-and-reopen
	LockTimeout  time.Duration // bound on waiting for the lock file
}

type stream struct {
	file   *os.File
	path   string
	backup string
	lost   bool
}

// Manager owns the open handles of one log base path.
//
// rotMu serializes the whole check-rename-reopen sequence across both streams.
// hmu guards the handles: ordinary writes share it, a rotation swapping a handle takes it exclusively.
type Manager struct {
	opts Options

	rotMu sync.Mutex
	hmu   sync.RWMutex

	base      string
	streams   [2]*stream
	lock      *flock.Flock
	state     atomic.Int32
	rotations atomic.Uint64
}

// New creates a closed manager
func New(opts Options) *Manager {
	if opts.MaxSizeBytes < 0 {
		opts.MaxSizeBytes = noRotation
	}
	return &Manager{opts: opts}
}

// Enable opens <path>.log and, with error-split, <path>.err. Any failure leaves the manager closed.
func (m *Manager) Enable(path string) error {
	m.rotMu.Lock()
	defer m.rotMu.Unlock()
	m.hmu.Lock()
	defer m.hmu.Unlock()

	if State(m.state.Load()) != Closed {
		return ErrAlreadyEnabled
	}

	mainStream, err := openStream(path + mainExt)
	if err != nil {
		return err
	}

	var errStream *stream
	if m.opts.ErrorSplit {
		errStream, err = openStream(path + errorExt)
		if err != nil {
			_ = mainStream.file.Close()
			return err
		}
	}

	m.base = path
	m.streams[Main] = mainStream
	m.streams[Error] = errStream
	if m.opts.Lock {
		m.lock = flock.New(path + lockExt)
	}
	m.state.Store(int32(Active))
	return nil
}

// Write appends p to the selected stream after checking the rotation threshold
func (m *Manager) Write(s Stream, p []byte) (int, error) {
	if State(m.state.Load()) == Closed {
		return 0, ErrClosed
	}

	if m.opts.MaxSizeBytes > 0 {
		if err := m.checkRotate(s); err != nil {
			return 0, err
		}
	}

	m.hmu.RLock()
	defer m.hmu.RUnlock()

	st, err := m.streamLocked(s)
	if err != nil {
		return 0, err
	}
	n, err := st.file.Write(p)
	if err != nil {
		return n, errors.Wrapf(err, "write %s", st.path)
	}
	return n, nil
}

// Rotate forces a rotation of the selected stream regardless of its size
func (m *Manager) Rotate(s Stream) error {
	m.rotMu.Lock()
	defer m.rotMu.Unlock()
	return m.rotateLocked(s)
}

// Recover reopens a stream lost after a failed rotation
func (m *Manager) Recover(s Stream) error {
	m.rotMu.Lock()
	defer m.rotMu.Unlock()
	m.hmu.Lock()
	defer m.hmu.Unlock()

	if State(m.state.Load()) == Closed {
		return ErrClosed
	}
	st := m.streams[s]
	if st == nil {
		return ErrNoStream
	}
	if !st.lost {
		return nil
	}
	f, err := os.OpenFile(st.path, openFlags, filePerm)
	if err != nil {
		return errors.Wrapf(err, "reopen %s", st.path)
	}
	st.file = f
	st.lost = false
	return nil
}

// Sync flushes every open handle to disk
func (m *Manager) Sync() error {
	m.hmu.RLock()
	defer m.hmu.RUnlock()

	var firstErr error
	for _, st := range m.streams {
		if st == nil || st.file == nil {
			continue
		}
		if err := st.file.Sync(); err != nil && firstErr == nil {
			firstErr = errors.Wrapf(err, "sync %s", st.path)
		}
	}
	return firstErr
}

// Close flushes and closes all handles and returns the manager to the closed state
func (m *Manager) Close() error {
	m.rotMu.Lock()
	defer m.rotMu.Unlock()
	m.hmu.Lock()
	defer m.hmu.Unlock()

	if State(m.state.Load()) == Closed {
		return nil
	}

	var firstErr error
	for i, st := range m.streams {
		if st == nil {
			continue
		}
		if st.file != nil {
			_ = st.file.Sync()
			if err := st.file.Close(); err != nil && firstErr == nil {
				firstErr = errors.Wrapf(err, "close %s", st.path)
			}
		}
		m.streams[i] = nil
	}
	m.lock = nil
	m.state.Store(int32(Closed))
	return firstErr
}

// State returns the current manager state
func (m *Manager) State() State {
	return State(m.state.Load())
}

// Rotations returns the number of successful rotations
func (m *Manager) Rotations() uint64 {
	return m.rotations.Load()
}

// Split reports whether the error stream is configured
func (m *Manager) Split() bool {
	return m.opts.ErrorSplit
}

// Path returns the current file path of a stream, or "" when it is not open
func (m *Manager) Path(s Stream) string {
	m.hmu.RLock()
	defer m.hmu.RUnlock()
	if st := m.streams[s]; st != nil {
		return st.path
	}
	return ""
}

// Backup returns the backup path of a stream, or "" when it is not open
func (m *Manager) Backup(s Stream) string {
	m.hmu.RLock()
	defer m.hmu.RUnlock()
	if st := m.streams[s]; st != nil {
		return st.backup
	}
	return ""
}

// Lost reports whether a stream is dropping writes after a failed rotation
func (m *Manager) Lost(s Stream) bool {
	m.hmu.RLock()
	defer m.hmu.RUnlock()
	st := m.streams[s]
	return st != nil && st.lost
}

// checkRotate samples the file size with a stat call and rotates when it exceeds the threshold.
// The size can lag behind concurrent writers.
func (m *Manager) checkRotate(s Stream) error {
	if !m.overThreshold(s) {
		return nil
	}

	m.rotMu.Lock()
	defer m.rotMu.Unlock()

	// Another writer may have rotated while we waited
	if !m.overThreshold(s) {
		return nil
	}
	return m.rotateLocked(s)
}

func (m *Manager) overThreshold(s Stream) bool {
	m.hmu.RLock()
	defer m.hmu.RUnlock()

	st := m.streams[s]
	if st == nil || st.lost || st.file == nil {
		return false
	}
	fi, err := st.file.Stat()
	if err != nil {
		return false
	}
	return fi.Size() > m.opts.MaxSizeBytes
}

// rotateLocked closes the stream, replaces any stale backup with the current file and reopens
// the original path. rotMu must be held. On failure the stream is marked lost and is not retried.
func (m *Manager) rotateLocked(s Stream) error {
	if State(m.state.Load()) == Closed {
		return ErrClosed
	}

	if m.lock != nil {
		release, err := m.acquireFileLock()
		if err != nil {
			return err
		}
		defer release()
	}

	m.hmu.Lock()
	defer m.hmu.Unlock()

	st := m.streams[s]
	if st == nil {
		return ErrNoStream
	}
	if st.lost {
		return ErrStreamLost
	}

	m.state.Store(int32(Rotating))
	defer m.state.Store(int32(Active))

	// The handle is unusable after Close even on error, continue with the rename
	_ = st.file.Close()
	st.file = nil

	if err := os.Remove(st.backup); err != nil && !os.IsNotExist(err) {
		st.lost = true
		return errors.Wrapf(ErrRotation, "remove stale backup %s: %v", st.backup, err)
	}
	if err := os.Rename(st.path, st.backup); err != nil {
		st.lost = true
		return errors.Wrapf(ErrRotation, "rename %s to %s: %v", st.path, st.backup, err)
	}
	f, err := os.OpenFile(st.path, openFlags, filePerm)
	if err != nil {
		st.lost = true
		return errors.Wrapf(ErrRotation, "reopen %s: %v", st.path, err)
	}

	st.file = f
	m.rotations.Add(1)
	return nil
}

// acquireFileLock takes the cross-process lock with a bounded wait
func (m *Manager) acquireFileLock() (func(), error) {
	timeout := m.opts.LockTimeout
	if timeout <= 0 {
		timeout = time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	locked, err := m.lock.TryLockContext(ctx, lockRetry)
	if err != nil || !locked {
		return nil, errors.Wrapf(ErrLockTimeout, "%s after %v: %v", m.lock.Path(), timeout, err)
	}
	return func() { _ = m.lock.Unlock() }, nil
}

// streamLocked returns a writable stream. hmu must be held.
func (m *Manager) streamLocked(s Stream) (*stream, error) {
	st := m.streams[s]
	if st == nil {
		if State(m.state.Load()) == Closed {
			return nil, ErrClosed
		}
		return nil, ErrNoStream
	}
	if st.lost || st.file == nil {
		return nil, errors.Wrapf(ErrStreamLost, "%s", st.path)
	}
	return st, nil
}

func openStream(path string) (*stream, error) {
	f, err := os.OpenFile(path, openFlags, filePerm)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	return &stream{file: f, path: path, backup: path + backupExt}, nil
}
