package rotation

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, opts Options) (*Manager, string) {
	t.Helper()
	base := filepath.Join(t.TempDir(), "app")
	m := New(opts)
	require.NoError(t, m.Enable(base))
	t.Cleanup(func() { _ = m.Close() })
	return m, base
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestEnableCreatesStreams(t *testing.T) {
	t.Run("MainOnly", func(t *testing.T) {
		m, base := newTestManager(t, Options{})
		assert.Equal(t, Active, m.State())
		assert.FileExists(t, base+".log")
		assert.NoFileExists(t, base+".err")

		_, err := m.Write(Error, []byte("x\n"))
		assert.ErrorIs(t, err, ErrNoStream)
	})

	t.Run("ErrorSplit", func(t *testing.T) {
		m, base := newTestManager(t, Options{ErrorSplit: true})
		assert.FileExists(t, base+".log")
		assert.FileExists(t, base+".err")
		assert.Equal(t, base+".err.old", m.Backup(Error))

		_, err := m.Write(Error, []byte("bad\n"))
		require.NoError(t, err)
		require.NoError(t, m.Sync())
		assert.Equal(t, "bad\n", readFile(t, base+".err"))
	})

	t.Run("AlreadyEnabled", func(t *testing.T) {
		m, base := newTestManager(t, Options{})
		assert.ErrorIs(t, m.Enable(base), ErrAlreadyEnabled)
	})

	t.Run("BadDirectory", func(t *testing.T) {
		m := New(Options{})
		err := m.Enable(filepath.Join(t.TempDir(), "missing", "app"))
		require.Error(t, err)
		assert.Equal(t, Closed, m.State())
	})
}

func TestWriteAppends(t *testing.T) {
	base := filepath.Join(t.TempDir(), "app")
	require.NoError(t, os.WriteFile(base+".log", []byte("existing\n"), 0644))

	m := New(Options{})
	require.NoError(t, m.Enable(base))
	_, err := m.Write(Main, []byte("next\n"))
	require.NoError(t, err)
	require.NoError(t, m.Close())

	assert.Equal(t, "existing\nnext\n", readFile(t, base+".log"))
}

func TestThresholdRotation(t *testing.T) {
	m, base := newTestManager(t, Options{MaxSizeBytes: 100})

	chunk := []byte(strings.Repeat("a", 59) + "\n")
	_, err := m.Write(Main, chunk)
	require.NoError(t, err)
	_, err = m.Write(Main, chunk)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), m.Rotations(), "size is only checked before a write")

	_, err = m.Write(Main, []byte("fresh\n"))
	require.NoError(t, err)

	assert.Equal(t, uint64(1), m.Rotations())
	assert.Equal(t, string(chunk)+string(chunk), readFile(t, base+".log.old"))
	assert.Equal(t, "fresh\n", readFile(t, base+".log"))
	assert.Equal(t, Active, m.State())
}

func TestRotationReplacesStaleBackup(t *testing.T) {
	m, base := newTestManager(t, Options{})
	require.NoError(t, os.WriteFile(base+".log.old", []byte("stale\n"), 0644))

	_, err := m.Write(Main, []byte("first\n"))
	require.NoError(t, err)
	require.NoError(t, m.Rotate(Main))
	_, err = m.Write(Main, []byte("second\n"))
	require.NoError(t, err)
	require.NoError(t, m.Rotate(Main))

	assert.Equal(t, "second\n", readFile(t, base+".log.old"))
	assert.Equal(t, "", readFile(t, base+".log"))
	assert.Equal(t, uint64(2), m.Rotations())
}

func TestStreamsRotateIndependently(t *testing.T) {
	m, base := newTestManager(t, Options{ErrorSplit: true, MaxSizeBytes: 10})

	_, err := m.Write(Error, []byte("0123456789ab\n"))
	require.NoError(t, err)
	_, err = m.Write(Error, []byte("x\n"))
	require.NoError(t, err)
	_, err = m.Write(Main, []byte("main\n"))
	require.NoError(t, err)

	assert.FileExists(t, base+".err.old")
	assert.NoFileExists(t, base+".log.old")
	assert.Equal(t, uint64(1), m.Rotations())
}

func TestFailedRotationLosesStream(t *testing.T) {
	m, base := newTestManager(t, Options{})

	// A non-empty directory at the backup path makes both remove and rename fail
	require.NoError(t, os.MkdirAll(filepath.Join(base+".log.old", "blocker"), 0755))

	err := m.Rotate(Main)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRotation)
	assert.True(t, m.Lost(Main))
	assert.Equal(t, Active, m.State())

	_, err = m.Write(Main, []byte("dropped\n"))
	assert.ErrorIs(t, err, ErrStreamLost)
	assert.ErrorIs(t, m.Rotate(Main), ErrStreamLost, "a lost stream is not retried")

	require.NoError(t, m.Recover(Main))
	assert.False(t, m.Lost(Main))
	_, err = m.Write(Main, []byte("back\n"))
	require.NoError(t, err)
	assert.Equal(t, "back\n", readFile(t, base+".log"))
}

func TestLockFile(t *testing.T) {
	m, base := newTestManager(t, Options{Lock: true, LockTimeout: 200 * time.Millisecond})

	_, err := m.Write(Main, []byte("locked\n"))
	require.NoError(t, err)
	require.NoError(t, m.Rotate(Main))

	assert.FileExists(t, base+".lock")
	assert.Equal(t, "locked\n", readFile(t, base+".log.old"))
}

func TestConcurrentWritesRotateOnce(t *testing.T) {
	m, base := newTestManager(t, Options{MaxSizeBytes: 1 << 20})

	line := []byte("concurrent line\n")
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				_, err := m.Write(Main, line)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()
	require.NoError(t, m.Sync())

	assert.Equal(t, uint64(0), m.Rotations())
	assert.Equal(t, 800*len(line), len(readFile(t, base+".log")))
}

func TestClosedManager(t *testing.T) {
	m := New(Options{})
	_, err := m.Write(Main, []byte("x"))
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, m.Rotate(Main), ErrClosed)
	assert.NoError(t, m.Close())

	m, _ = newTestManager(t, Options{})
	require.NoError(t, m.Close())
	assert.Equal(t, Closed, m.State())
	assert.Empty(t, m.Path(Main))
	_, err = m.Write(Main, []byte("x"))
	assert.True(t, errors.Is(err, ErrClosed))
}
