// FILE: lifecycle_test.go
package plog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/plog/rotation"
)

func TestStartStopLifecycle(t *testing.T) {
	logger, _, _ := createTestLogger(t)

	assert.True(t, logger.state.Started.Load(), "Logger should be in a started state")

	require.NoError(t, logger.Stop())
	assert.False(t, logger.state.Started.Load(), "Logger should be in a stopped state after Stop()")

	require.NoError(t, logger.Start())
	assert.True(t, logger.state.Started.Load(), "Logger should be in a started state after restart")
}

func TestStartAlreadyStarted(t *testing.T) {
	logger, _, _ := createTestLogger(t)

	assert.NoError(t, logger.Start())
	assert.True(t, logger.state.Started.Load())
}

func TestStopAlreadyStopped(t *testing.T) {
	logger, _, _ := createTestLogger(t)

	require.NoError(t, logger.Stop())
	assert.NoError(t, logger.Stop())
	assert.False(t, logger.state.Started.Load())
}

func TestShutdown(t *testing.T) {
	logger, capture, tmpDir := createTestLogger(t, "async=true")

	logger.Okf("before shutdown")
	require.NoError(t, logger.Shutdown())

	assert.True(t, logger.state.ShutdownCalled.Load())
	assert.False(t, logger.state.IsInitialized.Load(), "Shutdown should de-initialize the logger")
	assert.Nil(t, logger.file.Load())
	assert.Equal(t, []string{"before shutdown"}, capture.bodies())

	// Idempotent
	assert.NoError(t, logger.Shutdown())
	assert.Error(t, logger.Flush(time.Second))

	data, err := os.ReadFile(filepath.Join(tmpDir, "plog.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "before shutdown")
}

func TestReconfigureAfterShutdown(t *testing.T) {
	logger, capture, _ := createTestLogger(t)
	require.NoError(t, logger.Shutdown())

	cfg := logger.GetConfig()
	cfg.Name = "second"
	require.NoError(t, logger.ApplyConfig(cfg))
	require.NoError(t, logger.Start())
	defer logger.Shutdown()

	logger.Infof("again")
	assert.Equal(t, []string{"again"}, capture.bodies())
	assert.FileExists(t, filepath.Join(cfg.Directory, "second.log"))
}

func TestEnableDisableFileLogging(t *testing.T) {
	logger, _, tmpDir := createTestLogger(t, "enable_file=false")
	path := filepath.Join(tmpDir, "plog.log")
	assert.Nil(t, logger.file.Load())
	logger.Infof("console only")

	require.NoError(t, logger.EnableFileLogging())
	logger.Infof("to file")
	require.NoError(t, logger.DisableFileLogging())
	logger.Infof("console only")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "\n"))
	assert.Contains(t, string(data), "to file")
}

func TestFileOpenFailure(t *testing.T) {
	tmpDir := t.TempDir()
	blocker := filepath.Join(tmpDir, "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	logger := NewLogger()
	cfg := DefaultConfig()
	cfg.EnableStdout = false
	cfg.EnableFile = true
	cfg.Directory = filepath.Join(blocker, "logs")

	err := logger.ApplyConfig(cfg)
	require.Error(t, err)
	assert.False(t, logger.state.IsInitialized.Load())
	assert.ErrorIs(t, logger.Start(), ErrNotInitialized)
}

// TestRecoverLostFileStream verifies that a stream lost to a failed rotation is reopened by EnableFileLogging
func TestRecoverLostFileStream(t *testing.T) {
	logger, _, tmpDir := createTestLogger(t, "max_size_mb=1", "max_message_len=1024")
	require.NoError(t, logger.EnableDriver("capture", false))

	// A non-empty directory at the backup path makes the rotation fail
	blocker := filepath.Join(tmpDir, "plog.log.old")
	require.NoError(t, os.MkdirAll(filepath.Join(blocker, "blocker"), 0755))

	payload := strings.Repeat("x", 1000)
	for i := 0; i < 1200; i++ {
		logger.Infof("%s", payload)
	}

	mgr := logger.file.Load().Manager()
	require.True(t, mgr.Lost(rotation.Main))
	assert.NotZero(t, logger.Stats().FileFailures)
	assert.Zero(t, logger.Stats().Rotations)

	require.NoError(t, os.RemoveAll(blocker))
	require.NoError(t, logger.EnableFileLogging())
	assert.False(t, mgr.Lost(rotation.Main))
	assert.Same(t, mgr, logger.file.Load().Manager(), "recovery keeps the manager")

	logger.Infof("back")
	assert.Equal(t, uint64(1), logger.Stats().Rotations)
	lines := readLines(t, filepath.Join(tmpDir, "plog.log"))
	require.Len(t, lines, 1)
	assert.True(t, strings.HasSuffix(lines[0], "]: back"))
}

func TestRecoverFileLoggingDisabled(t *testing.T) {
	logger, _, _ := createTestLogger(t, "enable_file=false")
	assert.Error(t, logger.RecoverFileLogging())
}
