package compat

import (
	"sync"
	"testing"

	"github.com/panjf2000/gnet/v2/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/lixenwraith/plog"
	"github.com/lixenwraith/plog/driver"
)

var (
	_ logging.Logger  = (*GnetAdapter)(nil)
	_ fasthttp.Logger = (*FastHTTPAdapter)(nil)
)

type recorder struct {
	mu      sync.Mutex
	records []driver.Record
}

func (r *recorder) Name() string { return "recorder" }

func (r *recorder) Write(rec *driver.Record) error {
	r.mu.Lock()
	r.records = append(r.records, *rec)
	r.mu.Unlock()
	return nil
}

func (r *recorder) snapshot() []driver.Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]driver.Record(nil), r.records...)
}

// createTestCompatBuilder creates a started debugging logger feeding a recorder
func createTestCompatBuilder(t *testing.T) (*Builder, *plog.Logger, *recorder) {
	t.Helper()
	rec := &recorder{}
	appLogger, err := plog.NewBuilder().
		Directory(t.TempDir()).
		EnableStdout(false).
		LevelString("debugging").
		Driver(rec, true).
		Build()
	require.NoError(t, err)
	require.NoError(t, appLogger.Start())
	t.Cleanup(func() { _ = appLogger.Shutdown() })

	return NewBuilder().WithLogger(appLogger), appLogger, rec
}

func TestCompatBuilder(t *testing.T) {
	t.Run("with existing logger", func(t *testing.T) {
		builder, logger, _ := createTestCompatBuilder(t)

		gnetAdapter, err := builder.BuildGnet()
		require.NoError(t, err)
		assert.Equal(t, logger, gnetAdapter.logger)
	})

	t.Run("with config", func(t *testing.T) {
		logCfg := plog.DefaultConfig()
		logCfg.EnableStdout = false

		builder := NewBuilder().WithConfig(logCfg)
		fasthttpAdapter, err := builder.BuildFastHTTP()
		require.NoError(t, err)
		assert.NotNil(t, fasthttpAdapter)

		logger, err := builder.GetLogger()
		require.NoError(t, err)
		defer logger.Shutdown()
		assert.Same(t, logger, fasthttpAdapter.logger, "created logger is cached")
	})

	t.Run("nil logger", func(t *testing.T) {
		_, err := NewBuilder().WithLogger(nil).BuildGnet()
		assert.Error(t, err)
	})
}

func TestGnetAdapter(t *testing.T) {
	builder, _, rec := createTestCompatBuilder(t)

	var fatalMsg string
	adapter, err := builder.BuildGnet(WithFatalHandler(func(msg string) {
		fatalMsg = msg
	}))
	require.NoError(t, err)

	adapter.Debugf("gnet debug id=%d", 1)
	adapter.Infof("gnet info id=%d", 2)
	adapter.Warnf("gnet warn id=%d", 3)
	adapter.Errorf("gnet error id=%d", 4)
	adapter.Fatalf("gnet fatal id=%d", 5)

	expected := []struct{ level, body string }{
		{"DEBUG", "gnet debug id=1"},
		{"INFO", "gnet info id=2"},
		{"WARN", "gnet warn id=3"},
		{"ERROR", "gnet error id=4"},
		{"ERROR", "fatal: gnet fatal id=5"},
	}

	records := rec.snapshot()
	require.Len(t, records, len(expected))
	for i, r := range records {
		assert.Equal(t, expected[i].level, r.LevelName)
		assert.Equal(t, expected[i].body, r.Body)
		assert.Equal(t, "gnet", r.Thread)
		assert.Equal(t, "compat_test.go", r.Info.File)
		assert.Equal(t, "TestGnetAdapter", r.Info.Function)
	}
	assert.Equal(t, "gnet fatal id=5", fatalMsg)
}

func TestGnetAdapterThreadName(t *testing.T) {
	builder, _, rec := createTestCompatBuilder(t)

	adapter, err := builder.BuildGnet(WithThreadName("engine"))
	require.NoError(t, err)
	adapter.Infof("listening")

	records := rec.snapshot()
	require.Len(t, records, 1)
	assert.Equal(t, "engine", records[0].Thread)
}

func TestFastHTTPAdapter(t *testing.T) {
	builder, _, rec := createTestCompatBuilder(t)

	adapter, err := builder.BuildFastHTTP()
	require.NoError(t, err)

	testMessages := []string{
		"this is some informational message",
		"a debug message for the developers",
		"warning: something might be wrong",
		"an error occurred while processing",
	}
	for _, msg := range testMessages {
		adapter.Printf("%s", msg)
	}

	expectedLevels := []string{"INFO", "DEBUG", "WARN", "ERROR"}
	records := rec.snapshot()
	require.Len(t, records, len(testMessages))
	for i, r := range records {
		assert.Equal(t, expectedLevels[i], r.LevelName)
		assert.Equal(t, testMessages[i], r.Body)
		assert.Equal(t, "fasthttp", r.Thread)
	}
}

func TestFastHTTPAdapterOptions(t *testing.T) {
	builder, _, rec := createTestCompatBuilder(t)

	adapter, err := builder.BuildFastHTTP(
		WithDefaultLevel(plog.LevelOk),
		WithLevelDetector(func(msg string) plog.Level {
			if msg == "slow client" {
				return plog.LevelTrace
			}
			return 0
		}),
	)
	require.NoError(t, err)

	adapter.Printf("served %d requests", 3)
	adapter.Printf("slow client")

	records := rec.snapshot()
	require.Len(t, records, 2)
	assert.Equal(t, "OKAY", records[0].LevelName)
	assert.Equal(t, "served 3 requests", records[0].Body)
	assert.Equal(t, "TRACE", records[1].LevelName)
}

func TestDetectLogLevel(t *testing.T) {
	tests := []struct {
		msg  string
		want plog.Level
	}{
		{"error when serving connection", plog.LevelError},
		{"connection cannot be served", plog.LevelWarn},
		{"Deprecated option", plog.LevelWarn},
		{"trace id 7", plog.LevelDebug},
		{"hello", 0},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectLogLevel(tt.msg))
		})
	}
}
