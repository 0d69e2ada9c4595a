package driver

import (
	"bytes"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/plog/formatter"
	"github.com/lixenwraith/plog/ring"
	"github.com/lixenwraith/plog/rotation"
)

const (
	levelWarn  uint32 = 8
	levelError uint32 = 16
	levelInfo  uint32 = 2
)

// recorder captures calls in a shared log so ordering across drivers can be checked
type recorder struct {
	name    string
	calls   *[]string
	mu      *sync.Mutex
	initErr error
	failOn  string
	panics  bool
}

func (r *recorder) Name() string { return r.name }

func (r *recorder) add(s string) {
	r.mu.Lock()
	*r.calls = append(*r.calls, r.name+":"+s)
	r.mu.Unlock()
}

func (r *recorder) Init() error {
	r.add("init")
	return r.initErr
}

func (r *recorder) Write(rec *Record) error {
	if r.panics {
		panic("boom")
	}
	r.add("write " + rec.Body)
	if rec.Body == r.failOn {
		return errors.New("refused")
	}
	return nil
}

func (r *recorder) Flush() error {
	r.add("flush")
	return nil
}

func (r *recorder) Close() error {
	r.add("close")
	return nil
}

func newRecorders(names ...string) ([]*recorder, *[]string) {
	calls := &[]string{}
	mu := &sync.Mutex{}
	out := make([]*recorder, len(names))
	for i, n := range names {
		out[i] = &recorder{name: n, calls: calls, mu: mu}
	}
	return out, calls
}

func testRecord(level uint32, name, body string) *Record {
	return &Record{
		Info:      LineInfo{Level: level, File: "x.c", Function: "probe", Line: 42},
		Seq:       7,
		Time:      time.Date(2024, 1, 2, 3, 4, 5, 6_000_000, time.UTC),
		Thread:    "main",
		LevelName: name,
		Prefix:    "[main][" + name + "][x.c: probe: 42]: ",
		Body:      body,
	}
}

func TestRegistryDispatchOrder(t *testing.T) {
	recs, calls := newRecorders("a", "b", "c")
	reg := NewRegistry()
	require.NoError(t, reg.Register(recs[0], true))
	require.NoError(t, reg.Register(recs[1], false))
	require.NoError(t, reg.Register(recs[2], true))

	require.NoError(t, reg.Init())
	assert.Equal(t, 0, reg.Dispatch(testRecord(levelInfo, "INFO", "hello")))

	assert.Equal(t, []string{
		"a:init", "b:init", "c:init",
		"a:write hello", "a:flush",
		"c:write hello", "c:flush",
	}, *calls)
}

func TestRegistryDuplicateAndUnknown(t *testing.T) {
	recs, _ := newRecorders("a", "a")
	reg := NewRegistry()
	require.NoError(t, reg.Register(recs[0], true))
	assert.ErrorIs(t, reg.Register(recs[1], true), ErrDuplicateDriver)
	assert.ErrorIs(t, reg.SetEnabled("nope", true), ErrUnknownDriver)

	require.NoError(t, reg.SetEnabled("a", false))
	assert.False(t, reg.Enabled("a"))
	assert.Equal(t, 1, reg.Len())
}

func TestRegistryInitAbortsOnFailure(t *testing.T) {
	recs, calls := newRecorders("a", "b", "c")
	recs[1].initErr = errors.New("no device")
	reg := NewRegistry()
	for _, r := range recs {
		require.NoError(t, reg.Register(r, true))
	}

	err := reg.Init()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDriverInit)
	assert.Contains(t, err.Error(), "b")
	assert.Equal(t, []string{"a:init", "b:init", "a:close"}, *calls)
}

func TestRegistryFailureIsolation(t *testing.T) {
	recs, calls := newRecorders("a", "b", "c")
	recs[0].failOn = "bad"
	recs[1].panics = true
	reg := NewRegistry()
	for _, r := range recs {
		require.NoError(t, reg.Register(r, true))
	}

	assert.Equal(t, 2, reg.Dispatch(testRecord(levelError, "ERROR", "bad")))
	assert.Contains(t, *calls, "c:write bad")

	assert.Equal(t, uint64(1), reg.Failures("a"))
	assert.Equal(t, uint64(1), reg.Failures("b"))
	assert.Equal(t, uint64(0), reg.Failures("c"))

	status := reg.Status()
	require.Len(t, status, 3)
	assert.ErrorIs(t, status[1].LastError, ErrDriverWrite)
	assert.Nil(t, status[2].LastError)
}

func TestStdioWrite(t *testing.T) {
	var buf bytes.Buffer
	d := NewWriter("console", &buf)
	reg := NewRegistry()
	require.NoError(t, reg.Register(d, true))

	reg.Dispatch(testRecord(levelInfo, "INFO", "ready"))
	raw := testRecord(levelInfo, "RAW", "plain")
	raw.Raw, raw.Prefix = true, ""
	reg.Dispatch(raw)

	assert.Equal(t, "[main][INFO][x.c: probe: 42]: ready\nplain\n", buf.String())
}

type fakeTx struct {
	sent     []string
	timeouts []time.Duration
	err      error
}

func (f *fakeTx) Transmit(buf []byte, timeout time.Duration) error {
	f.sent = append(f.sent, string(buf))
	f.timeouts = append(f.timeouts, timeout)
	return f.err
}

func TestUARTWrite(t *testing.T) {
	tx := &fakeTx{}
	u := NewUART(tx, formatter.New().Color(false), 0)
	require.NoError(t, u.Init())

	require.NoError(t, u.Write(testRecord(levelError, "ERROR", "disk full")))
	require.Len(t, tx.sent, 3)
	assert.Equal(t, "[ERROR] (                 x.c)(                         probe @ 42) : ", tx.sent[0])
	assert.Equal(t, "disk full", tx.sent[1])
	assert.Equal(t, "\r\n", tx.sent[2])
	assert.Equal(t, DefaultTransmitTimeout, tx.timeouts[0])

	tx.sent = nil
	raw := testRecord(levelInfo, "RAW", "bare")
	raw.Raw = true
	require.NoError(t, u.Write(raw))
	assert.Equal(t, []string{"bare", "\r\n"}, tx.sent)

	tx.err = ErrTransmitTimeout
	assert.ErrorIs(t, u.Write(raw), ErrTransmitTimeout)

	assert.Error(t, NewUART(nil, nil, 0).Init())
}

func TestWriterTransmitterTimeout(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	tx := WriterTransmitter{W: client}
	err := tx.Transmit([]byte("nobody reads"), 20*time.Millisecond)
	assert.ErrorIs(t, err, ErrTransmitTimeout)

	var buf bytes.Buffer
	require.NoError(t, WriterTransmitter{W: &buf}.Transmit([]byte("ok"), time.Second))
	assert.Equal(t, "ok", buf.String())
}

func TestMemoryDriver(t *testing.T) {
	mem := make([]byte, 4*ring.DefaultSlotSize)
	d, err := NewMemory(mem, 0)
	require.NoError(t, err)
	require.NoError(t, d.Init())
	assert.Equal(t, ring.Sentinel, mem[0])

	for _, body := range []string{"one", "two", "three", "four", "five"} {
		require.NoError(t, d.Write(testRecord(levelInfo, "INFO", body)))
	}

	entries := d.Entries()
	require.Len(t, entries, 4)
	texts := make([]string, len(entries))
	for i, e := range entries {
		texts[i] = e.Text
	}
	assert.Equal(t, []string{"two", "three", "four", "five"}, texts)

	_, err = NewMemory(make([]byte, 10), 0)
	assert.Error(t, err)
}

func TestFileDriverSplit(t *testing.T) {
	base := filepath.Join(t.TempDir(), "app")
	mgr := rotation.New(rotation.Options{ErrorSplit: true})
	require.NoError(t, mgr.Enable(base))
	d := NewFile(mgr, formatter.New(), levelWarn|levelError)
	defer d.Close()

	require.NoError(t, d.Write(testRecord(levelInfo, "INFO", "fine")))
	require.NoError(t, d.Write(testRecord(levelError, "ERROR", "disk 97% full")))
	require.NoError(t, d.Flush())

	mainLog, err := os.ReadFile(base + ".log")
	require.NoError(t, err)
	errLog, err := os.ReadFile(base + ".err")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(string(mainLog), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "7 - [2024-01-02 03:04:05.006][main][INFO][x.c: probe: 42]: fine", lines[0])
	assert.Equal(t, lines[1]+"\n", string(errLog))
	assert.Contains(t, lines[1], "disk 97% full")
}

func TestFileDriverClosedManager(t *testing.T) {
	d := NewFile(rotation.New(rotation.Options{}), nil, levelError)
	assert.ErrorIs(t, d.Write(testRecord(levelInfo, "INFO", "x")), rotation.ErrClosed)
	assert.NoError(t, d.Flush())
}
