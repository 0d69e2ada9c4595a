package driver

import (
	"bufio"
	"io"
	"os"
	"sync"
)

// Stdio writes the console form of a record to stdout or stderr
type Stdio struct {
	name string
	mu   sync.Mutex
	w    *bufio.Writer
}

// NewStdio creates a console driver. Target "stderr" selects os.Stderr, anything else os.Stdout.
func NewStdio(target string) *Stdio {
	return NewWriter("stdio", stdTarget(target))
}

// NewWriter creates a console driver over an arbitrary writer
func NewWriter(name string, w io.Writer) *Stdio {
	return &Stdio{name: name, w: bufio.NewWriter(w)}
}

func (s *Stdio) Name() string { return s.name }

// Write emits prefix and body followed by a newline
func (s *Stdio) Write(rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.w.WriteString(rec.Prefix); err != nil {
		return err
	}
	if _, err := s.w.WriteString(rec.Body); err != nil {
		return err
	}
	return s.w.WriteByte('\n')
}

func (s *Stdio) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Flush()
}

func (s *Stdio) Close() error {
	return s.Flush()
}

// SetTarget flushes pending output and switches between stdout and stderr
func (s *Stdio) SetTarget(target string) {
	s.Reset(stdTarget(target))
}

// Reset flushes pending output and switches to w
func (s *Stdio) Reset(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.w.Flush()
	s.w.Reset(w)
}

func stdTarget(target string) io.Writer {
	if target == "stderr" {
		return os.Stderr
	}
	return os.Stdout
}
