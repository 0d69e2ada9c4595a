package driver

import (
	"github.com/lixenwraith/plog/formatter"
	"github.com/lixenwraith/plog/rotation"
)

// File writes timestamped lines through a rotation manager.
// With error-split enabled, records whose level is in errMask are also written to the error stream.
type File struct {
	mgr     *rotation.Manager
	fmt     *formatter.Formatter
	errMask uint32
}

// NewFile creates a file driver over an enabled or closed manager
func NewFile(mgr *rotation.Manager, f *formatter.Formatter, errMask uint32) *File {
	if f == nil {
		f = formatter.New()
	}
	return &File{mgr: mgr, fmt: f, errMask: errMask}
}

func (f *File) Name() string { return "file" }

// Manager returns the underlying rotation manager
func (f *File) Manager() *rotation.Manager { return f.mgr }

// Write appends the file line to the main stream and, when split, to the error stream
func (f *File) Write(rec *Record) error {
	line := f.fmt.FileLine(rec.Seq, rec.Time, rec.Fields(), rec.Body)

	_, err := f.mgr.Write(rotation.Main, line)
	if f.mgr.Split() && rec.Info.Level&f.errMask != 0 {
		if _, splitErr := f.mgr.Write(rotation.Error, line); splitErr != nil && err == nil {
			err = splitErr
		}
	}
	return err
}

func (f *File) Flush() error {
	if f.mgr.State() == rotation.Closed {
		return nil
	}
	return f.mgr.Sync()
}

func (f *File) Close() error {
	return f.mgr.Close()
}
