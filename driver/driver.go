// Package driver defines the output backends a log record is dispatched to and
// the registry that fans a record out to them in registration order.
package driver

import (
	"time"

	"github.com/pkg/errors"

	"github.com/lixenwraith/plog/formatter"
)

var (
	// ErrDriverInit is returned when a driver fails to initialize
	ErrDriverInit = errors.New("driver: init failed")
	// ErrDriverWrite marks a failed or panicking driver write
	ErrDriverWrite = errors.New("driver: write failed")
	// ErrTransmitTimeout is returned when a serial transmit exceeds its deadline
	ErrTransmitTimeout = errors.New("driver: transmit timeout")
	// ErrDuplicateDriver is returned when a name is registered twice
	ErrDuplicateDriver = errors.New("driver: duplicate name")
	// ErrUnknownDriver is returned for names that were never registered
	ErrUnknownDriver = errors.New("driver: unknown name")
)

// LineInfo identifies the call site and level of a record
type LineInfo struct {
	Level    uint32 // single level bit
	File     string
	Function string
	Line     int
}

// Record is a fully built message as handed to drivers
type Record struct {
	Info       LineInfo
	Seq        uint64
	Time       time.Time
	Thread     string
	LevelName  string
	LevelColor string
	Raw        bool   // raw records carry no header
	Prefix     string // console prefix, empty for raw records
	Body       string
}

// Fields returns the formatter view of the record
func (r *Record) Fields() formatter.Fields {
	return formatter.Fields{
		Thread:   r.Thread,
		Level:    r.LevelName,
		Color:    r.LevelColor,
		File:     r.Info.File,
		Function: r.Info.Function,
		Line:     r.Info.Line,
		Raw:      r.Raw,
	}
}

// Driver is the minimal output backend
type Driver interface {
	Name() string
	Write(rec *Record) error
}

// Initializer is implemented by drivers that need setup before the first write
type Initializer interface {
	Init() error
}

// Flusher is implemented by buffered drivers
type Flusher interface {
	Flush() error
}

// Closer is implemented by drivers holding resources
type Closer interface {
	Close() error
}
