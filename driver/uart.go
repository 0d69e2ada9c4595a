package driver

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/lixenwraith/plog/formatter"
)

// DefaultTransmitTimeout bounds each serial transmit
const DefaultTransmitTimeout = 1000 * time.Millisecond

var lineEnd = []byte("\r\n")

// Transmitter sends bytes over a serial line within a timeout
type Transmitter interface {
	Transmit(buf []byte, timeout time.Duration) error
}

// UART writes a fixed-width header, the body and CRLF as three transmits
type UART struct {
	mu      sync.Mutex
	tx      Transmitter
	fmt     *formatter.Formatter
	timeout time.Duration
}

// NewUART creates a serial driver. A zero timeout selects DefaultTransmitTimeout.
func NewUART(tx Transmitter, f *formatter.Formatter, timeout time.Duration) *UART {
	if timeout <= 0 {
		timeout = DefaultTransmitTimeout
	}
	if f == nil {
		f = formatter.New()
	}
	return &UART{tx: tx, fmt: f, timeout: timeout}
}

func (u *UART) Name() string { return "uart" }

func (u *UART) Init() error {
	if u.tx == nil {
		return errors.New("no transmitter")
	}
	return nil
}

// Write sends the header (skipped for raw records), the body and the line terminator
func (u *UART) Write(rec *Record) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if !rec.Raw {
		if err := u.tx.Transmit([]byte(u.fmt.UARTHeader(rec.Fields())), u.timeout); err != nil {
			return err
		}
	}
	if err := u.tx.Transmit([]byte(rec.Body), u.timeout); err != nil {
		return err
	}
	return u.tx.Transmit(lineEnd, u.timeout)
}

type deadliner interface {
	SetWriteDeadline(t time.Time) error
}

// WriterTransmitter adapts an io.Writer to a Transmitter.
// Writers that support write deadlines, such as net.Conn or *os.File on a pollable device, honor the timeout.
type WriterTransmitter struct {
	W io.Writer
}

func (w WriterTransmitter) Transmit(buf []byte, timeout time.Duration) error {
	if d, ok := w.W.(deadliner); ok && timeout > 0 {
		if err := d.SetWriteDeadline(time.Now().Add(timeout)); err == nil {
			defer func() { _ = d.SetWriteDeadline(time.Time{}) }()
		}
	}
	_, err := w.W.Write(buf)
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return errors.Wrapf(ErrTransmitTimeout, "after %v", timeout)
	}
	return err
}
