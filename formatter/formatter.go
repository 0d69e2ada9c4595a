// Package formatter builds the text representations of a log record: the console prefix,
// the timestamped file line, the UART header and the message body.
// A configured Formatter is read-only and safe for concurrent use; every call builds into its own buffer.
package formatter

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/davecgh/go-spew/spew"

	"github.com/lixenwraith/plog/sanitizer"
)

// ANSI color tags
const (
	Reset   = "\x1b[0m"
	Red     = "\x1b[31m"
	Green   = "\x1b[32m"
	Yellow  = "\x1b[33m"
	Blue    = "\x1b[34m"
	Magenta = "\x1b[35m"
	Cyan    = "\x1b[36m"
)

// Default limits
const (
	DefaultTimestampFormat = "2006-01-02 15:04:05.000"
	DefaultMaxPrefix       = 128
	DefaultMaxBody         = 256
)

// Fields is the per-call site information a prefix is built from
type Fields struct {
	Thread   string
	Level    string
	Color    string
	File     string
	Function string
	Line     int
	Raw      bool // raw records carry no header
}

// Formatter holds the output options
type Formatter struct {
	sanitizer       *sanitizer.Sanitizer
	timestampFormat string
	color           bool
	maxPrefix       int
	maxBody         int
}

// New creates a formatter with the provided sanitizer for file output
func New(s ...*sanitizer.Sanitizer) *Formatter {
	var san *sanitizer.Sanitizer
	if len(s) > 0 && s[0] != nil {
		san = s[0]
	} else {
		san = sanitizer.New() // Default passthrough sanitizer
	}
	return &Formatter{
		sanitizer:       san,
		timestampFormat: DefaultTimestampFormat,
		color:           true,
		maxPrefix:       DefaultMaxPrefix,
		maxBody:         DefaultMaxBody,
	}
}

// TimestampFormat sets the timestamp layout used in file lines
func (f *Formatter) TimestampFormat(format string) *Formatter {
	if format != "" {
		f.timestampFormat = format
	}
	return f
}

// Color enables or disables color tags in console prefixes and UART headers
func (f *Formatter) Color(enable bool) *Formatter {
	f.color = enable
	return f
}

// MaxPrefix sets the prefix length bound, in bytes
func (f *Formatter) MaxPrefix(n int) *Formatter {
	if n > 0 {
		f.maxPrefix = n
	}
	return f
}

// MaxBody sets the body length bound, in bytes
func (f *Formatter) MaxBody(n int) *Formatter {
	if n > 0 {
		f.maxBody = n
	}
	return f
}

// ConsolePrefix builds "[thread][LEVEL][file: function: line]: " with the level wrapped in its color tag
func (f *Formatter) ConsolePrefix(fl Fields) string {
	if fl.Raw {
		return ""
	}
	buf := make([]byte, 0, f.maxPrefix)
	buf = append(buf, '[')
	buf = append(buf, fl.Thread...)
	buf = append(buf, "]["...)
	if f.color && fl.Color != "" {
		buf = append(buf, fl.Color...)
		buf = append(buf, fl.Level...)
		buf = append(buf, Reset...)
	} else {
		buf = append(buf, fl.Level...)
	}
	buf = append(buf, ']')
	buf = appendLocation(buf, fl)
	return truncate(string(buf), f.maxPrefix)
}

// FilePrefix builds "<seq> - [<timestamp>][<thread>][<level>][<file>: <function>: <line>]: "
func (f *Formatter) FilePrefix(seq uint64, ts time.Time, fl Fields) string {
	buf := make([]byte, 0, f.maxPrefix)
	buf = strconv.AppendUint(buf, seq, 10)
	buf = append(buf, " - ["...)
	buf = ts.AppendFormat(buf, f.timestampFormat)
	buf = append(buf, "]["...)
	buf = append(buf, fl.Thread...)
	buf = append(buf, "]["...)
	buf = append(buf, fl.Level...)
	buf = append(buf, ']')
	buf = appendLocation(buf, fl)
	return truncate(string(buf), f.maxPrefix)
}

// FileLine builds a complete newline-terminated file record. The body is sanitized
// so a record never spans more than one line.
func (f *Formatter) FileLine(seq uint64, ts time.Time, fl Fields, body string) []byte {
	prefix := f.FilePrefix(seq, ts, fl)
	clean := f.sanitizer.Sanitize(body)
	buf := make([]byte, 0, len(prefix)+len(clean)+1)
	buf = append(buf, prefix...)
	buf = append(buf, clean...)
	buf = append(buf, '\n')
	return buf
}

// UARTHeader builds the fixed-width serial header "[LEVEL] (file)(function @line) : "
func (f *Formatter) UARTHeader(fl Fields) string {
	color, reset := "", ""
	if f.color {
		color, reset = fl.Color, Reset
	}
	h := fmt.Sprintf("[%s%5s%s] (%20s)(%30s @%3d) : ", color, fl.Level, reset, fl.File, fl.Function, fl.Line)
	return truncate(h, f.maxPrefix)
}

// Body expands format against args, truncated silently to the body bound
func (f *Formatter) Body(format string, args ...any) string {
	if len(args) == 0 {
		return truncate(format, f.maxBody)
	}
	return truncate(fmt.Sprintf(format, args...), f.maxBody)
}

// RawBody renders args as space-separated values without format verbs.
// Composite values are dumped with spew.
func (f *Formatter) RawBody(args ...any) string {
	buf := make([]byte, 0, 64)
	for i, arg := range args {
		if i > 0 {
			buf = append(buf, ' ')
		}
		buf = f.appendRawValue(buf, arg)
	}
	return truncate(string(buf), f.maxBody)
}

// appendRawValue converts any value to its raw string representation
func (f *Formatter) appendRawValue(buf []byte, v any) []byte {
	switch val := v.(type) {
	case string:
		return append(buf, val...)
	case int:
		return strconv.AppendInt(buf, int64(val), 10)
	case int64:
		return strconv.AppendInt(buf, val, 10)
	case uint:
		return strconv.AppendUint(buf, uint64(val), 10)
	case uint64:
		return strconv.AppendUint(buf, val, 10)
	case float32:
		return strconv.AppendFloat(buf, float64(val), 'f', -1, 32)
	case float64:
		return strconv.AppendFloat(buf, val, 'f', -1, 64)
	case bool:
		return strconv.AppendBool(buf, val)
	case nil:
		return append(buf, "nil"...)
	case time.Time:
		return val.AppendFormat(buf, f.timestampFormat)
	case error:
		return append(buf, val.Error()...)
	case fmt.Stringer:
		return append(buf, val.String()...)
	case []byte:
		return hex.AppendEncode(buf, val)
	default:
		var b bytes.Buffer
		dumper := &spew.ConfigState{
			Indent:                  " ",
			MaxDepth:                10,
			DisablePointerAddresses: true,
			DisableCapacities:       true,
			SortKeys:                true,
		}
		dumper.Fdump(&b, val)
		return append(buf, bytes.TrimSpace(b.Bytes())...)
	}
}

// appendLocation appends "[file: function: line]: "
func appendLocation(buf []byte, fl Fields) []byte {
	buf = append(buf, '[')
	buf = append(buf, fl.File...)
	buf = append(buf, ": "...)
	buf = append(buf, fl.Function...)
	buf = append(buf, ": "...)
	buf = strconv.AppendInt(buf, int64(fl.Line), 10)
	buf = append(buf, "]: "...)
	return buf
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence
func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
