// FILE: filter.go
package plog

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
)

// DefaultMaxFilterLen bounds the content filter pattern
const DefaultMaxFilterLen = 64

// ErrFilterTooLong is returned when a filter pattern exceeds the configured maximum
var ErrFilterTooLong = errors.New("plog: filter pattern too long")

// Filter holds the level mask and the optional substring pattern applied to every record.
// Both are replaced wholesale and read on every call.
type Filter struct {
	mask    atomic.Uint32
	pattern atomic.Pointer[string]
	maxLen  atomic.Int64
}

// NewFilter creates a filter passing the levels in mask with no content filtering
func NewFilter(mask Level, maxLen int) *Filter {
	f := &Filter{}
	f.mask.Store(uint32(mask))
	f.SetMaxLen(maxLen)
	return f
}

// SetMask replaces the level mask
func (f *Filter) SetMask(m Level) {
	f.mask.Store(uint32(m))
}

// Mask returns the current level mask
func (f *Filter) Mask() Level {
	return Level(f.mask.Load())
}

// Allows reports whether a level passes the mask
func (f *Filter) Allows(level Level) bool {
	return Level(f.mask.Load())&level != 0
}

// SetMaxLen sets the pattern length bound. Non-positive values select DefaultMaxFilterLen.
func (f *Filter) SetMaxLen(n int) {
	if n <= 0 {
		n = DefaultMaxFilterLen
	}
	f.maxLen.Store(int64(n))
}

// SetPattern replaces the substring pattern. An empty pattern disables content filtering.
// A pattern longer than the bound is rejected and the previous pattern is kept.
func (f *Filter) SetPattern(p string) error {
	if int64(len(p)) > f.maxLen.Load() {
		return fmt.Errorf("%w: %d > %d bytes", ErrFilterTooLong, len(p), f.maxLen.Load())
	}
	if p == "" {
		f.pattern.Store(nil)
		return nil
	}
	f.pattern.Store(&p)
	return nil
}

// Pattern returns the current pattern, "" when unset
func (f *Filter) Pattern() string {
	if p := f.pattern.Load(); p != nil {
		return *p
	}
	return ""
}

// Match reports whether a built record passes the content filter
func (f *Filter) Match(prefix, body string) bool {
	p := f.pattern.Load()
	if p == nil {
		return true
	}
	return strings.Contains(body, *p) || strings.Contains(prefix, *p)
}
