// FILE: message.go
package plog

import (
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/lixenwraith/plog/driver"
)

// LineInfo identifies the call site of a record
type LineInfo = driver.LineInfo

// messagePool recycles records between the build step and the end of dispatch.
// A record has exactly one owner at a time: the caller while building, the transport while queued,
// the dispatching goroutine until it is released.
var messagePool = sync.Pool{
	New: func() any { return new(driver.Record) },
}

func newMessage(info LineInfo, thread string) *driver.Record {
	rec := messagePool.Get().(*driver.Record)
	id := MaskToID(Level(info.Level))
	rec.Info = info
	rec.Thread = thread
	rec.LevelName = levelTable[id].name
	rec.LevelColor = levelTable[id].color
	rec.Raw = Level(info.Level) == LevelRaw
	rec.Time = time.Now()
	return rec
}

func releaseMessage(rec *driver.Record) {
	*rec = driver.Record{}
	messagePool.Put(rec)
}

// callSite builds the LineInfo of the frame skip levels above callSite
func callSite(level Level, skip int) LineInfo {
	info := LineInfo{Level: uint32(level), File: "???", Function: "???"}
	var pcs [1]uintptr
	if runtime.Callers(skip+1, pcs[:]) == 0 {
		return info
	}
	frame, _ := runtime.CallersFrames(pcs[:]).Next()
	info.File = filepath.Base(frame.File)
	info.Line = frame.Line
	if frame.Function != "" {
		info.Function = shortFuncName(frame.Function)
	}
	return info
}

// shortFuncName strips the package path from a runtime function name.
// Closures are reported as "(anonymous in <parent>)".
func shortFuncName(full string) string {
	name := filepath.Base(full)
	parts := strings.Split(name, ".")
	last := parts[len(parts)-1]
	if len(parts) > 2 && strings.HasPrefix(last, "func") && len(last) > 4 {
		for _, r := range last[4:] {
			if !unicode.IsDigit(r) {
				return last
			}
		}
		// Skip the package element
		return "(anonymous in " + strings.Join(parts[1:len(parts)-1], ".") + ")"
	}
	return last
}

// normalize reduces a caller supplied file path to its base name
func normalize(info LineInfo) LineInfo {
	if info.File != "" {
		info.File = filepath.Base(info.File)
	}
	return info
}
