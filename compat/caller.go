package compat

import (
	"runtime"
	"strings"

	"github.com/lixenwraith/plog"
)

// callerInfo resolves the code that called the adapter method, two frames up
func callerInfo(level plog.Level) plog.LineInfo {
	info := plog.LineInfo{Level: uint32(level)}
	pc, file, line, ok := runtime.Caller(2)
	if !ok {
		return info
	}
	info.File = file
	info.Line = line
	if fn := runtime.FuncForPC(pc); fn != nil {
		name := fn.Name()
		if i := strings.LastIndexByte(name, '.'); i >= 0 {
			name = name[i+1:]
		}
		info.Function = name
	}
	return info
}
