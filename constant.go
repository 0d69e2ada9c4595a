// FILE: constant.go
package plog

import (
	"time"
)

// Level is a bitmask of severity levels. A single bit names one level.
type Level uint32

// Log levels, one bit each
const (
	LevelDebug Level = 1 << iota
	LevelInfo
	LevelOk
	LevelWarn
	LevelError
	LevelTrace
	LevelRaw
)

// Level mask presets
const (
	MaskNone       Level = 0
	MaskAll              = LevelInfo | LevelOk | LevelWarn | LevelError | LevelRaw
	MaskProduction       = LevelOk | LevelWarn | LevelError
	MaskDebugging        = MaskAll | LevelDebug | LevelTrace
	MaskExtra            = MaskDebugging
)

// numLevels is the size of the level table
const numLevels = 7

// Levels written to the error stream when error-split is enabled
const errorSplitMask = LevelWarn | LevelError

const (
	// Minimum wait time used throughout the package
	minWaitTime = 10 * time.Millisecond
	// Default number of stack frames between a public logging method and its caller
	callerSkip = 3
)
