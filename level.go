// FILE: level.go
package plog

import (
	"math/bits"
	"strconv"
	"strings"

	"github.com/lixenwraith/plog/formatter"
)

// levelInfo is the static display data of one level
type levelInfo struct {
	name  string
	color string
}

// levelTable is indexed by level id, the bit position of the level mask
var levelTable = [numLevels]levelInfo{
	{name: "DEBUG", color: formatter.Cyan},
	{name: "INFO", color: formatter.Blue},
	{name: "OKAY", color: formatter.Green},
	{name: "WARN", color: formatter.Yellow},
	{name: "ERROR", color: formatter.Red},
	{name: "TRACE", color: formatter.Magenta},
	{name: "RAW", color: ""},
}

var presets = map[string]Level{
	"all":        MaskAll,
	"production": MaskProduction,
	"debugging":  MaskDebugging,
	"extra":      MaskExtra,
	"none":       MaskNone,
}

// MaskToID returns the table index of a single-bit level, or -1 when m is not exactly one known level
func MaskToID(m Level) int {
	if bits.OnesCount32(uint32(m)) != 1 {
		return -1
	}
	id := bits.TrailingZeros32(uint32(m))
	if id >= numLevels {
		return -1
	}
	return id
}

// String returns the display name of a single level or the "|"-joined names of a mask
func (m Level) String() string {
	if m == MaskNone {
		return "NONE"
	}
	if id := MaskToID(m); id >= 0 {
		return levelTable[id].name
	}
	var names []string
	for id := 0; id < numLevels; id++ {
		if m&(1<<id) != 0 {
			names = append(names, levelTable[id].name)
		}
	}
	if len(names) == 0 {
		return "0x" + strconv.FormatUint(uint64(m), 16)
	}
	return strings.Join(names, "|")
}

// Color returns the color tag of a single level, or "" for masks
func (m Level) Color() string {
	if id := MaskToID(m); id >= 0 {
		return levelTable[id].color
	}
	return ""
}

// ParseLevel converts a preset name, a "|" or "," separated list of level names, or a numeric mask
func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return MaskNone, fmtErrorf("empty level string")
	}
	if m, ok := presets[s]; ok {
		return m, nil
	}
	if n, err := strconv.ParseUint(s, 0, 32); err == nil {
		if Level(n)&^MaskDebugging != 0 {
			return MaskNone, fmtErrorf("level mask 0x%x has unknown bits", n)
		}
		return Level(n), nil
	}

	var mask Level
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == '|' || r == ',' }) {
		l, err := parseLevelName(strings.TrimSpace(part))
		if err != nil {
			return MaskNone, err
		}
		mask |= l
	}
	return mask, nil
}

func parseLevelName(name string) (Level, error) {
	switch name {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "ok", "okay":
		return LevelOk, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	case "trace":
		return LevelTrace, nil
	case "raw":
		return LevelRaw, nil
	default:
		return MaskNone, fmtErrorf("invalid level string: '%s' (use debug, info, ok, warn, error, trace, raw or a preset)", name)
	}
}
