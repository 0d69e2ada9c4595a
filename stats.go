// FILE: stats.go
package plog

import (
	"fmt"
	"io"

	"github.com/lixenwraith/plog/driver"
	"github.com/lixenwraith/plog/formatter"
)

// LevelCount is the lifetime emitted count of one level
type LevelCount struct {
	Level Level
	Name  string
	Color string
	Count uint64
}

// Stats is a point-in-time snapshot of the logger counters
type Stats struct {
	Levels       []LevelCount
	Processed    uint64 // Records dispatched to the registry
	Dropped      uint64 // Records lost to a full ring or a destroyed queue
	Pending      int64  // Records queued and not yet dispatched
	FileFailures uint64
	Rotations    uint64
	Drivers      []driver.Status
}

// Count returns the sum of the emitted counters of every level in mask
func (l *Logger) Count(mask Level) uint64 {
	var total uint64
	for id := 0; id < numLevels; id++ {
		if mask&(1<<id) != 0 {
			total += l.counts[id].Load()
		}
	}
	return total
}

// Stats returns a snapshot of all counters
func (l *Logger) Stats() Stats {
	s := Stats{
		Levels:       make([]LevelCount, numLevels),
		Processed:    l.state.TotalLogsProcessed.Load(),
		Dropped:      l.state.DroppedLogs.Load(),
		Pending:      l.state.Pending.Load(),
		FileFailures: l.state.FileFailures.Load(),
		Drivers:      l.registry.Status(),
	}
	for id := 0; id < numLevels; id++ {
		s.Levels[id] = LevelCount{
			Level: 1 << id,
			Name:  levelTable[id].name,
			Color: levelTable[id].color,
			Count: l.counts[id].Load(),
		}
	}
	if fd := l.file.Load(); fd != nil {
		s.Rotations = fd.Manager().Rotations()
	}
	return s
}

// WriteStats writes a human-readable dump of the level counters followed by the pipeline counters
func (l *Logger) WriteStats(w io.Writer) error {
	s := l.Stats()
	color := l.getConfig().EnableColor

	for _, lc := range s.Levels {
		name := lc.Name
		if color && lc.Color != "" {
			name = lc.Color + fmt.Sprintf("%-5s", lc.Name) + formatter.Reset
		} else {
			name = fmt.Sprintf("%-5s", name)
		}
		if _, err := fmt.Fprintf(w, "%s : %d\n", name, lc.Count); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "processed=%d dropped=%d pending=%d file_failures=%d rotations=%d\n",
		s.Processed, s.Dropped, s.Pending, s.FileFailures, s.Rotations); err != nil {
		return err
	}

	for _, d := range s.Drivers {
		if _, err := fmt.Fprintf(w, "driver %s: enabled=%t failures=%d\n", d.Name, d.Enabled, d.Failures); err != nil {
			return err
		}
	}
	return nil
}
