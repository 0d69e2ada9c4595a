// FILE: heartbeat.go
package plog

import (
	"fmt"
	"runtime"
	"time"
)

// heartbeat is one run of the periodic stats record
type heartbeat struct {
	stop chan struct{}
	done chan struct{}
}

// startHeartbeat emits a stats record at OKAY level every interval until stopHeartbeat
func (l *Logger) startHeartbeat(interval time.Duration) {
	hb := &heartbeat{stop: make(chan struct{}), done: make(chan struct{})}
	l.state.heartbeat.Store(hb)

	go func() {
		defer close(hb.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				l.logHeartbeat()
			case <-hb.stop:
				return
			}
		}
	}()
}

func (l *Logger) stopHeartbeat() {
	if hb := l.state.heartbeat.Swap(nil); hb != nil {
		close(hb.stop)
		<-hb.done
	}
}

// logHeartbeat logs logger and runtime statistics
func (l *Logger) logHeartbeat() {
	if !l.enabled(LevelOk) {
		return
	}

	sequence := l.state.HeartbeatSequence.Add(1)

	var uptimeHours float64
	if startTime, ok := l.state.LoggerStartTime.Load().(time.Time); ok && !startTime.IsZero() {
		uptimeHours = time.Since(startTime).Hours()
	}

	s := l.Stats()
	body := fmt.Sprintf("heartbeat sequence=%d uptime_hours=%.2f processed=%d dropped=%d pending=%d rotations=%d num_goroutine=%d",
		sequence, uptimeHours, s.Processed, s.Dropped, s.Pending, s.Rotations, runtime.NumGoroutine())

	info := LineInfo{Level: uint32(LevelOk), File: "heartbeat", Function: "heartbeat"}
	l.emit(info, "", l.formatter.Load().Body("%s", body))
}
