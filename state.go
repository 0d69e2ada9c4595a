// FILE: state.go
package plog

import (
	"sync"
	"sync/atomic"
)

// State encapsulates the runtime state of the logger
type State struct {
	IsInitialized   atomic.Bool
	LoggerDisabled  atomic.Bool
	ShutdownCalled  atomic.Bool
	Started         atomic.Bool
	ProcessorExited atomic.Bool // Tracks if the drain goroutine is running or has exited
	DriversReady    atomic.Bool // Registry drivers were initialized by Start

	processor atomic.Pointer[processor] // Non-nil while records are delivered asynchronously
	heartbeat atomic.Pointer[heartbeat]
	flushMutex sync.Mutex               // Protect concurrent Flush calls

	Pending            atomic.Int64  // Records handed to the transport and not yet dispatched
	DroppedLogs        atomic.Uint64 // Records lost to a full ring or a destroyed queue
	FileFailures       atomic.Uint64 // Failed writes through the file driver
	TotalLogsProcessed atomic.Uint64 // Records dispatched to the registry
	HeartbeatSequence  atomic.Uint64
	LoggerStartTime    atomic.Value // stores time.Time for uptime calculation
}
