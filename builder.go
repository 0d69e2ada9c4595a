// FILE: builder.go
package plog

import (
	"strconv"

	"github.com/lixenwraith/plog/driver"
)

// Builder provides a fluent API for building logger configurations.
// It wraps a Config instance and provides chainable methods for setting values.
type Builder struct {
	cfg     *Config
	drivers []builderDriver
	err     error // Accumulate errors for deferred handling
}

type builderDriver struct {
	d       driver.Driver
	enabled bool
}

// NewBuilder creates a new configuration builder with default values
func NewBuilder() *Builder {
	return &Builder{
		cfg: DefaultConfig(),
	}
}

// Build creates a new Logger instance with the specified configuration and drivers.
// The logger still has to be started.
func (b *Builder) Build() (*Logger, error) {
	if b.err != nil {
		return nil, b.err
	}

	logger := NewLogger()

	for _, bd := range b.drivers {
		if err := logger.RegisterDriver(bd.d, bd.enabled); err != nil {
			return nil, err
		}
	}

	if err := logger.ApplyConfig(b.cfg); err != nil {
		return nil, err
	}

	return logger, nil
}

// Level sets the level mask
func (b *Builder) Level(mask Level) *Builder {
	b.cfg.Level = strconv.FormatUint(uint64(mask), 10)
	return b
}

// LevelString sets the level mask from a preset or level names
func (b *Builder) LevelString(level string) *Builder {
	if b.err != nil {
		return b
	}
	if _, err := ParseLevel(level); err != nil {
		b.err = err
		return b
	}
	b.cfg.Level = level
	return b
}

// Name sets the base name of the log files
func (b *Builder) Name(name string) *Builder {
	b.cfg.Name = name
	return b
}

// Directory sets the log directory
func (b *Builder) Directory(dir string) *Builder {
	b.cfg.Directory = dir
	return b
}

// ThreadName sets the default thread tag
func (b *Builder) ThreadName(name string) *Builder {
	b.cfg.ThreadName = name
	return b
}

// EnableFile enables the rotating log files
func (b *Builder) EnableFile(enable bool) *Builder {
	b.cfg.EnableFile = enable
	return b
}

// EnableStdout enables the console driver
func (b *Builder) EnableStdout(enable bool) *Builder {
	b.cfg.EnableStdout = enable
	return b
}

// StdoutTarget selects "stdout" or "stderr" for the console driver
func (b *Builder) StdoutTarget(target string) *Builder {
	b.cfg.StdoutTarget = target
	return b
}

// EnableColor enables color tags in console output
func (b *Builder) EnableColor(enable bool) *Builder {
	b.cfg.EnableColor = enable
	return b
}

// TimestampFormat sets the time layout of file lines
func (b *Builder) TimestampFormat(format string) *Builder {
	b.cfg.TimestampFormat = format
	return b
}

// Sanitization sets the file body policy
func (b *Builder) Sanitization(policy string) *Builder {
	b.cfg.Sanitization = policy
	return b
}

// Async enables asynchronous delivery over the given transport, "queue" or "ring"
func (b *Builder) Async(transport string) *Builder {
	b.cfg.Async = true
	b.cfg.AsyncTransport = transport
	return b
}

// RingCapacity sets the slot count of the ring transport
func (b *Builder) RingCapacity(n int64) *Builder {
	b.cfg.RingCapacity = n
	return b
}

// PollIntervalMs sets the drain sleep on an empty transport
func (b *Builder) PollIntervalMs(ms int64) *Builder {
	b.cfg.PollIntervalMs = ms
	return b
}

// MaxMessageLen sets the body length bound
func (b *Builder) MaxMessageLen(n int64) *Builder {
	b.cfg.MaxMessageLen = n
	return b
}

// MaxFilterLen sets the content filter length bound
func (b *Builder) MaxFilterLen(n int64) *Builder {
	b.cfg.MaxFilterLen = n
	return b
}

// MaxSizeMB sets the rotation threshold in MB
func (b *Builder) MaxSizeMB(size int64) *Builder {
	b.cfg.MaxSizeMB = size
	return b
}

// ErrorSplit duplicates warn and error records into <name>.err
func (b *Builder) ErrorSplit(enable bool) *Builder {
	b.cfg.ErrorSplit = enable
	return b
}

// RotationLock guards rotation with a lock file, waiting at most timeoutMs for it
func (b *Builder) RotationLock(timeoutMs int64) *Builder {
	b.cfg.RotationLock = true
	b.cfg.RotationLockTimeoutMs = timeoutMs
	return b
}

// HeartbeatIntervalS sets the heartbeat interval, 0 disables it
func (b *Builder) HeartbeatIntervalS(interval int64) *Builder {
	b.cfg.HeartbeatIntervalS = interval
	return b
}

// InternalErrorsToStderr reports logger failures on stderr
func (b *Builder) InternalErrorsToStderr(enable bool) *Builder {
	b.cfg.InternalErrorsToStderr = enable
	return b
}

// Driver registers an additional output backend
func (b *Builder) Driver(d driver.Driver, enabled bool) *Builder {
	b.drivers = append(b.drivers, builderDriver{d: d, enabled: enabled})
	return b
}

// Example usage:
// logger, err := plog.NewBuilder().
//
//	Directory("/var/log/app").
//	EnableFile(true).
//	LevelString("production").
//	Async("ring").
//	Build()
//
// if err == nil {
//
//	 _ = logger.Start()
//	 defer logger.Shutdown()
//	 logger.Okf("logger initialized")
//
// }
