// FILE: override.go
package plog

import (
	"fmt"
	"strconv"
	"strings"
)

// ApplyOverride applies string key-value overrides to the logger's current configuration.
// Each override should be in the format "key=value".
// The configuration is cloned before modification to ensure thread safety.
//
// Example:
//
//	logger := plog.NewLogger()
//	err := logger.ApplyOverride(
//	    "directory=/var/log/app",
//	    "level=production",
//	    "async=true",
//	)
func (l *Logger) ApplyOverride(overrides ...string) error {
	cfg := l.getConfig().Clone()

	var errors []error

	for _, override := range overrides {
		key, value, err := parseKeyValue(override)
		if err != nil {
			errors = append(errors, err)
			continue
		}

		if err := applyConfigField(cfg, key, value); err != nil {
			errors = append(errors, err)
		}
	}

	if len(errors) > 0 {
		return combineConfigErrors(errors)
	}

	return l.ApplyConfig(cfg)
}

// combineConfigErrors combines multiple configuration errors into a single error
func combineConfigErrors(errors []error) error {
	if len(errors) == 0 {
		return nil
	}
	if len(errors) == 1 {
		return errors[0]
	}

	var sb strings.Builder
	sb.WriteString("plog: multiple configuration errors:")
	for i, err := range errors {
		errMsg := strings.TrimPrefix(err.Error(), "plog: ")
		sb.WriteString(fmt.Sprintf("\n  %d. %s", i+1, errMsg))
	}
	return fmt.Errorf("%s", sb.String())
}

// applyConfigField applies a single key-value override to a Config
func applyConfigField(cfg *Config, key, value string) error {
	setBool := func(dst *bool) error {
		boolVal, err := strconv.ParseBool(value)
		if err != nil {
			return fmtErrorf("invalid boolean value for %s '%s': %w", key, value, err)
		}
		*dst = boolVal
		return nil
	}
	setInt := func(dst *int64) error {
		intVal, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmtErrorf("invalid integer value for %s '%s': %w", key, value, err)
		}
		*dst = intVal
		return nil
	}

	switch key {
	// Basic settings
	case "level":
		if _, err := ParseLevel(value); err != nil {
			return fmtErrorf("invalid level value '%s': %w", value, err)
		}
		cfg.Level = value
	case "name":
		cfg.Name = value
	case "directory":
		cfg.Directory = value
	case "thread_name":
		cfg.ThreadName = value

	// Outputs
	case "enable_file":
		return setBool(&cfg.EnableFile)
	case "enable_stdout":
		return setBool(&cfg.EnableStdout)
	case "stdout_target":
		cfg.StdoutTarget = value
	case "enable_color":
		return setBool(&cfg.EnableColor)
	case "timestamp_format":
		cfg.TimestampFormat = value
	case "sanitization":
		cfg.Sanitization = value

	// Asynchronous delivery
	case "async":
		return setBool(&cfg.Async)
	case "async_transport":
		cfg.AsyncTransport = value
	case "ring_capacity":
		return setInt(&cfg.RingCapacity)
	case "poll_interval_ms":
		return setInt(&cfg.PollIntervalMs)

	// Length bounds
	case "max_message_len":
		return setInt(&cfg.MaxMessageLen)
	case "max_prefix_len":
		return setInt(&cfg.MaxPrefixLen)
	case "max_filter_len":
		return setInt(&cfg.MaxFilterLen)

	// Rotation
	case "max_size_mb":
		return setInt(&cfg.MaxSizeMB)
	case "error_split":
		return setBool(&cfg.ErrorSplit)
	case "rotation_lock":
		return setBool(&cfg.RotationLock)
	case "rotation_lock_timeout_ms":
		return setInt(&cfg.RotationLockTimeoutMs)

	// Housekeeping
	case "heartbeat_interval_s":
		return setInt(&cfg.HeartbeatIntervalS)
	case "shutdown_timeout_ms":
		return setInt(&cfg.ShutdownTimeoutMs)

	// Internal error handling
	case "internal_errors_to_stderr":
		return setBool(&cfg.InternalErrorsToStderr)

	default:
		return fmtErrorf("unknown configuration key '%s'", key)
	}

	return nil
}
