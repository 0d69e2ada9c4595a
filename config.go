// FILE: config.go
package plog

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/lixenwraith/config"

	"github.com/lixenwraith/plog/formatter"
	"github.com/lixenwraith/plog/sanitizer"
)

// Config holds all logger configuration values
type Config struct {
	// Basic settings
	Level      string `toml:"level"` // Preset name, "|"-joined level names, or numeric mask
	Name       string `toml:"name"`  // Base name for log files
	Directory  string `toml:"directory"`
	ThreadName string `toml:"thread_name"` // Thread tag of records logged without a Thread view

	// Outputs
	EnableFile      bool   `toml:"enable_file"`
	EnableStdout    bool   `toml:"enable_stdout"`
	StdoutTarget    string `toml:"stdout_target"` // "stdout" or "stderr"
	EnableColor     bool   `toml:"enable_color"`
	TimestampFormat string `toml:"timestamp_format"` // Go time layout for file lines
	Sanitization    string `toml:"sanitization"`     // File body policy: "raw", "txt" or "json"

	// Asynchronous delivery
	Async          bool   `toml:"async"`
	AsyncTransport string `toml:"async_transport"`  // "queue" (unbounded) or "ring" (bounded, drops when full)
	RingCapacity   int64  `toml:"ring_capacity"`    // Slots of the ring transport
	PollIntervalMs int64  `toml:"poll_interval_ms"` // Drain sleep when the transport is empty

	// Length bounds
	MaxMessageLen int64 `toml:"max_message_len"`
	MaxPrefixLen  int64 `toml:"max_prefix_len"`
	MaxFilterLen  int64 `toml:"max_filter_len"`

	// Rotation
	MaxSizeMB             int64 `toml:"max_size_mb"` // 0 disables rotation
	ErrorSplit            bool  `toml:"error_split"` // Duplicate warn and error records into <name>.err
	RotationLock          bool  `toml:"rotation_lock"`
	RotationLockTimeoutMs int64 `toml:"rotation_lock_timeout_ms"`

	// Housekeeping
	HeartbeatIntervalS int64 `toml:"heartbeat_interval_s"` // 0 disables the heartbeat
	ShutdownTimeoutMs  int64 `toml:"shutdown_timeout_ms"`

	// Internal error handling
	InternalErrorsToStderr bool `toml:"internal_errors_to_stderr"`
}

// defaultConfig is the single source for all configurable default values
var defaultConfig = Config{
	Level:      "all",
	Name:       "plog",
	Directory:  "./logs",
	ThreadName: "main",

	EnableFile:      false,
	EnableStdout:    true,
	StdoutTarget:    "stdout",
	EnableColor:     true,
	TimestampFormat: formatter.DefaultTimestampFormat,
	Sanitization:    string(sanitizer.PolicyTxt),

	Async:          false,
	AsyncTransport: "queue",
	RingCapacity:   1024,
	PollIntervalMs: 5,

	MaxMessageLen: formatter.DefaultMaxBody,
	MaxPrefixLen:  formatter.DefaultMaxPrefix,
	MaxFilterLen:  DefaultMaxFilterLen,

	MaxSizeMB:             10,
	ErrorSplit:            false,
	RotationLock:          false,
	RotationLockTimeoutMs: 1000,

	HeartbeatIntervalS: 0,
	ShutdownTimeoutMs:  2000,

	InternalErrorsToStderr: false,
}

// DefaultConfig returns a copy of the default configuration
func DefaultConfig() *Config {
	copiedConfig := defaultConfig
	return &copiedConfig
}

// NewConfigFromFile loads configuration from the [plog] table of a TOML file and returns a validated Config.
// A missing file yields the defaults.
func NewConfigFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	loader := config.New()
	if err := loader.RegisterStruct("plog.", *cfg); err != nil {
		return nil, fmtErrorf("failed to register config struct: %w", err)
	}

	if err := loader.Load(path, nil); err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		return nil, fmtErrorf("failed to load config from %s: %w", path, err)
	}

	if err := extractConfig(loader, "plog.", cfg); err != nil {
		return nil, fmtErrorf("failed to extract config values: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewConfigFromDefaults creates a Config with default values and applies typed overrides keyed by toml name
func NewConfigFromDefaults(overrides map[string]any) (*Config, error) {
	cfg := DefaultConfig()

	if err := applyOverrides(cfg, overrides); err != nil {
		return nil, fmtErrorf("failed to apply overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// extractConfig copies values found by the loader into cfg
func extractConfig(loader *config.Config, prefix string, cfg *Config) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tomlTag := field.Tag.Get("toml")
		if tomlTag == "" {
			continue
		}

		val, found := loader.Get(prefix + tomlTag)
		if !found {
			continue
		}

		if err := setFieldValue(v.Field(i), val); err != nil {
			return fmt.Errorf("failed to set field %s: %w", field.Name, err)
		}
	}
	return nil
}

// applyOverrides applies a map of overrides to the Config struct
func applyOverrides(cfg *Config, overrides map[string]any) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	fieldMap := make(map[string]reflect.Value, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		if tomlTag := t.Field(i).Tag.Get("toml"); tomlTag != "" {
			fieldMap[tomlTag] = v.Field(i)
		}
	}

	for key, value := range overrides {
		fieldValue, exists := fieldMap[key]
		if !exists {
			return fmt.Errorf("unknown config key: %s", key)
		}
		if err := setFieldValue(fieldValue, value); err != nil {
			return fmt.Errorf("failed to set %s: %w", key, err)
		}
	}
	return nil
}

// setFieldValue sets a reflect.Value with proper type conversion
func setFieldValue(field reflect.Value, value any) error {
	switch field.Kind() {
	case reflect.String:
		strVal, ok := value.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", value)
		}
		field.SetString(strVal)

	case reflect.Int64:
		switch v := value.(type) {
		case int64:
			field.SetInt(v)
		case int:
			field.SetInt(int64(v))
		case float64:
			// TOML decoders may hand integers over as floats
			if v != float64(int64(v)) {
				return fmt.Errorf("expected integer, got %v", v)
			}
			field.SetInt(int64(v))
		default:
			return fmt.Errorf("expected int64, got %T", value)
		}

	case reflect.Bool:
		boolVal, ok := value.(bool)
		if !ok {
			return fmt.Errorf("expected bool, got %T", value)
		}
		field.SetBool(boolVal)

	default:
		return fmt.Errorf("unsupported field type: %v", field.Kind())
	}
	return nil
}

// Validate checks every field and cross-field constraint
func (c *Config) Validate() error {
	if _, err := ParseLevel(c.Level); err != nil {
		return err
	}

	if strings.TrimSpace(c.Name) == "" {
		return fmtErrorf("log name cannot be empty")
	}

	if c.EnableFile && strings.TrimSpace(c.Directory) == "" {
		return fmtErrorf("directory cannot be empty when file output is enabled")
	}

	if strings.TrimSpace(c.TimestampFormat) == "" {
		return fmtErrorf("timestamp_format cannot be empty")
	}

	if c.StdoutTarget != "stdout" && c.StdoutTarget != "stderr" {
		return fmtErrorf("invalid stdout_target: '%s' (use stdout or stderr)", c.StdoutTarget)
	}

	if !sanitizer.Valid(c.Sanitization) {
		return fmtErrorf("invalid sanitization: '%s' (use raw, txt or json)", c.Sanitization)
	}

	if c.AsyncTransport != "queue" && c.AsyncTransport != "ring" {
		return fmtErrorf("invalid async_transport: '%s' (use queue or ring)", c.AsyncTransport)
	}

	if c.RingCapacity <= 0 {
		return fmtErrorf("ring_capacity must be positive: %d", c.RingCapacity)
	}

	if c.PollIntervalMs <= 0 {
		return fmtErrorf("poll_interval_ms must be positive: %d", c.PollIntervalMs)
	}

	if c.MaxMessageLen <= 0 || c.MaxPrefixLen <= 0 || c.MaxFilterLen <= 0 {
		return fmtErrorf("length limits must be positive")
	}

	if c.MaxSizeMB < 0 {
		return fmtErrorf("max_size_mb cannot be negative: %d", c.MaxSizeMB)
	}

	if c.RotationLockTimeoutMs < 0 || c.ShutdownTimeoutMs < 0 || c.HeartbeatIntervalS < 0 {
		return fmtErrorf("timeouts and intervals cannot be negative")
	}

	if c.RotationLock && c.RotationLockTimeoutMs == 0 {
		return fmtErrorf("rotation_lock_timeout_ms must be positive when rotation_lock is enabled")
	}

	return nil
}

// Clone creates a copy of the configuration
func (c *Config) Clone() *Config {
	copiedConfig := *c
	return &copiedConfig
}

// mask returns the parsed level mask of a validated config
func (c *Config) mask() Level {
	m, _ := ParseLevel(c.Level)
	return m
}
