// Package filesensor provides a source that samples a numeric value from a
// file on every pull. The canonical use is the Raspberry Pi CPU temperature
// exposed by the kernel at /sys/class/thermal/thermal_zone0/temp in
// millidegrees; the cputemp selector reads it scaled down to degrees.
package filesensor

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/c360/thermoflow/component"
	"github.com/c360/thermoflow/errors"
)

// DefaultThermalPath is the kernel thermal zone read by the cputemp selector.
const DefaultThermalPath = "/sys/class/thermal/thermal_zone0/temp"

// Config holds configuration for the file sensor source.
type Config struct {
	// Path of the file to sample.
	Path string `yaml:"path"`
	// Scale divides the raw parsed value; 1000 turns millidegrees into
	// degrees.
	Scale float64 `yaml:"scale"`
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	if c.Path == "" {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate", "path is required")
	}
	if c.Scale == 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate", "scale must be non-zero")
	}
	return nil
}

// DefaultConfig returns the cputemp configuration.
func DefaultConfig() Config {
	return Config{
		Path:  DefaultThermalPath,
		Scale: 1000,
	}
}

// Source samples a file per pull. A read or parse failure ends the sequence:
// the scheduler treats exhaustion as graceful termination, which is the
// wanted behavior when a sensor disappears.
type Source struct {
	name   string
	path   string
	scale  float64
	logger *slog.Logger

	mu         sync.RWMutex
	samples    int64
	errorCount int64
	lastError  string
	created    time.Time
}

// New creates a file sensor source.
func New(config Config, deps component.Dependencies) (*Source, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Source{
		name:    "file-sensor",
		path:    config.Path,
		scale:   config.Scale,
		logger:  deps.GetLoggerWithComponent("file-sensor"),
		created: time.Now(),
	}, nil
}

// Meta returns component metadata
func (s *Source) Meta() component.Metadata {
	return component.Metadata{
		Name:        s.name,
		Type:        "source",
		Description: "Samples " + s.path,
		Version:     "1.0.0",
	}
}

// Health returns current health status
func (s *Source) Health() component.HealthStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return component.HealthStatus{
		Healthy:    s.errorCount == 0,
		LastCheck:  time.Now(),
		ErrorCount: s.errorCount,
		LastError:  s.lastError,
		Uptime:     time.Since(s.created),
	}
}

// Next reads and parses one sample.
func (s *Source) Next() (float64, bool) {
	content, err := os.ReadFile(s.path)
	if err != nil {
		s.fail("read failed: " + err.Error())
		return 0, false
	}

	raw, err := strconv.ParseFloat(strings.TrimSpace(string(content)), 64)
	if err != nil {
		s.fail("parse failed: " + err.Error())
		return 0, false
	}

	value := raw / s.scale
	s.mu.Lock()
	s.samples++
	s.mu.Unlock()

	s.logger.Debug("sampled sensor", "path", s.path, "value", value)
	return value, true
}

// Close releases nothing; the file is opened per sample.
func (s *Source) Close() error {
	return nil
}

func (s *Source) fail(msg string) {
	s.mu.Lock()
	s.errorCount++
	s.lastError = msg
	s.mu.Unlock()
	s.logger.Warn("sensor sample failed", "path", s.path, "error", msg)
}

// Register adds the cputemp and file selector schemes to the registry.
func Register(registry *component.Registry) error {
	err := registry.RegisterSource("cputemp", func(_ string, deps component.Dependencies) (component.Source, error) {
		return New(DefaultConfig(), deps)
	})
	if err != nil {
		return err
	}

	return registry.RegisterSource("file", func(selector string, deps component.Dependencies) (component.Source, error) {
		return New(Config{Path: component.SelectorArg(selector), Scale: 1}, deps)
	})
}
