// Package external provides a sink that hands each accepted value to an
// external command, for actuators without a sysfs interface. The value is
// written to the command's stdin as one line per push.
package external

import (
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/c360/thermoflow/component"
	"github.com/c360/thermoflow/errors"
)

// Config holds configuration for the external command sink.
type Config struct {
	// Command is passed to sh -c on every push.
	Command string `yaml:"command"`
	// Timeout bounds one command run.
	Timeout time.Duration `yaml:"timeout"`
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	if c.Command == "" {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate", "command is required")
	}
	if c.Timeout < 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate", "timeout cannot be negative")
	}
	return nil
}

// DefaultConfig returns defaults with a conservative run timeout.
func DefaultConfig() Config {
	return Config{Timeout: 10 * time.Second}
}

// Sink runs a command per accepted value.
type Sink struct {
	name    string
	command string
	timeout time.Duration
	logger  *slog.Logger

	mu         sync.RWMutex
	pushes     int64
	errorCount int64
	lastError  string
	created    time.Time
}

// New creates an external command sink.
func New(config Config, deps component.Dependencies) (*Sink, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultConfig().Timeout
	}

	return &Sink{
		name:    "external-sink",
		command: config.Command,
		timeout: config.Timeout,
		logger:  deps.GetLoggerWithComponent("external-sink"),
		created: time.Now(),
	}, nil
}

// Meta returns component metadata
func (s *Sink) Meta() component.Metadata {
	return component.Metadata{
		Name:        s.name,
		Type:        "sink",
		Description: "Pushes via command: " + s.command,
		Version:     "1.0.0",
	}
}

// Health returns current health status
func (s *Sink) Health() component.HealthStatus {
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

// Push runs the command with the value on stdin. A failed run is an error;
// the scheduler treats sink errors as fatal.
func (s *Sink) Push(value float64) error {
	cmd := exec.Command("sh", "-c", s.command)
	cmd.Stdin = strings.NewReader(strconv.FormatFloat(value, 'f', -1, 64) + "\n")

	if err := cmd.Run(); err != nil {
		s.mu.Lock()
		s.errorCount++
		s.lastError = err.Error()
		s.mu.Unlock()
		return errors.WrapFatal(err, "Sink", "Push", "run actuator command")
	}

	s.mu.Lock()
	s.pushes++
	s.mu.Unlock()

	s.logger.Debug("pushed value to command", "value", value)
	return nil
}

// Close releases nothing; each push runs a fresh process.
func (s *Sink) Close() error {
	return nil
}

// Register adds the exec selector scheme to the registry.
func Register(registry *component.Registry) error {
	return registry.RegisterSink("exec", func(selector string, deps component.Dependencies) (component.Sink, error) {
		cfg := DefaultConfig()
		cfg.Command = component.SelectorArg(selector)
		return New(cfg, deps)
	})
}
