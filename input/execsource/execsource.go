// Package execsource provides a source that runs an external command per
// pull and parses its stdout as the sample. Useful for sensors without a
// file interface, e.g. vcgencmd or an SNMP query wrapped in a script.
package execsource

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

// Config holds configuration for the exec source.
type Config struct {
	// Command is passed to sh -c on every pull.
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

// Source samples by running a command. A failed run or unparseable output
// ends the sequence, like a vanished sensor file.
type Source struct {
	name    string
	command string
	timeout time.Duration
	logger  *slog.Logger

	mu         sync.RWMutex
	errorCount int64
	lastError  string
	created    time.Time
}

// New creates an exec source.
func New(config Config, deps component.Dependencies) (*Source, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultConfig().Timeout
	}

	return &Source{
		name:    "exec-source",
		command: config.Command,
		timeout: config.Timeout,
		logger:  deps.GetLoggerWithComponent("exec-source"),
		created: time.Now(),
	}, nil
}

// Meta returns component metadata
func (s *Source) Meta() component.Metadata {
	return component.Metadata{
		Name:        s.name,
		Type:        "source",
		Description: "Samples via command: " + s.command,
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

// Next runs the command once and parses its output.
func (s *Source) Next() (float64, bool) {
	cmd := exec.Command("sh", "-c", s.command)
	out, err := cmd.Output()
	if err != nil {
		s.fail("command failed: " + err.Error())
		return 0, false
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		s.fail("parse failed: " + err.Error())
		return 0, false
	}

	s.logger.Debug("sampled command", "command", s.command, "value", value)
	return value, true
}

// Close releases nothing; each pull runs a fresh process.
func (s *Source) Close() error {
	return nil
}

func (s *Source) fail(msg string) {
	s.mu.Lock()
	s.errorCount++
	s.lastError = msg
	s.mu.Unlock()
	s.logger.Warn("exec sample failed", "command", s.command, "error", msg)
}

// Register adds the exec selector scheme to the registry.
func Register(registry *component.Registry) error {
	return registry.RegisterSource("exec", func(selector string, deps component.Dependencies) (component.Source, error) {
		cfg := DefaultConfig()
		cfg.Command = component.SelectorArg(selector)
		return New(cfg, deps)
	})
}
