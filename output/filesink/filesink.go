// Package filesink provides a sink that appends each accepted value as a
// line to a file. Mostly useful for dry runs and for recording what the
// control loop would have driven into the actuator.
package filesink

import (
	"log/slog"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/c360/thermoflow/component"
	"github.com/c360/thermoflow/errors"
)

// Config holds configuration for the file sink.
type Config struct {
	// Path of the output file.
	Path string `yaml:"path"`
	// Append keeps existing content; false truncates on open.
	Append bool `yaml:"append"`
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	if c.Path == "" {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate", "path is required")
	}
	return nil
}

// DefaultConfig returns an appending file sink under /tmp.
func DefaultConfig() Config {
	return Config{
		Path:   "/tmp/thermoflow-output.log",
		Append: true,
	}
}

// Sink appends values to a file, one per line.
type Sink struct {
	name   string
	path   string
	logger *slog.Logger

	file    *os.File
	writeMu sync.Mutex

	mu         sync.RWMutex
	pushes     int64
	errorCount int64
	lastError  string
	created    time.Time
}

// New creates a file sink and opens the output file. Open failure is fatal,
// same contract as acquiring the PWM channel.
func New(config Config, deps component.Dependencies) (*Sink, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	flags := os.O_CREATE | os.O_WRONLY
	if config.Append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	file, err := os.OpenFile(config.Path, flags, 0644)
	if err != nil {
		return nil, errors.WrapFatal(err, "Sink", "New", "open output file")
	}

	return &Sink{
		name:    "file-sink",
		path:    config.Path,
		logger:  deps.GetLoggerWithComponent("file-sink"),
		file:    file,
		created: time.Now(),
	}, nil
}

// Meta returns component metadata
func (s *Sink) Meta() component.Metadata {
	return component.Metadata{
		Name:        s.name,
		Type:        "sink",
		Description: "Appends values to " + s.path,
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

// Push appends one value line.
func (s *Sink) Push(value float64) error {
	s.writeMu.Lock()
	_, err := s.file.WriteString(strconv.FormatFloat(value, 'f', -1, 64) + "\n")
	s.writeMu.Unlock()

	if err != nil {
		s.mu.Lock()
		s.errorCount++
		s.lastError = err.Error()
		s.mu.Unlock()
		return errors.WrapFatal(err, "Sink", "Push", "append value line")
	}

	s.mu.Lock()
	s.pushes++
	s.mu.Unlock()
	return nil
}

// Close flushes and closes the output file.
func (s *Sink) Close() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.file.Close(); err != nil {
		return errors.Wrap(err, "Sink", "Close", "close output file")
	}
	return nil
}

// Register adds the file selector scheme to the registry.
func Register(registry *component.Registry) error {
	return registry.RegisterSink("file", func(selector string, deps component.Dependencies) (component.Sink, error) {
		cfg := DefaultConfig()
		if arg := component.SelectorArg(selector); arg != "" {
			cfg.Path = arg
		}
		return New(cfg, deps)
	})
}
