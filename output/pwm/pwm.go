// Package pwm provides a sink driving a hardware PWM channel through the
// kernel sysfs interface. Values are duty-cycle percentages in [0,100]; the
// carrier frequency is fixed at configuration time, 20 kHz by default, above
// audible range for fan control.
package pwm

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/c360/thermoflow/component"
	"github.com/c360/thermoflow/errors"
)

// Config holds configuration for the PWM sink.
type Config struct {
	// ChipPath is the sysfs pwm chip directory.
	ChipPath string `yaml:"chip_path"`
	// Channel selects pwmN under the chip.
	Channel int `yaml:"channel"`
	// FrequencyHz is the PWM carrier frequency.
	FrequencyHz float64 `yaml:"frequency_hz"`
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	if c.ChipPath == "" {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate", "chip_path is required")
	}
	if c.Channel < 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate", "channel cannot be negative")
	}
	if c.FrequencyHz <= 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate", "frequency_hz must be positive")
	}
	return nil
}

// DefaultConfig returns the Raspberry Pi PWM0 defaults.
func DefaultConfig() Config {
	return Config{
		ChipPath:    "/sys/class/pwm/pwmchip0",
		Channel:     0,
		FrequencyHz: 20000,
	}
}

// Sink writes duty-cycle percentages to a sysfs PWM channel.
type Sink struct {
	name        string
	channelPath string
	periodNanos int64
	logger      *slog.Logger

	mu         sync.RWMutex
	pushes     int64
	errorCount int64
	lastError  string
	created    time.Time
}

// New creates a PWM sink and acquires the channel: exports it if needed,
// programs the period and enables output. Acquisition failure is fatal; the
// daemon must not run believing it controls a fan it cannot reach.
func New(config Config, deps component.Dependencies) (*Sink, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	channelPath := filepath.Join(config.ChipPath, fmt.Sprintf("pwm%d", config.Channel))
	periodNanos := int64(1e9 / config.FrequencyHz)

	s := &Sink{
		name:        "pwm-sink",
		channelPath: channelPath,
		periodNanos: periodNanos,
		logger:      deps.GetLoggerWithComponent("pwm-sink"),
		created:     time.Now(),
	}

	if _, err := os.Stat(channelPath); os.IsNotExist(err) {
		exportPath := filepath.Join(config.ChipPath, "export")
		if err := os.WriteFile(exportPath, []byte(strconv.Itoa(config.Channel)), 0644); err != nil {
			return nil, errors.WrapFatal(err, "Sink", "New", "export pwm channel")
		}
		// The kernel creates the channel directory asynchronously.
		if err := waitForDir(channelPath, time.Second); err != nil {
			return nil, errors.WrapFatal(err, "Sink", "New", "wait for pwm channel")
		}
	}

	if err := s.writeAttr("period", strconv.FormatInt(periodNanos, 10)); err != nil {
		return nil, errors.WrapFatal(err, "Sink", "New", "program pwm period")
	}
	if err := s.writeAttr("duty_cycle", "0"); err != nil {
		return nil, errors.WrapFatal(err, "Sink", "New", "zero duty cycle")
	}
	if err := s.writeAttr("enable", "1"); err != nil {
		return nil, errors.WrapFatal(err, "Sink", "New", "enable pwm output")
	}

	s.logger.Info("pwm channel acquired",
		"channel", channelPath,
		"period_ns", periodNanos,
		"frequency_hz", config.FrequencyHz)
	return s, nil
}

// Meta returns component metadata
func (s *Sink) Meta() component.Metadata {
	return component.Metadata{
		Name:        s.name,
		Type:        "sink",
		Description: "Drives " + s.channelPath,
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

// Push sets the duty cycle from a percentage in [0,100]. Out-of-range values
// are an error: the chain's final Clip is expected to bound them first.
func (s *Sink) Push(value float64) error {
	if value < 0 || value > 100 {
		return s.fail(errors.WrapInvalid(
			fmt.Errorf("duty percentage %v out of [0,100]", value),
			"Sink", "Push", "range check"))
	}

	duty := int64(value / 100 * float64(s.periodNanos))
	if err := s.writeAttr("duty_cycle", strconv.FormatInt(duty, 10)); err != nil {
		return s.fail(errors.WrapFatal(err, "Sink", "Push", "write duty cycle"))
	}

	s.mu.Lock()
	s.pushes++
	s.mu.Unlock()

	s.logger.Debug("duty cycle set", "percent", value, "duty_ns", duty)
	return nil
}

// Close disables the PWM output.
func (s *Sink) Close() error {
	if err := s.writeAttr("enable", "0"); err != nil {
		return errors.Wrap(err, "Sink", "Close", "disable pwm output")
	}
	return nil
}

func (s *Sink) writeAttr(attr, value string) error {
	return os.WriteFile(filepath.Join(s.channelPath, attr), []byte(value), 0644)
}

func (s *Sink) fail(err error) error {
	s.mu.Lock()
	s.errorCount++
	s.lastError = err.Error()
	s.mu.Unlock()
	return err
}

func waitForDir(path string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		if _, err := os.Stat(path); err == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%s did not appear within %v", path, timeout)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// Register adds the pwm selector scheme to the registry. A bare "pwm" uses
// the defaults; "pwm:/sys/class/pwm/pwmchip1" selects another chip.
func Register(registry *component.Registry) error {
	return registry.RegisterSink("pwm", func(selector string, deps component.Dependencies) (component.Sink, error) {
		cfg := DefaultConfig()
		if arg := component.SelectorArg(selector); arg != "" {
			cfg.ChipPath = arg
		}
		return New(cfg, deps)
	})
}
