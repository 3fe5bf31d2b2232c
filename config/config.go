// Package config loads and validates the thermoflow pipeline configuration.
// The configuration is a single YAML document read once at process start;
// absence of a file falls back to the built-in default chain tuned for a
// Raspberry Pi CPU fan.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/c360/thermoflow/errors"
	"github.com/c360/thermoflow/monitor"
	"github.com/c360/thermoflow/stage"
)

// Config is the complete pipeline description: input selector, ordered stage
// specs, output selector, sample period and the optional monitor and metrics
// surfaces. Immutable after load.
type Config struct {
	Input          string        `yaml:"input"`
	Stages         []stage.Spec  `yaml:"stages"`
	Output         string        `yaml:"output"`
	SamplePeriodMS int           `yaml:"sample_period_ms"`
	Monitor        MonitorConfig `yaml:"monitor"`
	Metrics        MetricsConfig `yaml:"metrics"`
}

// MonitorConfig selects the observer surfaces. Disabled monitoring still
// runs the pipeline; stages are simply built without emitters.
type MonitorConfig struct {
	Enabled   bool                    `yaml:"enabled"`
	Listen    *monitor.AcceptorConfig `yaml:"listen,omitempty"`
	WebSocket *monitor.WSConfig       `yaml:"websocket,omitempty"`
	NATS      *monitor.RelayConfig    `yaml:"nats,omitempty"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	if c.Input == "" {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate", "input selector is required")
	}
	if c.Output == "" {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate", "output selector is required")
	}
	if c.SamplePeriodMS <= 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate", "sample_period_ms must be positive")
	}

	for i, spec := range c.Stages {
		if err := spec.Validate(); err != nil {
			return errors.Wrap(err, "Config", "Validate", fmt.Sprintf("stage %d", i))
		}
	}

	if c.Monitor.Enabled {
		if c.Monitor.Listen == nil && c.Monitor.WebSocket == nil && c.Monitor.NATS == nil {
			return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
				"monitoring enabled but no observer surface configured")
		}
		if c.Monitor.Listen != nil {
			if err := c.Monitor.Listen.Validate(); err != nil {
				return err
			}
		}
		if c.Monitor.WebSocket != nil {
			if err := c.Monitor.WebSocket.Validate(); err != nil {
				return err
			}
		}
		if c.Monitor.NATS != nil {
			if err := c.Monitor.NATS.Validate(); err != nil {
				return err
			}
		}
	}

	if c.Metrics.Enabled && c.Metrics.Address == "" {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			"metrics enabled but no address configured")
	}

	return nil
}

// SamplePeriod returns the tick period as a duration.
func (c *Config) SamplePeriod() time.Duration {
	return time.Duration(c.SamplePeriodMS) * time.Millisecond
}

// DefaultConfig returns the built-in pipeline: the CPU temperature smoothed,
// fed through a rectified PID, bounded, rate-converted through a pair of
// critically damped oscillators and bounded again before driving the fan.
func DefaultConfig() *Config {
	listen := monitor.DefaultAcceptorConfig()
	return &Config{
		Input: "cputemp",
		Stages: []stage.Spec{
			{Kind: stage.KindAverage, N: 5},
			{Kind: stage.KindPID, KP: 2, KI: 2, KD: 5, PLimit: 100, ILimit: 10, DLimit: 30, Setpoint: 35, Offset: 30},
			{Kind: stage.KindClip, Min: 30, Max: 100},
			{Kind: stage.KindSupersample, N: 100},
			{Kind: stage.KindDampenedOscillator, Mass: 0.5, Spring: 2, DT: 0.25},
			{Kind: stage.KindDampenedOscillator, Mass: 1, Spring: 1, DT: 0.25},
			{Kind: stage.KindClip, Min: 30, Max: 100},
			{Kind: stage.KindSubsample, N: 4},
		},
		Output:         "pwm",
		SamplePeriodMS: 1000,
		Monitor: MonitorConfig{
			Enabled: true,
			Listen:  &listen,
		},
	}
}

// Load reads and validates a configuration file. Unknown fields are
// rejected; a typo in a stage parameter must not silently fall back to a
// zero value.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapInvalid(err, "Config", "Load", "read config file")
	}
	return Parse(data)
}

// Parse decodes and validates a configuration document.
func Parse(data []byte) (*Config, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var cfg Config
	if err := decoder.Decode(&cfg); err != nil && err != io.EOF {
		return nil, errors.WrapInvalid(err, "Config", "Parse", "decode yaml")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads the given file, or returns the built-in default chain
// when path is empty or the file does not exist. A file that exists but
// fails to parse or validate is still an error; only absence falls back.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	return Load(path)
}
