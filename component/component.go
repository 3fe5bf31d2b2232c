package component

import (
	"context"
	"log/slog"
	"time"

	"github.com/c360/thermoflow/metric"
)

// Metadata describes what a component is
type Metadata struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // "source", "sink", "monitor"
	Description string `json:"description"`
	Version     string `json:"version"`
}

// HealthStatus describes the current health state of a component
type HealthStatus struct {
	Healthy    bool          `json:"healthy"`
	LastCheck  time.Time     `json:"last_check"`
	ErrorCount int64         `json:"error_count"`
	LastError  string        `json:"last_error,omitempty"`
	Uptime     time.Duration `json:"uptime"`
}

// Discoverable defines the interface for components that can be inspected
// at runtime.
type Discoverable interface {
	// Meta returns basic component information
	Meta() Metadata

	// Health returns current health status
	Health() HealthStatus
}

// LifecycleComponent defines components that support full lifecycle management
// following the unified pattern:
//   - Initialize() error                 // Setup/validate only, NO context
//   - Start(ctx context.Context) error   // Start with context passed through
//   - Stop(timeout time.Duration) error  // Stop with timeout for graceful shutdown
type LifecycleComponent interface {
	Discoverable
	Initialize() error
	Start(ctx context.Context) error
	Stop(timeout time.Duration) error
}

// Source produces the next sensor sample on demand. Next returns false when
// the source is exhausted; callers must not call Next again after that.
type Source interface {
	Discoverable
	Next() (float64, bool)
	Close() error
}

// Sink accepts the next actuator value. A non-nil error from Push is
// unrecoverable: the caller stops driving the pipeline.
type Sink interface {
	Discoverable
	Push(value float64) error
	Close() error
}

// Dependencies provides all external dependencies needed by components.
// Individual fields may be nil; factories fall back to defaults (nil registry
// = no metrics, nil logger = slog.Default()).
type Dependencies struct {
	MetricsRegistry *metric.MetricsRegistry // Metrics registry for Prometheus (can be nil)
	Logger          *slog.Logger            // Structured logger (can be nil, defaults to slog.Default())
}

// GetLogger returns the configured logger or a default logger if none is provided
func (d *Dependencies) GetLogger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

// GetLoggerWithComponent returns a logger configured with component context
func (d *Dependencies) GetLoggerWithComponent(componentName string) *slog.Logger {
	return d.GetLogger().With("component", componentName)
}
