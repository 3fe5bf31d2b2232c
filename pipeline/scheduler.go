package pipeline

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/c360/thermoflow/component"
	"github.com/c360/thermoflow/errors"
	"github.com/c360/thermoflow/stage"
)

// Config holds configuration for the scheduler.
type Config struct {
	SamplePeriod time.Duration `yaml:"sample_period"`
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	if c.SamplePeriod <= 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			"sample_period must be positive")
	}
	return nil
}

// DefaultConfig returns the default scheduler configuration.
func DefaultConfig() Config {
	return Config{SamplePeriod: time.Second}
}

// Scheduler ticks a chain at a fixed period and forwards accepted outputs to
// the sink. It runs in exactly two states: running, from Start until the
// source exhausts or the sink fails, and stopped, which is terminal.
//
// Forwarding applies output suppression: a value is pushed only when its
// 2-decimal rounding differs from the previously forwarded value's rounding.
// The first value is always forwarded. Between ticks the scheduler sleeps
// the sample period; missed ticks are never fast-forwarded.
type Scheduler struct {
	name   string
	period time.Duration
	source stage.Producer
	sink   component.Sink
	logger *slog.Logger

	last    float64
	hasLast bool

	metrics *schedulerMetrics

	// Lifecycle management
	shutdown    chan struct{}
	done        chan struct{}
	running     bool
	startTime   time.Time
	runErr      error
	errorCount  int64
	mu          sync.RWMutex
	lifecycleMu sync.Mutex
}

// NewScheduler creates a scheduler driving source into sink.
func NewScheduler(config Config, source stage.Producer, sink component.Sink, deps component.Dependencies) (*Scheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if source == nil || sink == nil {
		return nil, errors.WrapInvalid(errors.ErrMissingConfig, "Scheduler", "NewScheduler",
			"source and sink are required")
	}

	return &Scheduler{
		name:     "scheduler",
		period:   config.SamplePeriod,
		source:   source,
		sink:     sink,
		logger:   deps.GetLoggerWithComponent("scheduler"),
		metrics:  newSchedulerMetrics(deps.MetricsRegistry),
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// Meta returns component metadata
func (s *Scheduler) Meta() component.Metadata {
	return component.Metadata{
		Name:        s.name,
		Type:        "pipeline",
		Description: "Drives the stage chain at a fixed sample period",
		Version:     "1.0.0",
	}
}

// Health returns current health status
func (s *Scheduler) Health() component.HealthStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := component.HealthStatus{
		Healthy:    s.running && s.runErr == nil,
		LastCheck:  time.Now(),
		ErrorCount: s.errorCount,
	}
	if s.runErr != nil {
		status.LastError = s.runErr.Error()
	}
	if s.running {
		status.Uptime = time.Since(s.startTime)
	}
	return status
}

// Initialize prepares the scheduler. Nothing to acquire.
func (s *Scheduler) Initialize() error {
	return nil
}

// Start begins the control loop in a background goroutine.
func (s *Scheduler) Start(ctx context.Context) error {
	s.lifecycleMu.Lock()
	defer s.lifecycleMu.Unlock()

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.WrapFatal(errors.ErrAlreadyStarted, "Scheduler", "Start", "check running state")
	}
	s.running = true
	s.startTime = time.Now()
	s.mu.Unlock()

	s.logger.Info("scheduler started", "sample_period", s.period)

	go s.run(ctx)
	return nil
}

// Stop signals the control loop and waits for it to exit.
func (s *Scheduler) Stop(timeout time.Duration) error {
	s.lifecycleMu.Lock()
	defer s.lifecycleMu.Unlock()

	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	close(s.shutdown)

	select {
	case <-s.done:
	case <-time.After(timeout):
		return errors.WrapTransient(errors.ErrShuttingDown, "Scheduler", "Stop", "wait for loop exit")
	}
	return nil
}

// Done is closed when the control loop has terminated for any reason.
func (s *Scheduler) Done() <-chan struct{} {
	return s.done
}

// Err reports the error that terminated the loop, nil on graceful stop.
func (s *Scheduler) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.runErr
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.done)
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	for {
		select {
		case <-s.shutdown:
			s.logger.Info("scheduler shutting down")
			return
		case <-ctx.Done():
			s.logger.Info("scheduler context canceled")
			return
		default:
		}

		value, ok := s.source.Next()
		if !ok {
			s.logger.Info("source exhausted, stopping scheduler")
			return
		}
		s.metrics.recordTick()

		if s.shouldForward(value) {
			if err := s.sink.Push(value); err != nil {
				wrapped := errors.WrapFatal(err, "Scheduler", "run", "sink push failed")
				s.logger.Error("sink rejected value, stopping scheduler",
					"value", value, "error", err)
				s.mu.Lock()
				s.runErr = wrapped
				s.errorCount++
				s.mu.Unlock()
				return
			}
			s.last = value
			s.hasLast = true
			s.metrics.recordForwarded(value)
			s.logger.Debug("forwarded value", "value", value)
		} else {
			s.metrics.recordSuppressed()
			s.logger.Debug("suppressed value", "value", value, "last", s.last)
		}

		select {
		case <-s.shutdown:
			s.logger.Info("scheduler shutting down")
			return
		case <-ctx.Done():
			s.logger.Info("scheduler context canceled")
			return
		case <-time.After(s.period):
		}
	}
}

// shouldForward applies the output-suppression policy: forward only when the
// 2-decimal rounding differs from the previously forwarded value.
func (s *Scheduler) shouldForward(value float64) bool {
	if !s.hasLast {
		return true
	}
	return math.Round(value*100) != math.Round(s.last*100)
}
