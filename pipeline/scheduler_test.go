package pipeline

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/thermoflow/component"
	"github.com/c360/thermoflow/errors"
)

type captureSink struct {
	mu     sync.Mutex
	pushed []float64
	fail   bool
}

func (s *captureSink) Meta() component.Metadata {
	return component.Metadata{Name: "capture-sink", Type: "sink"}
}

func (s *captureSink) Health() component.HealthStatus {
	return component.HealthStatus{Healthy: true}
}

func (s *captureSink) Push(value float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return fmt.Errorf("actuator rejected value %v", value)
	}
	s.pushed = append(s.pushed, value)
	return nil
}

func (s *captureSink) Close() error { return nil }

func (s *captureSink) values() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]float64, len(s.pushed))
	copy(out, s.pushed)
	return out
}

func waitDone(t *testing.T, s *Scheduler) {
	t.Helper()
	select {
	case <-s.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not terminate")
	}
}

func TestScheduler_SuppressesEqualRoundings(t *testing.T) {
	source := &sliceSource{values: []float64{50.004, 50.001, 50.01}}
	sink := &captureSink{}

	s, err := NewScheduler(Config{SamplePeriod: time.Millisecond}, source, sink, component.Dependencies{})
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	waitDone(t, s)

	// 50.001 rounds to the same 2-decimal value as 50.004 and is suppressed.
	assert.Equal(t, []float64{50.004, 50.01}, sink.values())
	assert.NoError(t, s.Err())
}

func TestScheduler_FirstValueAlwaysForwarded(t *testing.T) {
	source := &sliceSource{values: []float64{0}}
	sink := &captureSink{}

	s, err := NewScheduler(Config{SamplePeriod: time.Millisecond}, source, sink, component.Dependencies{})
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	waitDone(t, s)

	assert.Equal(t, []float64{0}, sink.values())
}

func TestScheduler_SourceExhaustionIsGraceful(t *testing.T) {
	source := &sliceSource{values: []float64{1, 2}}
	sink := &captureSink{}

	s, err := NewScheduler(Config{SamplePeriod: time.Millisecond}, source, sink, component.Dependencies{})
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	waitDone(t, s)

	assert.NoError(t, s.Err())
	assert.False(t, s.Health().Healthy)
}

func TestScheduler_SinkFailureIsFatal(t *testing.T) {
	source := &sliceSource{values: []float64{1, 2, 3}}
	sink := &captureSink{fail: true}

	s, err := NewScheduler(Config{SamplePeriod: time.Millisecond}, source, sink, component.Dependencies{})
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	waitDone(t, s)

	require.Error(t, s.Err())
	assert.True(t, errors.IsFatal(s.Err()))
	assert.Empty(t, sink.values())
}

type endlessSource struct{}

func (endlessSource) Next() (float64, bool) { return 42, true }

func TestScheduler_StopTerminatesLoop(t *testing.T) {
	sink := &captureSink{}

	s, err := NewScheduler(Config{SamplePeriod: 10 * time.Millisecond}, endlessSource{}, sink, component.Dependencies{})
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	time.Sleep(30 * time.Millisecond)
	require.NoError(t, s.Stop(time.Second))

	waitDone(t, s)
	assert.NotEmpty(t, sink.values())
}

func TestScheduler_DoubleStartRejected(t *testing.T) {
	sink := &captureSink{}

	s, err := NewScheduler(Config{SamplePeriod: 10 * time.Millisecond}, endlessSource{}, sink, component.Dependencies{})
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	defer func() { _ = s.Stop(time.Second) }()

	err = s.Start(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrAlreadyStarted)
}

func TestSchedulerConfig_Validate(t *testing.T) {
	cfg := Config{}
	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))

	cfg = DefaultConfig()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, time.Second, cfg.SamplePeriod)
}
