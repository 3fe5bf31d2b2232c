package component

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/thermoflow/errors"
)

type fakeSource struct{ selector string }

func (f *fakeSource) Meta() Metadata       { return Metadata{Name: "fake-source", Type: "source"} }
func (f *fakeSource) Health() HealthStatus { return HealthStatus{Healthy: true} }
func (f *fakeSource) Next() (float64, bool) {
	return 0, false
}
func (f *fakeSource) Close() error { return nil }

type fakeSink struct{ selector string }

func (f *fakeSink) Meta() Metadata           { return Metadata{Name: "fake-sink", Type: "sink"} }
func (f *fakeSink) Health() HealthStatus     { return HealthStatus{Healthy: true} }
func (f *fakeSink) Push(value float64) error { return nil }
func (f *fakeSink) Close() error             { return nil }

func TestRegistry_SourceRoundTrip(t *testing.T) {
	registry := NewRegistry()

	err := registry.RegisterSource("file", func(selector string, _ Dependencies) (Source, error) {
		return &fakeSource{selector: selector}, nil
	})
	require.NoError(t, err)

	src, err := registry.CreateSource("file:/sys/class/thermal/thermal_zone0/temp", Dependencies{})
	require.NoError(t, err)
	assert.Equal(t, "fake-source", src.Meta().Name)
	assert.Equal(t, "/sys/class/thermal/thermal_zone0/temp",
		SelectorArg("file:/sys/class/thermal/thermal_zone0/temp"))
}

func TestRegistry_BareSelector(t *testing.T) {
	registry := NewRegistry()

	err := registry.RegisterSink("pwm", func(selector string, _ Dependencies) (Sink, error) {
		return &fakeSink{selector: selector}, nil
	})
	require.NoError(t, err)

	sink, err := registry.CreateSink("pwm", Dependencies{})
	require.NoError(t, err)
	assert.Equal(t, "fake-sink", sink.Meta().Name)
	assert.Equal(t, "", SelectorArg("pwm"))
}

func TestRegistry_UnknownScheme(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.CreateSource("bogus:whatever", Dependencies{})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrUnknownSource)
	assert.True(t, errors.IsInvalid(err))

	_, err = registry.CreateSink("bogus", Dependencies{})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrUnknownSink)
}

func TestRegistry_DuplicateScheme(t *testing.T) {
	registry := NewRegistry()

	factory := func(selector string, _ Dependencies) (Source, error) {
		return &fakeSource{selector: selector}, nil
	}
	require.NoError(t, registry.RegisterSource("file", factory))

	err := registry.RegisterSource("file", factory)
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestDependencies_Logger(t *testing.T) {
	deps := Dependencies{}
	logger := deps.GetLoggerWithComponent("hub")
	require.NotNil(t, logger)
}
