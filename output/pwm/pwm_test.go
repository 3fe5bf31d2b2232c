package pwm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/thermoflow/component"
	"github.com/c360/thermoflow/errors"
)

// fakeChip builds a sysfs-shaped pwm chip directory with the channel already
// exported, the way the kernel presents an in-use channel.
func fakeChip(t *testing.T) string {
	t.Helper()
	chip := t.TempDir()
	channel := filepath.Join(chip, "pwm0")
	require.NoError(t, os.MkdirAll(channel, 0755))
	for _, attr := range []string{"period", "duty_cycle", "enable"} {
		require.NoError(t, os.WriteFile(filepath.Join(channel, attr), []byte("0"), 0644))
	}
	return chip
}

func readAttr(t *testing.T, chip, attr string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(chip, "pwm0", attr))
	require.NoError(t, err)
	return string(data)
}

func TestSink_AcquiresChannel(t *testing.T) {
	chip := fakeChip(t)

	sink, err := New(Config{ChipPath: chip, Channel: 0, FrequencyHz: 20000}, component.Dependencies{})
	require.NoError(t, err)

	// 20 kHz is a 50000 ns period.
	assert.Equal(t, "50000", readAttr(t, chip, "period"))
	assert.Equal(t, "1", readAttr(t, chip, "enable"))

	require.NoError(t, sink.Close())
	assert.Equal(t, "0", readAttr(t, chip, "enable"))
}

func TestSink_PushSetsDutyCycle(t *testing.T) {
	chip := fakeChip(t)

	sink, err := New(Config{ChipPath: chip, Channel: 0, FrequencyHz: 20000}, component.Dependencies{})
	require.NoError(t, err)

	require.NoError(t, sink.Push(50))
	assert.Equal(t, "25000", readAttr(t, chip, "duty_cycle"))

	require.NoError(t, sink.Push(100))
	assert.Equal(t, "50000", readAttr(t, chip, "duty_cycle"))

	require.NoError(t, sink.Push(0))
	assert.Equal(t, "0", readAttr(t, chip, "duty_cycle"))
}

func TestSink_PushRejectsOutOfRange(t *testing.T) {
	chip := fakeChip(t)

	sink, err := New(Config{ChipPath: chip, Channel: 0, FrequencyHz: 20000}, component.Dependencies{})
	require.NoError(t, err)

	require.Error(t, sink.Push(-1))
	require.Error(t, sink.Push(100.5))
	assert.False(t, sink.Health().Healthy)
}

func TestNew_MissingChipIsFatal(t *testing.T) {
	_, err := New(Config{ChipPath: "/nonexistent/pwmchip9", Channel: 0, FrequencyHz: 20000}, component.Dependencies{})
	require.Error(t, err)
	assert.True(t, errors.IsFatal(err))
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())

	cfg.FrequencyHz = 0
	require.Error(t, cfg.Validate())
}

func TestRegister_Selector(t *testing.T) {
	chip := fakeChip(t)
	registry := component.NewRegistry()
	require.NoError(t, Register(registry))

	sink, err := registry.CreateSink("pwm:"+chip, component.Dependencies{})
	require.NoError(t, err)
	assert.Equal(t, "pwm-sink", sink.Meta().Name)
}
