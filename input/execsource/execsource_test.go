package execsource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/thermoflow/component"
	"github.com/c360/thermoflow/errors"
)

func TestSource_ParsesCommandOutput(t *testing.T) {
	src, err := New(Config{Command: "echo 42.75"}, component.Dependencies{})
	require.NoError(t, err)

	v, ok := src.Next()
	require.True(t, ok)
	assert.Equal(t, 42.75, v)
}

func TestSource_FailingCommandExhausts(t *testing.T) {
	src, err := New(Config{Command: "false"}, component.Dependencies{})
	require.NoError(t, err)

	_, ok := src.Next()
	assert.False(t, ok)
	assert.False(t, src.Health().Healthy)
}

func TestSource_GarbageOutputExhausts(t *testing.T) {
	src, err := New(Config{Command: "echo not-a-number"}, component.Dependencies{})
	require.NoError(t, err)

	_, ok := src.Next()
	assert.False(t, ok)
}

func TestConfig_Validate(t *testing.T) {
	err := (&Config{}).Validate()
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestRegister_Selector(t *testing.T) {
	registry := component.NewRegistry()
	require.NoError(t, Register(registry))

	src, err := registry.CreateSource("exec:echo 1.5", component.Dependencies{})
	require.NoError(t, err)

	v, ok := src.Next()
	require.True(t, ok)
	assert.Equal(t, 1.5, v)
}
