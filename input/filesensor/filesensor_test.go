package filesensor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/thermoflow/component"
	"github.com/c360/thermoflow/errors"
)

func writeSample(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "temp")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestSource_ReadsAndScales(t *testing.T) {
	path := writeSample(t, "48213\n")

	src, err := New(Config{Path: path, Scale: 1000}, component.Dependencies{})
	require.NoError(t, err)

	v, ok := src.Next()
	require.True(t, ok)
	assert.Equal(t, 48.213, v)
	assert.True(t, src.Health().Healthy)
}

func TestSource_MissingFileExhausts(t *testing.T) {
	src, err := New(Config{Path: "/nonexistent/thermal", Scale: 1000}, component.Dependencies{})
	require.NoError(t, err)

	_, ok := src.Next()
	assert.False(t, ok)
	assert.False(t, src.Health().Healthy)
}

func TestSource_GarbageContentExhausts(t *testing.T) {
	path := writeSample(t, "not a number\n")

	src, err := New(Config{Path: path, Scale: 1}, component.Dependencies{})
	require.NoError(t, err)

	_, ok := src.Next()
	assert.False(t, ok)
}

func TestConfig_Validate(t *testing.T) {
	err := (&Config{Scale: 1000}).Validate()
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))

	err = (&Config{Path: "/x", Scale: 0}).Validate()
	require.Error(t, err)

	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultThermalPath, cfg.Path)
}

func TestRegister_Selectors(t *testing.T) {
	registry := component.NewRegistry()
	require.NoError(t, Register(registry))

	src, err := registry.CreateSource("cputemp", component.Dependencies{})
	require.NoError(t, err)
	assert.Equal(t, "file-sensor", src.Meta().Name)

	path := writeSample(t, "12.5")
	src, err = registry.CreateSource("file:"+path, component.Dependencies{})
	require.NoError(t, err)

	v, ok := src.Next()
	require.True(t, ok)
	assert.Equal(t, 12.5, v)
}
