package filesink

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/thermoflow/component"
	"github.com/c360/thermoflow/errors"
)

func TestSink_AppendsValueLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")

	sink, err := New(Config{Path: path, Append: true}, component.Dependencies{})
	require.NoError(t, err)

	require.NoError(t, sink.Push(61))
	require.NoError(t, sink.Push(59.27))
	require.NoError(t, sink.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "61\n59.27\n", string(data))
}

func TestSink_TruncateMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	require.NoError(t, os.WriteFile(path, []byte("old content\n"), 0644))

	sink, err := New(Config{Path: path, Append: false}, component.Dependencies{})
	require.NoError(t, err)

	require.NoError(t, sink.Push(1))
	require.NoError(t, sink.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "1\n", string(data))
}

func TestNew_UnwritablePathIsFatal(t *testing.T) {
	_, err := New(Config{Path: "/nonexistent/dir/out.log"}, component.Dependencies{})
	require.Error(t, err)
	assert.True(t, errors.IsFatal(err))
}

func TestRegister_Selector(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	registry := component.NewRegistry()
	require.NoError(t, Register(registry))

	sink, err := registry.CreateSink("file:"+path, component.Dependencies{})
	require.NoError(t, err)
	require.NoError(t, sink.Push(3))
	require.NoError(t, sink.Close())
}
