package external

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/thermoflow/component"
	"github.com/c360/thermoflow/errors"
)

func TestSink_PushWritesValueToStdin(t *testing.T) {
	out := filepath.Join(t.TempDir(), "pushed")

	sink, err := New(Config{Command: "cat >> " + out}, component.Dependencies{})
	require.NoError(t, err)

	require.NoError(t, sink.Push(61))
	require.NoError(t, sink.Push(59.27))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "61\n59.27\n", string(data))
}

func TestSink_FailingCommandIsFatal(t *testing.T) {
	sink, err := New(Config{Command: "false"}, component.Dependencies{})
	require.NoError(t, err)

	err = sink.Push(50)
	require.Error(t, err)
	assert.True(t, errors.IsFatal(err))
	assert.False(t, sink.Health().Healthy)
}

func TestConfig_Validate(t *testing.T) {
	err := (&Config{}).Validate()
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestRegister_Selector(t *testing.T) {
	registry := component.NewRegistry()
	require.NoError(t, Register(registry))

	sink, err := registry.CreateSink("exec:cat > /dev/null", component.Dependencies{})
	require.NoError(t, err)
	require.NoError(t, sink.Push(42))
}
