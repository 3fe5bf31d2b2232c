package monitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/thermoflow/errors"
)

func TestMessage_Line(t *testing.T) {
	cases := []struct {
		name string
		msg  Message
		want string
	}{
		{
			"state line",
			Message{Index: 1, Tag: "PID", Payload: `{"P":10,"I":2,"D":0}`},
			`1: PID: {"P":10,"I":2,"D":0}`,
		},
		{
			"output line has no space after tag",
			Message{Index: 7, Tag: OutputTag, Payload: "61"},
			"7: >:61",
		},
		{
			"fractional output",
			Message{Index: 4, Tag: OutputTag, Payload: "59.2743"},
			"4: >:59.2743",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.msg.Line())
		})
	}
}

func TestParseLine_RoundTrip(t *testing.T) {
	msg, err := ParseLine("7: >:61")
	require.NoError(t, err)
	assert.Equal(t, 7, msg.Index)
	assert.Equal(t, OutputTag, msg.Tag)
	assert.Equal(t, "61", msg.Payload)

	msg, err = ParseLine(`0: Average: {"n":5,"index":2,"mean":41.3}`)
	require.NoError(t, err)
	assert.Equal(t, 0, msg.Index)
	assert.Equal(t, "Average", msg.Tag)
	assert.Equal(t, `{"n":5,"index":2,"mean":41.3}`, msg.Payload)
}

func TestParseLine_Malformed(t *testing.T) {
	for _, line := range []string{"", "no separators", "x: PID: {}", "7: >"} {
		_, err := ParseLine(line)
		require.Error(t, err, "line %q", line)
		assert.True(t, errors.IsInvalid(err))
	}
}
