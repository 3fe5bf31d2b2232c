package monitor

import (
	"bufio"
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/thermoflow/component"
	"github.com/c360/thermoflow/errors"
)

func TestAcceptorConfig_Validate(t *testing.T) {
	cases := []struct {
		name    string
		config  AcceptorConfig
		wantErr bool
	}{
		{"default", DefaultAcceptorConfig(), false},
		{"tcp", AcceptorConfig{Network: "tcp", Address: "127.0.0.1:9000"}, false},
		{"bad network", AcceptorConfig{Network: "udp", Address: "x"}, true},
		{"empty address", AcceptorConfig{Network: "tcp"}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.config.Validate()
			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsInvalid(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAcceptor_TCPObserverReceivesBroadcast(t *testing.T) {
	hub := startHub(t)

	acceptor, err := NewAcceptor(AcceptorConfig{Network: "tcp", Address: "127.0.0.1:0"}, hub, component.Dependencies{})
	require.NoError(t, err)
	require.NoError(t, acceptor.Initialize())
	require.NoError(t, acceptor.Start(context.Background()))
	t.Cleanup(func() { _ = acceptor.Stop(time.Second) })

	conn, err := net.Dial("tcp", acceptor.Addr().String())
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.Eventually(t, func() bool {
		return hub.SubscriberCount() == 1
	}, time.Second, 5*time.Millisecond)

	hub.Emit(Message{Index: 7, Tag: OutputTag, Payload: "61"})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	line, err := bufio.NewReader(conn).ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "7: >:61\n", line)
}

func TestAcceptor_UnixSocket(t *testing.T) {
	hub := startHub(t)
	socketPath := filepath.Join(t.TempDir(), "monitor.sock")

	acceptor, err := NewAcceptor(AcceptorConfig{Network: "unix", Address: socketPath}, hub, component.Dependencies{})
	require.NoError(t, err)
	require.NoError(t, acceptor.Initialize())
	require.NoError(t, acceptor.Start(context.Background()))
	t.Cleanup(func() { _ = acceptor.Stop(time.Second) })

	conn, err := net.Dial("unix", socketPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.Eventually(t, func() bool {
		return hub.SubscriberCount() == 1
	}, time.Second, 5*time.Millisecond)

	hub.Emit(Message{Index: 1, Tag: "PID", Payload: `{"P":0,"I":0,"D":0,"setpoint":35,"offset":30}`})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	line, err := bufio.NewReader(conn).ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, `1: PID: {"P":0,"I":0,"D":0,"setpoint":35,"offset":30}`+"\n", line)
}

func TestAcceptor_DisconnectedObserverIsPruned(t *testing.T) {
	hub := startHub(t)

	acceptor, err := NewAcceptor(AcceptorConfig{Network: "tcp", Address: "127.0.0.1:0"}, hub, component.Dependencies{})
	require.NoError(t, err)
	require.NoError(t, acceptor.Initialize())
	require.NoError(t, acceptor.Start(context.Background()))
	t.Cleanup(func() { _ = acceptor.Stop(time.Second) })

	conn, err := net.Dial("tcp", acceptor.Addr().String())
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return hub.SubscriberCount() == 1
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, conn.Close())

	// Writes to a closed peer eventually fail and the observer is removed.
	require.Eventually(t, func() bool {
		hub.Emit(Message{Index: 0, Tag: OutputTag, Payload: "1"})
		return hub.SubscriberCount() == 0
	}, 5*time.Second, 20*time.Millisecond)
}

func TestAcceptor_StaleUnixSocketRemoved(t *testing.T) {
	hub := startHub(t)
	socketPath := filepath.Join(t.TempDir(), "stale.sock")

	// Leave a stale socket file behind, as a crashed daemon would.
	stale, err := net.Listen("unix", socketPath)
	require.NoError(t, err)
	stale.(*net.UnixListener).SetUnlinkOnClose(false)
	require.NoError(t, stale.Close())

	acceptor, err := NewAcceptor(AcceptorConfig{Network: "unix", Address: socketPath}, hub, component.Dependencies{})
	require.NoError(t, err)
	require.NoError(t, acceptor.Initialize())
	require.NoError(t, acceptor.Start(context.Background()))
	t.Cleanup(func() { _ = acceptor.Stop(time.Second) })
}
