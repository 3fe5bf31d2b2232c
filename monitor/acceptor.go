package monitor

import (
	"context"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/c360/thermoflow/component"
	"github.com/c360/thermoflow/errors"
)

// AcceptorConfig holds configuration for the stream acceptor.
type AcceptorConfig struct {
	// Network is "unix" or "tcp".
	Network string `yaml:"network"`
	// Address is a socket path for unix, host:port for tcp.
	Address string `yaml:"address"`
}

// Validate checks the configuration for errors
func (c *AcceptorConfig) Validate() error {
	if c.Network != "unix" && c.Network != "tcp" {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "AcceptorConfig", "Validate",
			"network must be unix or tcp")
	}
	if c.Address == "" {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "AcceptorConfig", "Validate",
			"address is required")
	}
	return nil
}

// DefaultAcceptorConfig returns the default unix-socket endpoint.
func DefaultAcceptorConfig() AcceptorConfig {
	return AcceptorConfig{
		Network: "unix",
		Address: "/tmp/thermoflow.sock",
	}
}

// Acceptor listens on a byte-stream endpoint and registers each accepted
// connection with the hub. It runs concurrently with the hub and the
// scheduler; a new observer is eligible for the broadcast pass after its
// registration.
type Acceptor struct {
	name    string
	network string
	address string
	hub     *Hub
	logger  *slog.Logger

	listener net.Listener

	// Lifecycle management
	done        chan struct{}
	running     bool
	startTime   time.Time
	mu          sync.RWMutex
	lifecycleMu sync.Mutex
}

// NewAcceptor creates an acceptor feeding the given hub.
func NewAcceptor(config AcceptorConfig, hub *Hub, deps component.Dependencies) (*Acceptor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if hub == nil {
		return nil, errors.WrapInvalid(errors.ErrMissingConfig, "Acceptor", "NewAcceptor", "hub is required")
	}

	return &Acceptor{
		name:    "monitor-acceptor",
		network: config.Network,
		address: config.Address,
		hub:     hub,
		logger:  deps.GetLoggerWithComponent("monitor-acceptor"),
		done:    make(chan struct{}),
	}, nil
}

// Meta returns component metadata
func (a *Acceptor) Meta() component.Metadata {
	return component.Metadata{
		Name:        a.name,
		Type:        "monitor",
		Description: "Accepts observer connections on " + a.network,
		Version:     "1.0.0",
	}
}

// Health returns current health status
func (a *Acceptor) Health() component.HealthStatus {
	a.mu.RLock()
	defer a.mu.RUnlock()

	status := component.HealthStatus{
		Healthy:   a.running,
		LastCheck: time.Now(),
	}
	if a.running {
		status.Uptime = time.Since(a.startTime)
	}
	return status
}

// Initialize removes a stale unix socket left by a previous run.
func (a *Acceptor) Initialize() error {
	if a.network == "unix" {
		if err := os.Remove(a.address); err != nil && !os.IsNotExist(err) {
			return errors.WrapFatal(err, "Acceptor", "Initialize", "remove stale socket")
		}
	}
	return nil
}

// Start binds the endpoint and launches the accept loop. A bind failure is
// fatal: the process must not run half-monitored when monitoring was
// requested.
func (a *Acceptor) Start(_ context.Context) error {
	a.lifecycleMu.Lock()
	defer a.lifecycleMu.Unlock()

	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return errors.WrapFatal(errors.ErrAlreadyStarted, "Acceptor", "Start", "check running state")
	}
	a.mu.Unlock()

	listener, err := net.Listen(a.network, a.address)
	if err != nil {
		return errors.WrapFatal(err, "Acceptor", "Start", "bind "+a.network+" "+a.address)
	}

	a.mu.Lock()
	a.listener = listener
	a.running = true
	a.startTime = time.Now()
	a.mu.Unlock()

	go a.acceptLoop()

	a.logger.Info("monitor acceptor listening",
		"network", a.network,
		"address", listener.Addr().String())
	return nil
}

// Stop closes the listener and waits for the accept loop to exit.
func (a *Acceptor) Stop(timeout time.Duration) error {
	a.lifecycleMu.Lock()
	defer a.lifecycleMu.Unlock()

	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return nil
	}
	a.running = false
	listener := a.listener
	a.mu.Unlock()

	if listener != nil {
		_ = listener.Close()
	}

	select {
	case <-a.done:
	case <-time.After(timeout):
		return errors.WrapTransient(errors.ErrShuttingDown, "Acceptor", "Stop", "wait for accept loop")
	}

	if a.network == "unix" {
		_ = os.Remove(a.address)
	}
	return nil
}

// Addr returns the bound address, useful when the configuration requested an
// ephemeral port.
func (a *Acceptor) Addr() net.Addr {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.listener == nil {
		return nil
	}
	return a.listener.Addr()
}

func (a *Acceptor) acceptLoop() {
	defer close(a.done)

	for {
		conn, err := a.listener.Accept()
		if err != nil {
			a.mu.RLock()
			running := a.running
			a.mu.RUnlock()
			if !running {
				return
			}
			a.logger.Warn("accept failed", "error", err)
			continue
		}

		a.logger.Debug("observer connected", "remote", conn.RemoteAddr().String())
		a.hub.Register(NewConnSubscriber(conn))
	}
}
