package monitor

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/c360/thermoflow/component"
	"github.com/c360/thermoflow/errors"
)

// WSConfig holds configuration for the WebSocket observer endpoint.
type WSConfig struct {
	Address string `yaml:"address"`
	Path    string `yaml:"path"`
}

// Validate checks the configuration for errors
func (c *WSConfig) Validate() error {
	if c.Address == "" {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "WSConfig", "Validate", "address is required")
	}
	if c.Path == "" {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "WSConfig", "Validate", "path is required")
	}
	return nil
}

// DefaultWSConfig returns the default WebSocket endpoint.
func DefaultWSConfig() WSConfig {
	return WSConfig{
		Address: "0.0.0.0:8081",
		Path:    "/ws",
	}
}

// WSServer exposes the monitor stream over WebSocket. Each upgraded
// connection becomes a hub subscriber receiving every wire line as a text
// frame; delivery-or-prune semantics are identical to the stream acceptor.
type WSServer struct {
	name   string
	path   string
	hub    *Hub
	logger *slog.Logger

	server   *http.Server
	upgrader websocket.Upgrader
	listener net.Listener

	// Lifecycle management
	done        chan struct{}
	running     bool
	startTime   time.Time
	mu          sync.RWMutex
	lifecycleMu sync.Mutex
}

// NewWSServer creates a WebSocket observer endpoint feeding the given hub.
func NewWSServer(config WSConfig, hub *Hub, deps component.Dependencies) (*WSServer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if hub == nil {
		return nil, errors.WrapInvalid(errors.ErrMissingConfig, "WSServer", "NewWSServer", "hub is required")
	}

	w := &WSServer{
		name:   "monitor-websocket",
		path:   config.Path,
		hub:    hub,
		logger: deps.GetLoggerWithComponent("monitor-websocket"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The monitor stream is read-only diagnostics; any origin may
			// observe it, same as the raw socket endpoint.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		done: make(chan struct{}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc(config.Path, w.handleUpgrade)
	w.server = &http.Server{
		Addr:              config.Address,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return w, nil
}

// Meta returns component metadata
func (w *WSServer) Meta() component.Metadata {
	return component.Metadata{
		Name:        w.name,
		Type:        "monitor",
		Description: "WebSocket observer endpoint at " + w.path,
		Version:     "1.0.0",
	}
}

// Health returns current health status
func (w *WSServer) Health() component.HealthStatus {
	w.mu.RLock()
	defer w.mu.RUnlock()

	status := component.HealthStatus{
		Healthy:   w.running,
		LastCheck: time.Now(),
	}
	if w.running {
		status.Uptime = time.Since(w.startTime)
	}
	return status
}

// Initialize prepares the server. Nothing to acquire.
func (w *WSServer) Initialize() error {
	return nil
}

// Start binds the HTTP listener and serves upgrades in the background.
func (w *WSServer) Start(_ context.Context) error {
	w.lifecycleMu.Lock()
	defer w.lifecycleMu.Unlock()

	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return errors.WrapFatal(errors.ErrAlreadyStarted, "WSServer", "Start", "check running state")
	}
	w.mu.Unlock()

	listener, err := net.Listen("tcp", w.server.Addr)
	if err != nil {
		return errors.WrapFatal(err, "WSServer", "Start", "bind "+w.server.Addr)
	}

	w.mu.Lock()
	w.listener = listener
	w.running = true
	w.startTime = time.Now()
	w.mu.Unlock()

	go func() {
		defer close(w.done)
		if err := w.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			w.logger.Error("websocket server failed", "error", err)
		}
	}()

	w.logger.Info("websocket observer endpoint listening",
		"address", listener.Addr().String(), "path", w.path)
	return nil
}

// Stop shuts the HTTP server down. Open observer connections are closed by
// the hub when it stops.
func (w *WSServer) Stop(timeout time.Duration) error {
	w.lifecycleMu.Lock()
	defer w.lifecycleMu.Unlock()

	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	w.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := w.server.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "WSServer", "Stop", "shutdown failed")
	}

	select {
	case <-w.done:
	case <-time.After(timeout):
	}
	return nil
}

// Addr returns the bound address.
func (w *WSServer) Addr() net.Addr {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.listener == nil {
		return nil
	}
	return w.listener.Addr()
}

func (w *WSServer) handleUpgrade(wr http.ResponseWriter, r *http.Request) {
	conn, err := w.upgrader.Upgrade(wr, r, nil)
	if err != nil {
		w.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	sub := newWSSubscriber(conn)
	w.hub.Register(sub)
	w.logger.Debug("websocket observer connected", "remote", r.RemoteAddr, "id", sub.ID())

	// Reader goroutine: the stream is one-way, but reading is what surfaces
	// close and ping control frames. On read error the connection is closed
	// and the next broadcast write prunes the subscriber.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				_ = conn.Close()
				return
			}
		}
	}()
}

// wsSubscriber adapts a WebSocket connection to the Subscriber interface.
// Each wire line is one text frame. The write mutex serializes frames inside
// the hub's broadcast pass with control-frame writes.
type wsSubscriber struct {
	id      string
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func newWSSubscriber(conn *websocket.Conn) Subscriber {
	return &wsSubscriber{
		id:   uuid.NewString(),
		conn: conn,
	}
}

func (s *wsSubscriber) ID() string {
	return s.id
}

func (s *wsSubscriber) WriteLine(line string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return errors.WrapTransient(err, "wsSubscriber", "WriteLine", "set deadline")
	}
	if err := s.conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
		return errors.WrapTransient(err, "wsSubscriber", "WriteLine", "write frame")
	}
	return nil
}

func (s *wsSubscriber) Close() error {
	return s.conn.Close()
}
