package monitor

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/c360/thermoflow/component"
	"github.com/c360/thermoflow/errors"
	"github.com/c360/thermoflow/stage"
)

// Hub aggregates monitor messages from all stages and broadcasts each to
// every registered subscriber. Emit never blocks the control loop: the queue
// is unbounded, so a burst of messages grows memory instead of stalling the
// scheduler. The hub goroutine is the queue's only consumer.
type Hub struct {
	name   string
	logger *slog.Logger

	queue   []Message
	qmu     sync.Mutex
	qcond   *sync.Cond
	closing bool

	// One lock serializes registration and broadcast. It is held across the
	// subscriber writes of a pass; a registered subscriber sees every
	// message from the next pass on.
	subscribers map[string]Subscriber
	subMu       sync.Mutex

	metrics *hubMetrics

	// Lifecycle management
	done        chan struct{}
	running     bool
	startTime   time.Time
	mu          sync.RWMutex
	lifecycleMu sync.Mutex
}

// NewHub creates a hub.
func NewHub(deps component.Dependencies) *Hub {
	h := &Hub{
		name:        "monitor-hub",
		logger:      deps.GetLoggerWithComponent("monitor-hub"),
		subscribers: make(map[string]Subscriber),
		metrics:     newHubMetrics(deps.MetricsRegistry),
		done:        make(chan struct{}),
	}
	h.qcond = sync.NewCond(&h.qmu)
	return h
}

// Meta returns component metadata
func (h *Hub) Meta() component.Metadata {
	return component.Metadata{
		Name:        h.name,
		Type:        "monitor",
		Description: "Broadcasts stage trace messages to connected observers",
		Version:     "1.0.0",
	}
}

// Health returns current health status
func (h *Hub) Health() component.HealthStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()

	status := component.HealthStatus{
		Healthy:   h.running,
		LastCheck: time.Now(),
	}
	if h.running {
		status.Uptime = time.Since(h.startTime)
	}
	return status
}

// Initialize prepares the hub. Nothing to acquire.
func (h *Hub) Initialize() error {
	return nil
}

// Start launches the broadcast goroutine.
func (h *Hub) Start(_ context.Context) error {
	h.lifecycleMu.Lock()
	defer h.lifecycleMu.Unlock()

	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return errors.WrapFatal(errors.ErrAlreadyStarted, "Hub", "Start", "check running state")
	}
	h.running = true
	h.startTime = time.Now()
	h.mu.Unlock()

	go h.run()
	h.logger.Info("monitor hub started")
	return nil
}

// Stop drains the queue and terminates the broadcast goroutine, then closes
// all subscribers.
func (h *Hub) Stop(timeout time.Duration) error {
	h.lifecycleMu.Lock()
	defer h.lifecycleMu.Unlock()

	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return nil
	}
	h.mu.Unlock()

	h.qmu.Lock()
	h.closing = true
	h.qcond.Broadcast()
	h.qmu.Unlock()

	select {
	case <-h.done:
	case <-time.After(timeout):
		return errors.WrapTransient(errors.ErrShuttingDown, "Hub", "Stop", "wait for broadcast loop")
	}

	h.subMu.Lock()
	for id, sub := range h.subscribers {
		_ = sub.Close()
		delete(h.subscribers, id)
	}
	h.subMu.Unlock()
	h.metrics.setSubscribers(0)

	h.mu.Lock()
	h.running = false
	h.mu.Unlock()

	h.logger.Info("monitor hub stopped")
	return nil
}

// Emit enqueues a message for broadcast. Never blocks.
func (h *Hub) Emit(msg Message) {
	h.qmu.Lock()
	if h.closing {
		h.qmu.Unlock()
		return
	}
	h.queue = append(h.queue, msg)
	h.qcond.Signal()
	h.qmu.Unlock()

	h.metrics.recordMessage()
}

// Register adds a subscriber. It becomes eligible for the very next
// broadcast pass.
func (h *Hub) Register(sub Subscriber) {
	h.subMu.Lock()
	h.subscribers[sub.ID()] = sub
	count := len(h.subscribers)
	h.subMu.Unlock()

	h.metrics.setSubscribers(count)
	h.logger.Debug("observer registered", "id", sub.ID(), "subscribers", count)
}

// SubscriberCount returns the current number of registered observers.
func (h *Hub) SubscriberCount() int {
	h.subMu.Lock()
	defer h.subMu.Unlock()
	return len(h.subscribers)
}

// EmitterFor returns a stage.Emitter tagged with the given chain index.
func (h *Hub) EmitterFor(index int) stage.Emitter {
	return &stageEmitter{hub: h, index: index}
}

func (h *Hub) run() {
	defer close(h.done)

	for {
		h.qmu.Lock()
		for len(h.queue) == 0 && !h.closing {
			h.qcond.Wait()
		}
		if len(h.queue) == 0 && h.closing {
			h.qmu.Unlock()
			return
		}
		msg := h.queue[0]
		h.queue = h.queue[1:]
		h.qmu.Unlock()

		h.broadcast(msg)
	}
}

// broadcast writes one message to every subscriber, removing those whose
// write fails in the same pass.
func (h *Hub) broadcast(msg Message) {
	line := msg.Line()

	h.subMu.Lock()
	for id, sub := range h.subscribers {
		if err := sub.WriteLine(line); err != nil {
			h.logger.Debug("dropping observer after failed write", "id", id, "error", err)
			_ = sub.Close()
			delete(h.subscribers, id)
			h.metrics.recordPruned()
		}
	}
	count := len(h.subscribers)
	h.subMu.Unlock()

	h.metrics.recordBroadcast()
	h.metrics.setSubscribers(count)
}

// stageEmitter feeds one stage's trace into the hub, tagged with the stage's
// chain index.
type stageEmitter struct {
	hub   *Hub
	index int
}

func (e *stageEmitter) State(kind string, snapshot any) {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		// Snapshots are plain structs of numbers; this does not happen.
		return
	}
	e.hub.Emit(Message{Index: e.index, Tag: kind, Payload: string(payload)})
}

func (e *stageEmitter) Output(value float64) {
	e.hub.Emit(Message{
		Index:   e.index,
		Tag:     OutputTag,
		Payload: strconv.FormatFloat(value, 'f', -1, 64),
	})
}
