package monitor

import (
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/c360/thermoflow/errors"
)

// Subscriber is one observer attached to the hub. WriteLine delivers a
// single wire line; the first failed write removes the subscriber from the
// hub's set.
type Subscriber interface {
	ID() string
	WriteLine(line string) error
	Close() error
}

const writeTimeout = 5 * time.Second

// connSubscriber adapts a byte-stream connection (TCP or unix socket) to the
// Subscriber interface. Lines are newline-terminated UTF-8.
type connSubscriber struct {
	id   string
	conn net.Conn
}

// NewConnSubscriber wraps an accepted connection.
func NewConnSubscriber(conn net.Conn) Subscriber {
	return &connSubscriber{
		id:   uuid.NewString(),
		conn: conn,
	}
}

func (s *connSubscriber) ID() string {
	return s.id
}

func (s *connSubscriber) WriteLine(line string) error {
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return errors.WrapTransient(err, "connSubscriber", "WriteLine", "set deadline")
	}
	if _, err := s.conn.Write([]byte(line + "\n")); err != nil {
		return errors.WrapTransient(err, "connSubscriber", "WriteLine", "write line")
	}
	return nil
}

func (s *connSubscriber) Close() error {
	return s.conn.Close()
}

// chanSubscriber delivers lines to a Go channel. Used by in-process
// observers and tests. A full channel counts as a failed write so a stalled
// consumer is pruned like a stalled socket.
type chanSubscriber struct {
	id    string
	lines chan string

	mu     sync.Mutex
	closed bool
}

// NewChanSubscriber creates an in-process subscriber with the given buffer.
func NewChanSubscriber(buffer int) (Subscriber, <-chan string) {
	s := &chanSubscriber{
		id:    uuid.NewString(),
		lines: make(chan string, buffer),
	}
	return s, s.lines
}

func (s *chanSubscriber) ID() string {
	return s.id
}

func (s *chanSubscriber) WriteLine(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errors.WrapTransient(errors.ErrConnectionLost, "chanSubscriber", "WriteLine", "closed check")
	}
	select {
	case s.lines <- line:
		return nil
	default:
		return errors.WrapTransient(errors.ErrConnectionLost, "chanSubscriber", "WriteLine", "consumer stalled")
	}
}

func (s *chanSubscriber) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.closed = true
		close(s.lines)
	}
	return nil
}
