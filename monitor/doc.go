// Package monitor implements the observation side of thermoflow: stages emit
// trace messages into a hub, and the hub fans each message out to every
// connected observer.
//
// The hub owns an unbounded many-producer/single-consumer queue; stage
// emitters never block on it. A single hub goroutine drains the queue and,
// per message, holds the subscriber-set lock for the whole broadcast pass,
// writes included. A subscriber whose write fails is closed and removed in
// that same pass. There is no backlog: an observer that connects after a
// message was broadcast never sees it.
//
// Observers reach the hub through acceptors: a line-oriented TCP or unix
// socket listener, a WebSocket endpoint, and an optional NATS relay that
// republishes every line to a subject.
package monitor
