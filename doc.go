// Package thermoflow is a streaming control pipeline: it turns a
// periodically-sampled scalar sensor reading into a periodically-pushed scalar
// actuator command through a runtime-configurable chain of stream transforms,
// and broadcasts the internal state of every stage to any number of live
// observers.
//
// # Architecture
//
// The system is composed of small components wired together at startup:
//
//	┌──────────┐   ┌───────────────────────────────┐   ┌──────────┐
//	│  Source  │──▶│  Stage₀ → Stage₁ → … → Stageₙ │──▶│   Sink   │
//	│ (sensor) │   │        (pipeline chain)       │   │(actuator)│
//	└──────────┘   └───────────────┬───────────────┘   └──────────┘
//	                               │ trace lines
//	                               ▼
//	                     ┌───────────────────┐
//	                     │    Monitor Hub    │──▶ observers (TCP/unix,
//	                     └───────────────────┘     WebSocket, NATS relay)
//
// The scheduler drives the chain once per tick, forwarding the result to the
// sink unless the output-suppression policy filters it out. In parallel, every
// monitored stage emits trace messages into a single aggregation queue consumed
// by the hub, which fans each line out to all currently-connected observers.
//
// Layout:
//   - stage: the transform stages and their specs (tagged union)
//   - pipeline: assembly of a spec list into a chain, and the sampler loop
//   - monitor: hub, subscriber registry, TCP/unix and WebSocket acceptors,
//     optional NATS relay
//   - input, output: sensor sources and actuator sinks
//   - component: the slim component model (lifecycle, source/sink contracts,
//     selector registry)
//   - config: YAML configuration and the built-in default chain
//   - errors, metric: classified error handling and Prometheus metrics
package thermoflow
