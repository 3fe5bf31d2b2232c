// Package component defines the component model shared by thermoflow's
// sources, sinks and monitoring surfaces.
//
// The model is deliberately small. A component is anything that can describe
// itself (Meta) and report its health; long-running components additionally
// implement LifecycleComponent following the unified pattern:
//
//   - Initialize() error: setup and validation only, no I/O
//   - Start(ctx context.Context) error: begin work, context passed through
//   - Stop(timeout time.Duration) error: graceful shutdown with deadline
//
// The data-plane contracts are Source ("produce the next sample") and Sink
// ("accept the next value"). The pipeline is indifferent to what sits behind
// them: a sysfs thermal zone, an external process, a PWM line.
//
// The Registry maps selector schemes (the part of an input/output descriptor
// before the first colon, e.g. "file" in "file:/sys/.../temp") to factories,
// so the set of available sources and sinks is extended by registering a
// factory, never by editing the assembler.
package component
