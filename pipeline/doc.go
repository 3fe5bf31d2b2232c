// Package pipeline assembles stage chains and drives them at a fixed rate.
//
// The assembler folds an ordered list of stage specs over a source producer,
// wiring each stage to the previous one and optionally attaching a monitor
// emitter per stage index. The scheduler ticks the assembled chain at the
// configured sample period and forwards accepted values to the sink, applying
// an output-suppression policy so the actuator is not chattered by
// floating-point noise.
package pipeline
