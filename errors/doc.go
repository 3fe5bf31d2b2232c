// Package errors provides standardized error handling patterns for thermoflow
// components.
//
// # Overview
//
// The package implements a three-class error classification system: Transient
// (temporary), Invalid (bad input or configuration, non-retryable), and Fatal
// (unrecoverable, stop processing).
//
// In thermoflow the classes map directly onto the runtime's failure policy:
// configuration and acquisition problems are Invalid or Fatal and abort
// startup; a sink write failure is Fatal and terminates the sampler loop;
// per-subscriber delivery failures are handled locally by the monitor hub and
// never surface as classified errors at all.
//
// # Usage
//
// Wrap errors at component boundaries with the component and operation that
// produced them:
//
//	if err := cfg.Validate(); err != nil {
//	    return errors.WrapInvalid(err, "config", "Load", "validate pipeline spec")
//	}
//
// and branch on classification where the handling policy differs:
//
//	if errors.IsFatal(err) {
//	    return err // stop the sampler loop
//	}
package errors
