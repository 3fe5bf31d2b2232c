package stage

import (
	"fmt"

	"github.com/c360/thermoflow/errors"
)

// Stage kinds. The kind string doubles as the tag on the monitoring wire.
const (
	KindIdentity           = "Identity"
	KindAverage            = "Average"
	KindPID                = "PID"
	KindDampenedOscillator = "DampenedOscillator"
	KindClip               = "Clip"
	KindAtLeast            = "AtLeast"
	KindSupersample        = "Supersample"
	KindSubsample          = "Subsample"
)

// Spec describes one stage as a tagged union: Kind selects the transform and
// the relevant parameter fields. Specs are immutable once the pipeline is
// assembled. Fields not used by a kind are ignored by Build but rejected by
// Validate only when the used ones are invalid.
type Spec struct {
	Kind string `yaml:"kind"`

	// Average, Supersample, Subsample
	N int `yaml:"n,omitempty"`

	// Clip
	Min float64 `yaml:"min,omitempty"`
	Max float64 `yaml:"max,omitempty"`

	// AtLeast
	Threshold float64 `yaml:"threshold,omitempty"`

	// PID
	KP       float64 `yaml:"kp,omitempty"`
	KI       float64 `yaml:"ki,omitempty"`
	KD       float64 `yaml:"kd,omitempty"`
	PLimit   float64 `yaml:"p_limit,omitempty"`
	ILimit   float64 `yaml:"i_limit,omitempty"`
	DLimit   float64 `yaml:"d_limit,omitempty"`
	Setpoint float64 `yaml:"setpoint,omitempty"`
	Offset   int64   `yaml:"offset,omitempty"`

	// DampenedOscillator
	Mass   float64 `yaml:"mass,omitempty"`
	Spring float64 `yaml:"spring,omitempty"`
	DT     float64 `yaml:"dt,omitempty"`
}

// Validate checks the parameters a Spec's kind actually uses. Invalid specs
// are configuration errors and abort assembly.
func (s Spec) Validate() error {
	switch s.Kind {
	case KindIdentity:
		return nil

	case KindAverage:
		if s.N < 1 {
			return errors.WrapInvalid(
				fmt.Errorf("average window must be at least 1, got %d", s.N),
				"Spec", "Validate", "window check")
		}
		return nil

	case KindPID:
		if s.PLimit < 0 || s.ILimit < 0 || s.DLimit < 0 {
			return errors.WrapInvalid(
				fmt.Errorf("pid term limits must be non-negative, got p=%v i=%v d=%v", s.PLimit, s.ILimit, s.DLimit),
				"Spec", "Validate", "limit check")
		}
		if s.Offset < 0 {
			return errors.WrapInvalid(
				fmt.Errorf("pid offset must be non-negative, got %d", s.Offset),
				"Spec", "Validate", "offset check")
		}
		return nil

	case KindDampenedOscillator:
		if s.Mass <= 0 || s.Spring <= 0 || s.DT <= 0 {
			return errors.WrapInvalid(
				fmt.Errorf("oscillator mass, spring and dt must be positive, got m=%v k=%v dt=%v", s.Mass, s.Spring, s.DT),
				"Spec", "Validate", "parameter check")
		}
		return nil

	case KindClip:
		if s.Min > s.Max {
			return errors.WrapInvalid(
				fmt.Errorf("clip range inverted: min %v > max %v", s.Min, s.Max),
				"Spec", "Validate", "range check")
		}
		return nil

	case KindAtLeast:
		return nil

	case KindSupersample:
		if s.N < 1 {
			return errors.WrapInvalid(
				fmt.Errorf("supersample repeat count must be at least 1, got %d", s.N),
				"Spec", "Validate", "count check")
		}
		return nil

	case KindSubsample:
		if s.N < 0 {
			return errors.WrapInvalid(
				fmt.Errorf("subsample discard count must be non-negative, got %d", s.N),
				"Spec", "Validate", "count check")
		}
		return nil

	default:
		return errors.WrapInvalid(
			fmt.Errorf("%w: %q", errors.ErrUnknownStage, s.Kind),
			"Spec", "Validate", "kind check")
	}
}

// Build constructs the stage described by the spec on top of the given
// upstream. The emitter may be nil for an unmonitored stage. Build validates
// the spec first; the kind switch is exhaustive over the known kinds.
func (s Spec) Build(up Producer, emitter Emitter) (Stage, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	switch s.Kind {
	case KindIdentity:
		return NewIdentity(up, emitter), nil
	case KindAverage:
		return NewAverage(up, s.N, emitter), nil
	case KindPID:
		return NewPID(up, s.KP, s.KI, s.KD, s.PLimit, s.ILimit, s.DLimit, s.Setpoint, s.Offset, emitter), nil
	case KindDampenedOscillator:
		return NewDampenedOscillator(up, s.Mass, s.Spring, s.DT, emitter), nil
	case KindClip:
		return NewClip(up, s.Min, s.Max, emitter), nil
	case KindAtLeast:
		return NewAtLeast(up, s.Threshold, emitter), nil
	case KindSupersample:
		return NewSupersample(up, s.N, emitter), nil
	case KindSubsample:
		return NewSubsample(up, s.N, emitter), nil
	default:
		// Unreachable: Validate rejects unknown kinds.
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: %q", errors.ErrUnknownStage, s.Kind),
			"Spec", "Build", "kind dispatch")
	}
}
