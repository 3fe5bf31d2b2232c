package stage

import "math"

// DampenedOscillator treats each upstream value as a moving target and
// integrates a point mass toward it with a semi-implicit velocity-Verlet
// step: new acceleration from current spring and damping forces, position
// from the previous velocity and acceleration, then velocity from the
// average of old and new acceleration solved implicitly for the damping
// contribution.
//
// The damping coefficient is always forced to critical damping,
// c = 2*sqrt(k*m), at construction. Any externally supplied damping value is
// ignored; the stage is unconditionally critically damped.
type DampenedOscillator struct {
	up   *fused
	emit Emitter

	m, k, dt float64
	c        float64
	target   float64
	pos      float64
	vel      float64
	acc      float64
}

// NewDampenedOscillator creates a critically damped oscillator stage.
// Initial position and target are 100.0, velocity and acceleration zero.
func NewDampenedOscillator(up Producer, mass, spring, dt float64, emitter Emitter) *DampenedOscillator {
	return &DampenedOscillator{
		up:     newFused(up),
		emit:   emitter,
		m:      mass,
		k:      spring,
		dt:     dt,
		c:      2 * math.Sqrt(spring*mass),
		target: 100.0,
		pos:    100.0,
	}
}

func (s *DampenedOscillator) Kind() string { return KindDampenedOscillator }

type oscillatorState struct {
	M      float64 `json:"m"`
	K      float64 `json:"k"`
	DT     float64 `json:"dt"`
	C      float64 `json:"c"`
	Target float64 `json:"target"`
	Pos    float64 `json:"pos"`
	Vel    float64 `json:"vel"`
	Acc    float64 `json:"acc"`
}

func (s *DampenedOscillator) Snapshot() any {
	return oscillatorState{
		M: s.m, K: s.k, DT: s.dt, C: s.c,
		Target: s.target, Pos: s.pos, Vel: s.vel, Acc: s.acc,
	}
}

func (s *DampenedOscillator) Next() (float64, bool) {
	v, ok := s.up.Next()
	if !ok {
		return 0, false
	}
	s.target = v

	acc := -s.k*(s.pos-s.target) - s.c*s.vel
	newPos := s.pos + s.dt*s.vel + 0.5*s.dt*s.dt*s.acc
	fac := s.dt / (2 * s.m)
	newVel := (s.vel*(1-s.c*fac) + fac*(s.acc-acc)) / (1 + s.c*fac)

	s.acc = acc
	s.vel = newVel
	s.pos = newPos

	emit(s.emit, s, newPos)
	return newPos, true
}
