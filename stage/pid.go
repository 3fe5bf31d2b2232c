package stage

import "math"

// pidController is a standard PID controller with per-term output limits.
// Each term is clamped symmetrically to its limit; the integral accumulates
// the already-scaled ki*error and is clamped in accumulated form, so a long
// excursion cannot wind it up past iLimit.
type pidController struct {
	kp, ki, kd             float64
	pLimit, iLimit, dLimit float64
	setpoint               float64

	integral float64
	prev     float64
	hasPrev  bool
}

// update feeds one measurement and returns the signed p, i, d terms.
func (c *pidController) update(measurement float64) (p, i, d float64) {
	err := c.setpoint - measurement

	p = clampAbs(c.kp*err, c.pLimit)

	c.integral = clampAbs(c.integral+c.ki*err, c.iLimit)
	i = c.integral

	// Derivative on measurement, not on error, so setpoint changes do not
	// kick the output. Zero until a previous measurement exists.
	if c.hasPrev {
		d = clampAbs(-c.kd*(measurement-c.prev), c.dLimit)
	}
	c.prev = measurement
	c.hasPrev = true
	return p, i, d
}

func clampAbs(v, limit float64) float64 {
	if v > limit {
		return limit
	}
	if v < -limit {
		return -limit
	}
	return v
}

// PID drives its output from a PID controller fed with the upstream values as
// measurements. The controller terms are rectified: a negative term
// contributes its magnitude, a non-negative term contributes zero. Only the
// "measurement above setpoint" direction ever raises the output. The
// rectified sum is truncated to an integer, clamped to [0,100] and added to a
// fixed integer offset. The asymmetry is deliberate; actuator tuning depends
// on this exact behavior.
type PID struct {
	up     *fused
	emit   Emitter
	ctrl   pidController
	offset int64

	lastP, lastI, lastD float64
}

// NewPID creates a PID stage. Limits bound each term symmetrically.
func NewPID(up Producer, kp, ki, kd, pLimit, iLimit, dLimit, setpoint float64, offset int64, emitter Emitter) *PID {
	return &PID{
		up:   newFused(up),
		emit: emitter,
		ctrl: pidController{
			kp: kp, ki: ki, kd: kd,
			pLimit: pLimit, iLimit: iLimit, dLimit: dLimit,
			setpoint: setpoint,
		},
		offset: offset,
	}
}

func (s *PID) Kind() string { return KindPID }

type pidState struct {
	P        float64 `json:"P"`
	I        float64 `json:"I"`
	D        float64 `json:"D"`
	Setpoint float64 `json:"setpoint"`
	Offset   int64   `json:"offset"`
}

func (s *PID) Snapshot() any {
	return pidState{
		P:        s.lastP,
		I:        s.lastI,
		D:        s.lastD,
		Setpoint: s.ctrl.setpoint,
		Offset:   s.offset,
	}
}

func (s *PID) Next() (float64, bool) {
	v, ok := s.up.Next()
	if !ok {
		return 0, false
	}

	p, i, d := s.ctrl.update(v)
	s.lastP, s.lastI, s.lastD = p, i, d

	out := float64(s.offset + rectifiedSum(p, i, d))
	emit(s.emit, s, out)
	return out, true
}

// rectifiedSum keeps the magnitude of each negative term, zeroes the rest,
// truncates the sum and clamps it to [0,100].
func rectifiedSum(p, i, d float64) int64 {
	var sum float64
	// Signbit rather than < 0 so negative zero follows the negative branch.
	if math.Signbit(p) {
		sum += -p
	}
	if math.Signbit(i) {
		sum += -i
	}
	if math.Signbit(d) {
		sum += -d
	}
	n := int64(sum)
	if n < 0 {
		n = 0
	}
	if n > 100 {
		n = 100
	}
	return n
}
