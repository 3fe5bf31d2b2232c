package stage

// Clip clamps values to [min, max]. Comparison happens in a fixed-point
// integer domain (value times 1000, truncated) to sidestep float comparison
// pitfalls near the boundaries; the clamped integer is converted back by
// dividing by 1000.
type Clip struct {
	up   *fused
	emit Emitter
	min  int64
	max  int64
}

// NewClip creates a clamping stage for the inclusive range [min, max].
func NewClip(up Producer, min, max float64, emitter Emitter) *Clip {
	return &Clip{
		up:   newFused(up),
		emit: emitter,
		min:  int64(min * 1000),
		max:  int64(max * 1000),
	}
}

func (s *Clip) Kind() string { return KindClip }

type clipState struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

func (s *Clip) Snapshot() any {
	return clipState{Min: float64(s.min) / 1000, Max: float64(s.max) / 1000}
}

func (s *Clip) Next() (float64, bool) {
	v, ok := s.up.Next()
	if !ok {
		return 0, false
	}

	scaled := int64(v * 1000)
	if scaled > s.max {
		scaled = s.max
	}
	if scaled < s.min {
		scaled = s.min
	}
	out := float64(scaled) / 1000

	emit(s.emit, s, out)
	return out, true
}

// AtLeast forces any value below the threshold to exactly zero and passes
// everything else through unchanged. Same fixed-point comparison as Clip.
type AtLeast struct {
	up        *fused
	emit      Emitter
	threshold int64
}

// NewAtLeast creates a threshold stage.
func NewAtLeast(up Producer, threshold float64, emitter Emitter) *AtLeast {
	return &AtLeast{
		up:        newFused(up),
		emit:      emitter,
		threshold: int64(threshold * 1000),
	}
}

func (s *AtLeast) Kind() string { return KindAtLeast }

type atLeastState struct {
	Threshold float64 `json:"threshold"`
}

func (s *AtLeast) Snapshot() any {
	return atLeastState{Threshold: float64(s.threshold) / 1000}
}

func (s *AtLeast) Next() (float64, bool) {
	v, ok := s.up.Next()
	if !ok {
		return 0, false
	}

	out := v
	if int64(v*1000) < s.threshold {
		out = 0
	}

	emit(s.emit, s, out)
	return out, true
}
