package stage

// Producer yields one value per pull. The second return is false once the
// sequence is exhausted.
type Producer interface {
	Next() (float64, bool)
}

// Stage is a transform over an upstream Producer. Kind identifies the
// transform on the monitoring wire; Snapshot returns a JSON-serializable view
// of the stage's mutable state after the latest pull.
type Stage interface {
	Producer
	Kind() string
	Snapshot() any
}

// Emitter receives a stage's per-tick trace. Implementations carry the stage's
// chain index; a nil Emitter means the stage is unmonitored. State is called
// with the stage kind and snapshot, Output with the value pushed downstream,
// in that order, once per produced value.
type Emitter interface {
	State(kind string, snapshot any)
	Output(value float64)
}

// fused wraps an upstream so that after the first exhausted pull no further
// pull ever reaches it.
type fused struct {
	up   Producer
	done bool
}

func newFused(up Producer) *fused {
	return &fused{up: up}
}

func (f *fused) Next() (float64, bool) {
	if f.done {
		return 0, false
	}
	v, ok := f.up.Next()
	if !ok {
		f.done = true
		return 0, false
	}
	return v, true
}

// emit reports a produced value through the optional emitter.
func emit(e Emitter, s Stage, value float64) {
	if e == nil {
		return
	}
	e.State(s.Kind(), s.Snapshot())
	e.Output(value)
}

// Identity reproduces its upstream unchanged. Used as a no-op placeholder and
// as a composition base.
type Identity struct {
	up   *fused
	emit Emitter
}

// NewIdentity creates a passthrough stage.
func NewIdentity(up Producer, emitter Emitter) *Identity {
	return &Identity{up: newFused(up), emit: emitter}
}

func (s *Identity) Kind() string { return KindIdentity }

func (s *Identity) Snapshot() any { return struct{}{} }

func (s *Identity) Next() (float64, bool) {
	v, ok := s.up.Next()
	if !ok {
		return 0, false
	}
	emit(s.emit, s, v)
	return v, true
}
