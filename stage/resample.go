package stage

// Supersample repeats each upstream value n times before pulling a new one,
// slowing the effective upstream rate by a factor of n relative to the
// downstream.
type Supersample struct {
	up   *fused
	emit Emitter

	n     int
	count int
	last  float64
	have  bool
}

// NewSupersample creates a repeating stage with repeat budget n.
func NewSupersample(up Producer, n int, emitter Emitter) *Supersample {
	return &Supersample{
		up:    newFused(up),
		emit:  emitter,
		n:     n,
		count: 1,
	}
}

func (s *Supersample) Kind() string { return KindSupersample }

type supersampleState struct {
	N     int     `json:"n"`
	Count int     `json:"count"`
	Last  float64 `json:"last"`
}

func (s *Supersample) Snapshot() any {
	return supersampleState{N: s.n, Count: s.count, Last: s.last}
}

func (s *Supersample) Next() (float64, bool) {
	if s.have && s.count < s.n {
		s.count++
		emit(s.emit, s, s.last)
		return s.last, true
	}

	v, ok := s.up.Next()
	if !ok {
		return 0, false
	}
	s.last = v
	s.have = true
	s.count = 1

	emit(s.emit, s, v)
	return v, true
}

// Subsample discards n upstream values on every pull and returns the one
// after, decimating the upstream rate by a factor of n+1. The discarded
// pulls still drive upstream computation.
type Subsample struct {
	up   *fused
	emit Emitter
	n    int
}

// NewSubsample creates a decimating stage that drops n values per output.
func NewSubsample(up Producer, n int, emitter Emitter) *Subsample {
	return &Subsample{up: newFused(up), emit: emitter, n: n}
}

func (s *Subsample) Kind() string { return KindSubsample }

type subsampleState struct {
	N int `json:"n"`
}

func (s *Subsample) Snapshot() any {
	return subsampleState{N: s.n}
}

func (s *Subsample) Next() (float64, bool) {
	for i := 0; i < s.n; i++ {
		s.up.Next()
	}
	v, ok := s.up.Next()
	if !ok {
		return 0, false
	}

	emit(s.emit, s, v)
	return v, true
}
