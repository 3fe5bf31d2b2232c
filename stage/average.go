package stage

// Average maintains a ring buffer of the most recent window values and emits
// their arithmetic mean. While the window is still filling it averages over
// the samples seen so far. The mean is recomputed by full summation on every
// pull; with the small windows used here the cost is irrelevant next to the
// sample period.
type Average struct {
	up    *fused
	emit  Emitter
	n     int
	index int
	prev  []float64
	mean  float64
}

// NewAverage creates a moving-average stage over a window of n samples.
func NewAverage(up Producer, n int, emitter Emitter) *Average {
	return &Average{
		up:   newFused(up),
		emit: emitter,
		n:    n,
		prev: make([]float64, 0, n),
	}
}

func (s *Average) Kind() string { return KindAverage }

type averageState struct {
	N     int     `json:"n"`
	Index int     `json:"index"`
	Mean  float64 `json:"mean"`
}

func (s *Average) Snapshot() any {
	return averageState{N: s.n, Index: s.index, Mean: s.mean}
}

func (s *Average) Next() (float64, bool) {
	v, ok := s.up.Next()
	if !ok {
		return 0, false
	}

	if len(s.prev) < s.n {
		s.prev = append(s.prev, v)
	} else {
		s.prev[s.index] = v
		s.index = (s.index + 1) % s.n
	}

	var sum float64
	for _, p := range s.prev {
		sum += p
	}
	s.mean = sum / float64(len(s.prev))

	emit(s.emit, s, s.mean)
	return s.mean, true
}
