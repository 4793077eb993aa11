package bonds

// Samples is a fixed-capacity FIFO of bond durations. Pushing onto a full
// buffer evicts the oldest sample.
type Samples struct {
	buf  []float64
	head int
	n    int
	sum  float64
}

func NewSamples(capacity int) *Samples {
	if capacity < 1 {
		capacity = 1
	}
	return &Samples{buf: make([]float64, capacity)}
}

func (s *Samples) Push(v float64) {
	if s.n == len(s.buf) {
		s.sum -= s.buf[s.head]
		s.buf[s.head] = v
		s.head = (s.head + 1) % len(s.buf)
	} else {
		s.buf[(s.head+s.n)%len(s.buf)] = v
		s.n++
	}
	s.sum += v
}

func (s *Samples) Len() int { return s.n }

func (s *Samples) Cap() int { return len(s.buf) }

// Mean is the arithmetic mean, 0 when empty. The running sum is recomputed
// from the buffer so long runs do not accumulate drift.
func (s *Samples) Mean() float64 {
	if s.n == 0 {
		return 0
	}
	s.sum = 0
	for i := 0; i < s.n; i++ {
		s.sum += s.buf[(s.head+i)%len(s.buf)]
	}
	return s.sum / float64(s.n)
}

// Values returns the samples oldest first.
func (s *Samples) Values() []float64 {
	out := make([]float64, s.n)
	for i := range out {
		out[i] = s.buf[(s.head+i)%len(s.buf)]
	}
	return out
}

func (s *Samples) Reset() {
	s.head, s.n, s.sum = 0, 0, 0
}
