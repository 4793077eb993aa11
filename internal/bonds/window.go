package bonds

// Window averages raw bond counts over a trailing span of simulated time.
type Window struct {
	span   float64
	times  []float64
	counts []int
}

func NewWindow(span float64) *Window {
	return &Window{span: span}
}

// Add records count at time now and evicts samples older than now-span.
func (w *Window) Add(now float64, count int) {
	w.times = append(w.times, now)
	w.counts = append(w.counts, count)

	cut := 0
	for cut < len(w.times) && w.times[cut] < now-w.span {
		cut++
	}
	if cut > 0 {
		w.times = append(w.times[:0], w.times[cut:]...)
		w.counts = append(w.counts[:0], w.counts[cut:]...)
	}
}

// Average is the mean count over the window, 0 when empty.
func (w *Window) Average() float64 {
	if len(w.counts) == 0 {
		return 0
	}
	sum := 0
	for _, c := range w.counts {
		sum += c
	}
	return float64(sum) / float64(len(w.counts))
}

func (w *Window) Len() int { return len(w.counts) }

func (w *Window) Clear() {
	w.times = w.times[:0]
	w.counts = w.counts[:0]
}
