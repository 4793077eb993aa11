package bonds

// Ledger holds the open bond records and the rolling buffer of closed
// durations. A pair has at most one open record at a time.
type Ledger struct {
	open    map[PairKey]float64
	samples *Samples
}

func NewLedger(capacity int) *Ledger {
	return &Ledger{
		open:    make(map[PairKey]float64),
		samples: NewSamples(capacity),
	}
}

// Observe updates the record for key given whether the pair is within the
// attraction cutoff at time now. It opens a record on entry and closes it on
// exit, pushing the clamped duration. Returns true when the pair is bonded.
func (l *Ledger) Observe(key PairKey, within bool, now float64) bool {
	start, isOpen := l.open[key]
	switch {
	case within && !isOpen:
		l.open[key] = now
	case !within && isOpen:
		delete(l.open, key)
		d := now - start
		if d < 0 {
			d = 0
		}
		l.samples.Push(d)
	}
	return within
}

// IsOpen reports whether key has an open record.
func (l *Ledger) IsOpen(key PairKey) bool {
	_, ok := l.open[key]
	return ok
}

// Open is the raw number of open records.
func (l *Ledger) Open() int { return len(l.open) }

// Started returns the start time of an open record.
func (l *Ledger) Started(key PairKey) (float64, bool) {
	t, ok := l.open[key]
	return t, ok
}

// AverageDuration is the mean of the rolling duration buffer.
func (l *Ledger) AverageDuration() float64 { return l.samples.Mean() }

func (l *Ledger) Samples() *Samples { return l.samples }

// Keys returns a copy of the open keys, in no particular order.
func (l *Ledger) Keys() []PairKey {
	keys := make([]PairKey, 0, len(l.open))
	for k := range l.open {
		keys = append(keys, k)
	}
	return keys
}

// Reset drops all open records and samples.
func (l *Ledger) Reset() {
	l.open = make(map[PairKey]float64)
	l.samples.Reset()
}
