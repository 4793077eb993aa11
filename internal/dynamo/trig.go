package dynamo

import "math"

// HalfBondAngle is half of the H-O-H angle of a water molecule.
const HalfBondAngle = 104.5 / 2 * math.Pi / 180

// TrigTable is a sin/cos lookup with linear interpolation. Renderers call it
// once per hydrogen per frame, so it trades a little accuracy for speed.
type TrigTable struct {
	sin []float64
	cos []float64
	n   int
}

// DefaultTrigTable has 4096 entries (~0.0015 rad resolution).
var DefaultTrigTable = NewTrigTable(4096)

func NewTrigTable(n int) *TrigTable {
	t := &TrigTable{
		sin: make([]float64, n),
		cos: make([]float64, n),
		n:   n,
	}
	for i := 0; i < n; i++ {
		angle := float64(i) * 2 * math.Pi / float64(n)
		t.sin[i] = math.Sin(angle)
		t.cos[i] = math.Cos(angle)
	}
	return t
}

// SinCos returns interpolated sin and cos of x.
func (t *TrigTable) SinCos(x float64) (sin, cos float64) {
	x = math.Mod(x, 2*math.Pi)
	if x < 0 {
		x += 2 * math.Pi
	}

	idx := x * float64(t.n) / (2 * math.Pi)
	i := int(idx)
	frac := idx - float64(i)

	i0 := i % t.n
	i1 := (i + 1) % t.n

	sin = t.sin[i0]*(1-frac) + t.sin[i1]*frac
	cos = t.cos[i0]*(1-frac) + t.cos[i1]*frac
	return
}

// FastSinCos uses the default table.
func FastSinCos(x float64) (float64, float64) {
	return DefaultTrigTable.SinCos(x)
}

// HydrogenOffsets returns the offsets of the two hydrogens of a molecule
// pointing along angle, each at distance length from the oxygen.
func HydrogenOffsets(angle, length float64) (x1, y1, x2, y2 float64) {
	s1, c1 := FastSinCos(angle - HalfBondAngle)
	s2, c2 := FastSinCos(angle + HalfBondAngle)
	return c1 * length, s1 * length, c2 * length, s2 * length
}
