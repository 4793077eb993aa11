package dynamo

import "math"

// Particle is a single molecule. Fall is the gravity-only vertical rate and is
// integrated separately from VY so gravity and thermal motion damp independently.
type Particle struct {
	X, Y   float64
	VX, VY float64
	Fall   float64
	Angle  float64
	Spin   float64
}

// Speed returns the lateral (thermal) speed.
func (p Particle) Speed() float64 {
	return math.Hypot(p.VX, p.VY)
}

func (p Particle) IsValid() bool {
	for _, v := range [...]float64{p.X, p.Y, p.VX, p.VY, p.Fall, p.Angle, p.Spin} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Ensemble is the fixed-size ordered particle collection. Index is identity.
type Ensemble []Particle

func (e Ensemble) Clone() Ensemble {
	c := make(Ensemble, len(e))
	copy(c, e)
	return c
}

func (e Ensemble) IsValid() bool {
	for i := range e {
		if !e[i].IsValid() {
			return false
		}
	}
	return true
}

// MeanSpeed returns the average lateral speed, 0 for an empty ensemble.
func (e Ensemble) MeanSpeed() float64 {
	if len(e) == 0 {
		return 0
	}
	sum := 0.0
	for i := range e {
		sum += e[i].Speed()
	}
	return sum / float64(len(e))
}

// MaxDisplacement returns the largest per-particle position change between
// two snapshots of the same ensemble.
func (e Ensemble) MaxDisplacement(prev Ensemble) float64 {
	n := len(e)
	if len(prev) < n {
		n = len(prev)
	}
	maxD := 0.0
	for i := 0; i < n; i++ {
		d := math.Hypot(e[i].X-prev[i].X, e[i].Y-prev[i].Y)
		if d > maxD {
			maxD = d
		}
	}
	return maxD
}

// Rand is the random source used for initial placement and thermal jitter.
// *math/rand.Rand satisfies it.
type Rand interface {
	Float64() float64
}

// Uniform returns a value in [lo, hi).
func Uniform(r Rand, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

// WrapAngle maps an angle into (-pi, pi].
func WrapAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a <= 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}

// AngleDiff returns the signed shortest rotation from a to b.
func AngleDiff(a, b float64) float64 {
	return WrapAngle(b - a)
}
