package sim

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"github.com/san-kum/phasesim/internal/bonds"
	"github.com/san-kum/phasesim/internal/dynamo"
	"github.com/san-kum/phasesim/internal/freeze"
	"github.com/san-kum/phasesim/internal/lattice"
	"github.com/san-kum/phasesim/internal/physics"
	"github.com/san-kum/phasesim/internal/thermal"
)

// Engine owns the ensemble, the bond ledger, the lattice and the freeze
// timer. It is single-writer: Step and the commands mutate, queries read.
// Callers that share an Engine across goroutines must serialize access.
type Engine struct {
	cfg    Config
	log    *slog.Logger
	rng    dynamo.Rand
	ownRng bool

	particles dynamo.Ensemble
	ledger    *bonds.Ledger
	window    *bonds.Window
	freeze    *freeze.Machine

	anchors    []lattice.Anchor
	assign     lattice.Assignment
	assignedAt float64

	box   lattice.Rect
	temp  float64
	time  float64
	steps int
	solid bool
	pairs physics.PairStats
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithRand replaces the seeded math/rand source. The engine draws initial
// placement and thermal jitter from it, so a deterministic source gives a
// reproducible trajectory.
func WithRand(r dynamo.Rand) Option {
	return func(e *Engine) {
		if r != nil {
			e.rng = r
			e.ownRng = false
		}
	}
}

// New validates cfg and builds an engine with a freshly seeded ensemble at
// cfg.InitialTemperature.
func New(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("sim config: %w", err)
	}

	e := &Engine{
		cfg:    cfg,
		log:    slog.Default(),
		rng:    rand.New(rand.NewSource(cfg.Seed)),
		ownRng: true,
		ledger: bonds.NewLedger(cfg.SampleCapacity),
		window: bonds.NewWindow(cfg.BondWindow),
		freeze: freeze.New(cfg.FreezeDuration),
		box:    lattice.Rect{MaxX: cfg.Width, MaxY: cfg.Height},
		temp:   thermal.Clamp(cfg.InitialTemperature),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.seed()
	return e, nil
}

func (e *Engine) Config() Config { return e.cfg }

// seed places a new ensemble uniformly inside the container with random
// headings at the current temperature's target speed, and returns every
// other piece of state to its initial value.
func (e *Engine) seed() {
	inner := e.inner()
	speed := e.cfg.Motion.BaseSpeed * thermal.SpeedMultiplier(e.temp)
	spin := e.cfg.Motion.BaseSpin * thermal.RotationMultiplier(e.temp)

	e.particles = make(dynamo.Ensemble, e.cfg.Particles)
	for i := range e.particles {
		p := &e.particles[i]
		p.X = dynamo.Uniform(e.rng, inner.MinX, inner.MaxX)
		p.Y = dynamo.Uniform(e.rng, inner.MinY, inner.MaxY)
		heading := dynamo.Uniform(e.rng, -math.Pi, math.Pi)
		p.VX = math.Cos(heading) * speed
		p.VY = math.Sin(heading) * speed
		p.Angle = dynamo.Uniform(e.rng, -math.Pi, math.Pi)
		p.Spin = dynamo.Uniform(e.rng, -spin, spin)
	}

	e.ledger.Reset()
	e.window.Clear()
	e.freeze.Reset()
	e.time = 0
	e.steps = 0
	e.pairs = physics.PairStats{}
	e.solid = e.temp <= thermal.MeltPoint
	e.rebuild()
}

// inner is the container inset by the particle radius: the region particle
// centers can occupy.
func (e *Engine) inner() lattice.Rect {
	r := e.cfg.Radius
	return lattice.Rect{
		MinX: e.box.MinX + r,
		MinY: e.box.MinY + r,
		MaxX: e.box.MaxX - r,
		MaxY: e.box.MaxY - r,
	}
}

// rebuild regenerates the lattice for the current regime. In the solid
// regime it keeps the lowest rows of the sparse grid that hold the whole
// ensemble, so the crystal packs against the floor, and recomputes the
// assignment. Otherwise it lays out the dense grid over the whole container
// for display and clears the assignment.
func (e *Engine) rebuild() {
	inner := e.inner()
	if !e.solid {
		e.anchors = lattice.Within(lattice.Build(e.box, e.cfg.LiquidSpacing), inner)
		e.assign = lattice.Unassigned(len(e.particles))
		e.log.Debug("lattice rebuilt", "regime", "fluid", "anchors", len(e.anchors))
		return
	}

	e.anchors = packFromFloor(lattice.Within(lattice.Build(e.box, e.cfg.SolidSpacing), inner), len(e.particles))
	e.assign = lattice.Assign(e.particles, e.anchors)
	e.assignedAt = e.time
	e.log.Debug("lattice rebuilt",
		"regime", "solid",
		"anchors", len(e.anchors),
		"assigned", e.assign.Taken,
	)
}

// packFromFloor keeps whole rows, lowest first, until at least n anchors are
// kept. anchors must be in row order, as lattice.Build returns them.
func packFromFloor(anchors []lattice.Anchor, n int) []lattice.Anchor {
	count := 0
	for i, a := range anchors {
		if count >= n && (i == 0 || a.Row != anchors[i-1].Row) {
			return anchors[:i]
		}
		count++
	}
	return anchors
}

// Step advances the simulation by dt seconds at tempC. dt is clamped to
// [0, MaxDt] and tempC to the supported range; neither is rejected.
func (e *Engine) Step(dt, tempC float64) {
	if math.IsNaN(dt) || dt < 0 {
		dt = 0
	}
	dt = math.Min(dt, e.cfg.MaxDt)
	e.temp = thermal.Clamp(tempC)
	e.time += dt
	e.steps++

	if e.freeze.Advance(dt) {
		e.log.Debug("freeze finished", "t", e.time)
	}
	boost := e.freeze.Boost()

	solid := e.temp <= thermal.MeltPoint || e.freeze.Active()
	if solid != e.solid {
		e.solid = solid
		e.log.Debug("regime changed",
			"solid", solid,
			"phase", thermal.PhaseOf(e.temp),
			"t", e.time,
		)
		e.rebuild()
	} else if solid && e.cfg.Relax.Rematch >= 0 && e.time-e.assignedAt >= e.cfg.Relax.Rematch {
		e.assign = lattice.Assign(e.particles, e.anchors)
		e.assignedAt = e.time
	}

	ramp := 0.0
	if solid {
		ramp = e.cfg.Relax.Ramp(e.temp, boost)
	}
	g := thermal.GravityProfile(e.temp, boost)
	gScale := e.cfg.Relax.GravityScale(ramp)

	for i := range e.particles {
		p := &e.particles[i]
		e.cfg.Motion.Thermalize(p, e.rng, e.temp, 1-ramp, dt)
		physics.Fall(p, g, gScale, dt)
	}

	e.pairs = e.cfg.Interaction.Apply(e.particles, e.ledger, e.time, dt, thermal.Coolness(e.temp), solid)

	if solid {
		e.cfg.Relax.Pull(e.particles, e.anchors, e.assign, ramp, dt)
	}
	for i := range e.particles {
		physics.Integrate(&e.particles[i], dt)
	}
	if solid {
		e.cfg.Relax.Overlap(e.particles)
	}
	for i := range e.particles {
		e.cfg.Motion.Contain(&e.particles[i], e.box, e.cfg.Radius, g.Friction, dt)
	}

	if solid {
		e.window.Clear()
	} else {
		e.window.Add(e.time, e.ledger.Open())
	}
}

// Advance steps at the current temperature.
func (e *Engine) Advance(dt float64) { e.Step(dt, e.temp) }

// Reset replaces the ensemble with a freshly seeded one at the current
// temperature. When the engine owns its random source it is reseeded, so a
// reset engine replays the same trajectory as a new one.
func (e *Engine) Reset() {
	if e.ownRng {
		e.rng = rand.New(rand.NewSource(e.cfg.Seed))
	}
	e.seed()
	e.log.Debug("ensemble reset", "particles", len(e.particles), "temperature", e.temp)
}

// Freeze starts the flash-freeze transition. It only fires at or above the
// boiling point and reports whether it did. Re-triggering while freezing
// restarts the timer and reapplies the impulse.
func (e *Engine) Freeze() bool {
	if e.temp < thermal.BoilPoint {
		return false
	}
	e.freeze.Trigger()
	for i := range e.particles {
		p := &e.particles[i]
		p.Fall += e.cfg.FreezeImpulse
		p.VX *= e.cfg.FreezeDamping
		p.VY *= e.cfg.FreezeDamping
		p.Spin *= e.cfg.FreezeDamping
	}
	e.solid = true
	e.rebuild()
	e.log.Debug("freeze triggered", "temperature", e.temp, "t", e.time)
	return true
}

// SetTemperature sets the temperature used by Advance without stepping.
func (e *Engine) SetTemperature(tempC float64) { e.temp = thermal.Clamp(tempC) }

// Resize changes the container and rebuilds the lattice. Particles outside
// the new container are pulled back in on the next step.
func (e *Engine) Resize(width, height float64) error {
	if width <= 2*e.cfg.Radius {
		return dynamo.BoundsError("width", width, "must exceed twice the radius")
	}
	if height <= 2*e.cfg.Radius {
		return dynamo.BoundsError("height", height, "must exceed twice the radius")
	}
	e.cfg.Width, e.cfg.Height = width, height
	e.box = lattice.Rect{MaxX: width, MaxY: height}
	e.rebuild()
	return nil
}

func (e *Engine) Temperature() float64 { return e.temp }
func (e *Engine) Time() float64        { return e.time }
func (e *Engine) Steps() int           { return e.steps }
func (e *Engine) Boost() float64       { return e.freeze.Boost() }
func (e *Engine) Freezing() bool       { return e.freeze.Active() }

// Solid reports whether the last step ran in the crystal regime.
func (e *Engine) Solid() bool { return e.solid }

func (e *Engine) Phase() thermal.Phase { return thermal.PhaseOf(e.temp) }

// Container is the simulation rectangle.
func (e *Engine) Container() lattice.Rect { return e.box }

// Particles returns a copy of the ensemble.
func (e *Engine) Particles() dynamo.Ensemble { return e.particles.Clone() }

// CopyParticles copies the ensemble into dst, growing it if needed, and
// returns the result. Use it with a Pool to avoid per-frame allocation.
func (e *Engine) CopyParticles(dst dynamo.Ensemble) dynamo.Ensemble {
	if cap(dst) < len(e.particles) {
		dst = make(dynamo.Ensemble, len(e.particles))
	}
	dst = dst[:len(e.particles)]
	copy(dst, e.particles)
	return dst
}

// Anchors returns a copy of the current lattice.
func (e *Engine) Anchors() []lattice.Anchor {
	out := make([]lattice.Anchor, len(e.anchors))
	copy(out, e.anchors)
	return out
}

// Assigned is the number of particles holding an exclusive anchor.
func (e *Engine) Assigned() int { return e.assign.Taken }

// AnchorOf returns the anchor index assigned to particle i, or -1.
func (e *Engine) AnchorOf(i int) int {
	if i < 0 || i >= len(e.assign.Anchor) {
		return -1
	}
	return e.assign.Anchor[i]
}

func (e *Engine) AverageBondDuration() float64 { return e.ledger.AverageDuration() }

// OpenBonds is the raw number of open bond records.
func (e *Engine) OpenBonds() int { return e.ledger.Open() }

// ActiveBonds is the raw open count in the solid regime and the rounded
// windowed average otherwise.
func (e *Engine) ActiveBonds() int {
	if e.solid {
		return e.ledger.Open()
	}
	return int(math.Round(e.window.Average()))
}

// BondKeys returns the currently bonded pairs.
func (e *Engine) BondKeys() []bonds.PairKey { return e.ledger.Keys() }

// Pairs reports the counters of the last interaction pass.
func (e *Engine) Pairs() physics.PairStats { return e.pairs }
