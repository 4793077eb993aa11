package viz

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"math"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/phasesim/internal/dynamo"
	"github.com/san-kum/phasesim/internal/experiment"
	"github.com/san-kum/phasesim/internal/heat"
	"github.com/san-kum/phasesim/internal/sim"
	"github.com/san-kum/phasesim/internal/thermal"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600
	defaultFPS      = 60

	// tempStep is the slider increment of the up/down keys.
	tempStep = 5.0
	// freezeTarget is where the slider lands after a flash freeze.
	freezeTarget = -20.0

	springFrequency = 4.0
	springDamping   = 1.0

	gifName = "phasesim.gif"
)

// phaseButtons are the slider targets of the 1/2/3 keys.
var phaseButtons = map[string]float64{
	"1": -20,
	"2": 25,
	"3": 130,
}

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(45)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// Options configures a live session.
type Options struct {
	// Schedule, when set, drives the temperature until a manual key takes
	// over.
	Schedule *experiment.Schedule
	Heat     heat.Model
	Theme    string
	// Dt is the simulated time per frame. Defaults to 1/60 s.
	Dt float64
}

// Model is the live simulation view. The engine is stepped once per tick;
// the slider temperature eases toward its target along a critically damped
// spring, the way a phase button animates.
type Model struct {
	engine *sim.Engine
	sched  *experiment.Schedule
	heat   heat.Model
	driver *experiment.Driver

	autopilot bool
	dt        float64
	target    float64
	temp      float64
	tempVel   float64
	spring    harmonica.Spring

	width, height int
	canvas        *Canvas
	particles     dynamo.Ensemble
	theme         Theme
	running       bool
	showAnchors   bool
	showBonds     bool
	showHelp      bool
	frame         int
	notice        string

	bondHistory []float64
	tempHistory []float64

	recording bool
	frames    []*image.Paletted
}

func NewModel(engine *sim.Engine, opts Options) Model {
	dt := opts.Dt
	if dt <= 0 {
		dt = 1.0 / defaultFPS
	}
	if opts.Heat == (heat.Model{}) {
		opts.Heat = heat.Water()
	}
	fps := int(math.Round(1 / dt))

	m := Model{
		engine:      engine,
		sched:       opts.Schedule,
		heat:        opts.Heat,
		dt:          dt,
		spring:      harmonica.NewSpring(harmonica.FPS(fps), springFrequency, springDamping),
		width:       width,
		height:      height,
		canvas:      NewCanvas(width, height),
		theme:       GetTheme(opts.Theme),
		running:     true,
		bondHistory: make([]float64, 0, historyCapacity),
		tempHistory: make([]float64, 0, historyCapacity),
	}
	m.restart()
	return m
}

// restart puts the session back at its start: fresh ensemble, schedule from
// the top, slider at rest.
func (m *Model) restart() {
	if m.sched != nil {
		m.driver = experiment.NewDriver(*m.sched, m.heat)
		m.autopilot = true
		m.engine.SetTemperature(m.sched.Start)
	}
	m.engine.Reset()
	m.temp = m.engine.Temperature()
	m.target = m.temp
	m.tempVel = 0
	m.frame = 0
	m.notice = ""
	m.bondHistory = m.bondHistory[:0]
	m.tempHistory = m.tempHistory[:0]
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/defaultFPS, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		key := msg.String()
		if v, ok := phaseButtons[key]; ok {
			m.setTarget(v)
			return m, nil
		}
		switch key {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case ".":
			if !m.running {
				m.step()
			}
		case "r":
			m.restart()
		case "f":
			m.freeze()
		case "up", "k":
			m.setTarget(m.target + tempStep)
		case "down", "j":
			m.setTarget(m.target - tempStep)
		case "enter":
			// Jump straight to the slider target without easing.
			m.temp, m.tempVel = m.target, 0
		case "a":
			if m.driver != nil && !m.driver.Done() {
				m.autopilot = !m.autopilot
			}
		case "l":
			m.showAnchors = !m.showAnchors
		case "b":
			m.showBonds = !m.showBonds
		case "t":
			m.theme = NextTheme(m.theme.Name)
		case "g":
			m.toggleRecording()
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case TickMsg:
		if m.running {
			m.step()
		}
		m.draw()
		if m.recording {
			m.captureFrame()
		}
		return m, tick()
	}
	return m, nil
}

// Target is the slider temperature the session eases toward.
func (m Model) Target() float64 { return m.target }

// Temperature is the temperature handed to the engine on the next step.
func (m Model) Temperature() float64 { return m.temp }

func (m Model) Autopilot() bool { return m.autopilot }

func (m Model) Notice() string { return m.notice }

func (m *Model) setTarget(t float64) {
	m.target = thermal.Clamp(t)
	m.autopilot = false
}

func (m *Model) freeze() {
	if !m.engine.Freeze() {
		m.notice = fmt.Sprintf("freeze needs %.0f °C or hotter", thermal.BoilPoint)
		return
	}
	m.notice = "flash freeze"
	m.autopilot = false
	m.target = freezeTarget
	m.temp, m.tempVel = freezeTarget, 0
}

func (m *Model) resize(w, h int) {
	cw := max(20, w-50)
	ch := max(8, h-4)
	if cw == m.width && ch == m.height {
		return
	}
	m.width, m.height = cw, ch
	m.canvas = NewCanvas(cw, ch)
}

// step advances the engine by one frame.
func (m *Model) step() {
	if m.autopilot && m.driver != nil && !m.driver.Done() {
		temp, freeze := m.driver.Next(m.dt)
		if freeze && !m.engine.Freeze() {
			m.notice = "scheduled freeze refused"
		}
		m.temp, m.tempVel, m.target = temp, 0, temp
	} else {
		m.temp, m.tempVel = m.spring.Update(m.temp, m.tempVel, m.target)
		if math.Abs(m.temp-m.target) < 1e-3 && math.Abs(m.tempVel) < 1e-3 {
			m.temp, m.tempVel = m.target, 0
		}
	}

	m.engine.Step(m.dt, m.temp)
	m.frame++

	m.bondHistory = pushHistory(m.bondHistory, float64(m.engine.ActiveBonds()))
	m.tempHistory = pushHistory(m.tempHistory, m.engine.Temperature())
}

func pushHistory(h []float64, v float64) []float64 {
	if len(h) >= historyCapacity {
		copy(h, h[1:])
		h = h[:len(h)-1]
	}
	return append(h, v)
}

// draw renders the container, particles and optional overlays onto the
// canvas.
func (m *Model) draw() {
	c := m.canvas
	c.Clear()
	box := m.engine.Container()
	vp := NewViewport(c, box)

	x0, y0 := vp.Project(box.MinX, box.MinY)
	x1, y1 := vp.Project(box.MaxX, box.MaxY)
	c.DrawRect(x0, y0, x1, y1)

	if m.showAnchors {
		for _, a := range m.engine.Anchors() {
			x, y := vp.Project(a.X, a.Y)
			c.Set(x, y)
		}
	}

	m.particles = m.engine.CopyParticles(m.particles)
	ps := m.particles

	if m.showBonds {
		for _, k := range m.engine.BondKeys() {
			if k.I >= len(ps) || k.J >= len(ps) {
				continue
			}
			ax, ay := vp.Project(ps[k.I].X, ps[k.I].Y)
			bx, by := vp.Project(ps[k.J].X, ps[k.J].Y)
			c.DrawLine(ax, ay, bx, by)
		}
	}

	radius := m.engine.Config().Radius
	r := vp.Length(radius)
	for _, p := range ps {
		x, y := vp.Project(p.X, p.Y)
		c.DrawCircle(x, y, r)
		dx1, dy1, dx2, dy2 := dynamo.HydrogenOffsets(p.Angle, radius)
		h1x, h1y := vp.Project(p.X+dx1, p.Y+dy1)
		h2x, h2y := vp.Project(p.X+dx2, p.Y+dy2)
		c.DrawLine(x, y, h1x, h1y)
		c.DrawLine(x, y, h2x, h2y)
	}
}

// View renders the TUI interface.
func (m Model) View() string {
	m.draw()
	phase := m.engine.Phase()
	canvasView := canvasStyle.Foreground(m.theme.PhaseColor(phase)).Render(m.canvas.String())

	label := func(name, value string) string {
		return MetricLabel.Render(name) + MetricValue.Render(value) + "\n"
	}

	var s strings.Builder
	s.WriteString(HeaderStyle.Render(GradientText("PHASESIM", m.theme.Accent, m.theme.Gas)) + "\n")

	status := StatusRunning.Render(AnimatedSpinner(m.frame) + " RUNNING")
	if !m.running {
		status = StatusPaused.Render("PAUSED")
	}
	if m.recording {
		status += " " + StatusRecording.Render("● REC")
	}
	s.WriteString(status + "\n\n")

	phaseStyle := lipgloss.NewStyle().Bold(true).Foreground(m.theme.PhaseColor(phase))
	s.WriteString(MetricLabel.Render("Phase") + phaseStyle.Render(strings.ToUpper(phase.String())) + "\n")
	s.WriteString(label("Temp", fmt.Sprintf("%.1f °C → %.1f °C", m.engine.Temperature(), m.target)))
	s.WriteString(label("Heat", fmt.Sprintf("%.1f J/g", m.heat.Heat(m.engine.Temperature()))))
	s.WriteString(label("Time", fmt.Sprintf("%.2fs", m.engine.Time())))
	s.WriteString(label("Bonds", fmt.Sprintf("%d active / %d open", m.engine.ActiveBonds(), m.engine.OpenBonds())))
	s.WriteString(label("Bond life", fmt.Sprintf("%.2fs", m.engine.AverageBondDuration())))
	s.WriteString(label("Lattice", fmt.Sprintf("%d / %d", m.engine.Assigned(), len(m.particles))))
	s.WriteString(MetricLabel.Render("Freeze") + ProgressBar(m.engine.Boost(), 20) + "\n")

	mode := "manual"
	if m.autopilot && m.driver != nil && m.sched != nil {
		mode = fmt.Sprintf("%s %d/%d", m.sched.Name, m.driver.Segment()+1, len(m.sched.Segments))
	}
	s.WriteString(label("Mode", mode))

	if len(m.bondHistory) > 1 {
		chart := asciigraph.Plot(m.bondHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Active bonds"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}
	s.WriteString(MetricLabel.Render("Temp trend") + SparklineChart(m.tempHistory, 28) + "\n")

	if m.notice != "" {
		s.WriteString("\n" + lipgloss.NewStyle().Foreground(m.theme.Warning).Render(m.notice) + "\n")
	}

	s.WriteString(helpStyle.Render(Separator(36) + "\nSP:Pause R:Reset F:Freeze Q:Quit\n↑↓:Temp 1/2/3:Ice/Water/Steam\nL:Lattice B:Bonds T:Theme ?:Help"))
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))

	if m.showHelp {
		return KeyHint.Render(helpText) + "\n\n" + mainView
	}
	return mainView
}

const helpText = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  .        - Single step when paused  ║
║  R        - Reset ensemble           ║
║  F        - Flash freeze (≥ 100 °C)  ║
║  Up/K     - Raise target by 5 °C     ║
║  Down/J   - Lower target by 5 °C     ║
║  1 2 3    - Ice / Water / Steam      ║
║  Enter    - Jump to target           ║
║  A        - Resume schedule          ║
║  L        - Toggle lattice anchors   ║
║  B        - Toggle bond lines        ║
║  G        - Toggle GIF recording     ║
║  T        - Cycle themes             ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝`

func (m *Model) toggleRecording() {
	if !m.recording {
		m.recording = true
		m.frames = make([]*image.Paletted, 0)
		return
	}
	if err := m.saveGIF(gifName); err != nil {
		m.notice = "gif: " + err.Error()
	} else if len(m.frames) > 0 {
		m.notice = fmt.Sprintf("saved %d frames to %s", len(m.frames), gifName)
	}
	m.recording = false
	m.frames = nil
}

// captureFrame rasterizes the braille canvas, one 4x4 block per dot.
func (m *Model) captureFrame() {
	const dot = 4
	pw, ph := m.canvas.Pixels()
	img := image.NewPaletted(image.Rect(0, 0, pw*dot, ph*dot), color.Palette{color.Black, color.White})
	for y := 0; y < ph; y++ {
		for x := 0; x < pw; x++ {
			if !m.canvas.Lit(x, y) {
				continue
			}
			for dy := 0; dy < dot; dy++ {
				for dx := 0; dx < dot; dx++ {
					img.SetColorIndex(x*dot+dx, y*dot+dy, 1)
				}
			}
		}
	}
	m.frames = append(m.frames, img)
}

func (m *Model) saveGIF(path string) error {
	if len(m.frames) == 0 {
		return nil
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range m.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, 2)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gif.EncodeAll(f, &anim)
}

// Run starts a live session on the terminal.
func Run(engine *sim.Engine, opts Options) error {
	_, err := tea.NewProgram(NewModel(engine, opts), tea.WithAltScreen()).Run()
	return err
}
