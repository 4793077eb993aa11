package viz

import (
	"fmt"
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/phasesim/internal/config"
	"github.com/san-kum/phasesim/internal/sim"
)

// sandbox is the menu entry that starts without a schedule.
const sandbox = "sandbox"

var presetInfo = map[string]string{
	sandbox:        "drive it by hand",
	"ice":          "deep freeze and settle",
	"melt":         "ice warming to water",
	"boil":         "water ramped past boiling",
	"steam":        "hot gas held steady",
	"flash-freeze": "steam frozen in an instant",
	"heat-ramp":    "constant power through both plateaus",
}

var (
	menuTitle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	menuSub      = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	menuCursor   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	menuSelected = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	menuDesc     = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	menuIdle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	menuIdleDesc = lipgloss.NewStyle().Foreground(lipgloss.Color("#444455"))
	menuKey      = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
)

const (
	stateMenu = iota
	stateConfig
	stateSim
)

// menuParams are the engine settings editable before a session starts.
var menuParams = []string{"particles", "seed", "radius", "start"}

type model struct {
	state, cursor int
	presets       []string
	selected      string
	params        map[string]float64
	paramCursor   int
	editing       bool
	editBuf       string
	err           error
	log           *slog.Logger
	base          *config.Config
	liveModel     Model
}

// NewInteractiveApp builds the preset picker. base supplies defaults for the
// sandbox entry; log receives engine output and should not write to the
// terminal the TUI draws on.
func NewInteractiveApp(base *config.Config, log *slog.Logger) *model {
	if base == nil {
		base = config.DefaultConfig()
	}
	if log == nil {
		log = slog.Default()
	}
	return &model{
		state:   stateMenu,
		presets: append([]string{sandbox}, config.ListPresets()...),
		params:  map[string]float64{},
		log:     log,
		base:    base,
	}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		if m.state == stateSim {
			newLive, cmd := m.liveModel.Update(msg)
			m.liveModel = newLive.(Model)
			return m, cmd
		}
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateConfig:
		return m.configKey(msg)
	case stateSim:
		newLive, cmd := m.liveModel.Update(msg)
		m.liveModel = newLive.(Model)
		return m, cmd
	}
	return m, nil
}

func (m model) menuKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.selected = m.presets[m.cursor]
		m.state, m.paramCursor, m.err = stateConfig, 0, nil
		m.loadParams()
	}
	return m, nil
}

func (m model) configKey(msg tea.KeyMsg) (model, tea.Cmd) {
	if m.editing {
		switch msg.String() {
		case "enter":
			var val float64
			if _, err := fmt.Sscanf(m.editBuf, "%f", &val); err == nil {
				m.params[menuParams[m.paramCursor]] = val
			}
			m.editing, m.editBuf = false, ""
		case "esc":
			m.editing, m.editBuf = false, ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if len(msg.String()) == 1 {
				c := msg.String()[0]
				if (c >= '0' && c <= '9') || c == '.' || c == '-' {
					m.editBuf += string(c)
				}
			}
		}
		return m, nil
	}
	switch msg.String() {
	case "q", "esc":
		m.state = stateMenu
	case "up", "k":
		if m.paramCursor > 0 {
			m.paramCursor--
		}
	case "down", "j":
		if m.paramCursor < len(menuParams)-1 {
			m.paramCursor++
		}
	case "enter", " ":
		m.editing, m.editBuf = true, fmt.Sprintf("%g", m.params[menuParams[m.paramCursor]])
	case "s":
		cmd, err := m.start()
		if err != nil {
			m.err = err
			return m, nil
		}
		return m, cmd
	case "left", "h":
		m.params[menuParams[m.paramCursor]] -= 1
	case "right", "l":
		m.params[menuParams[m.paramCursor]] += 1
	}
	return m, nil
}

// preset returns a fresh config for the selection.
func (m *model) preset() *config.Config {
	if c := config.GetPreset(m.selected); c != nil {
		return c
	}
	c := *m.base
	return &c
}

func (m *model) loadParams() {
	c := m.preset()
	m.params["particles"] = float64(c.Engine.Particles)
	m.params["seed"] = float64(c.Engine.Seed)
	m.params["radius"] = c.Engine.Radius
	m.params["start"] = c.Engine.InitialTemperature
	if m.selected != sandbox {
		if exp, err := c.Experiment(); err == nil {
			m.params["start"] = exp.Schedule.Start
		}
	}
}

func (m *model) start() (tea.Cmd, error) {
	c := m.preset()
	c.Engine.Particles = int(m.params["particles"])
	c.Engine.Seed = int64(m.params["seed"])
	c.Engine.Radius = m.params["radius"]
	c.Engine.InitialTemperature = m.params["start"]

	opts := Options{Heat: c.Heat, Dt: c.Dt}
	if m.selected != sandbox {
		exp, err := c.Experiment()
		if err != nil {
			return nil, err
		}
		exp.Schedule.Start = m.params["start"]
		opts.Schedule = &exp.Schedule
	}

	engine, err := sim.New(c.Engine, sim.WithLogger(m.log))
	if err != nil {
		return nil, err
	}
	m.liveModel = NewModel(engine, opts)
	m.state = stateSim
	return m.liveModel.Init(), nil
}

func (m model) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateConfig:
		return m.viewConfig()
	case stateSim:
		return m.liveModel.View()
	}
	return ""
}

func hints(pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString(menuKey.Render(pairs[i]) + menuIdle.Render(" "+pairs[i+1]+"  "))
	}
	return b.String()
}

func (m model) viewMenu() string {
	var b strings.Builder
	b.WriteString("\n\n    " + menuTitle.Render("PHASESIM") + "\n    " + menuSub.Render("thermal molecule simulation") + "\n    " + menuSub.Render("─────────────────────────") + "\n\n")
	for i, name := range m.presets {
		desc := presetInfo[name]
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", menuCursor.Render("▸"), menuSelected.Render(fmt.Sprintf("%-14s", name)), menuDesc.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", menuIdle.Render(fmt.Sprintf("  %-14s", name)), menuIdleDesc.Render(desc)))
		}
	}
	b.WriteString("\n    " + hints("j/k", "navigate", "enter", "select", "q", "quit") + "\n")
	return b.String()
}

func (m model) viewConfig() string {
	var b strings.Builder
	b.WriteString("\n\n    " + menuTitle.Render(strings.ToUpper(m.selected)) + "\n    " + menuSub.Render(presetInfo[m.selected]) + "\n    " + menuSub.Render("─────────────────────────") + "\n\n")
	for i, name := range menuParams {
		valStr := fmt.Sprintf("%8g", m.params[name])
		if m.editing && i == m.paramCursor {
			valStr = fmt.Sprintf("%8s", m.editBuf+"_")
		}
		if i == m.paramCursor {
			b.WriteString(fmt.Sprintf("    %s %s %s\n", menuCursor.Render("▸"), menuSelected.Render(fmt.Sprintf("%-10s", name)), menuDesc.Bold(true).Render(valStr)))
		} else {
			b.WriteString(fmt.Sprintf("    %s %s\n", menuIdle.Render(fmt.Sprintf("  %-10s", name)), menuIdleDesc.Render(valStr)))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + StatusRecording.UnsetBlink().Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + hints("j/k", "select", "h/l", "adjust", "s", "start", "esc", "back") + "\n")
	return b.String()
}

// RunInteractive starts the preset picker on the terminal.
func RunInteractive(base *config.Config, log *slog.Logger) error {
	_, err := tea.NewProgram(NewInteractiveApp(base, log), tea.WithAltScreen()).Run()
	return err
}
