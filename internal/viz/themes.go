package viz

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/phasesim/internal/thermal"
)

// Theme defines the color scheme for the TUI. Each phase has its own color
// so the particle canvas and the phase label change tone with temperature.
type Theme struct {
	Name    string
	Solid   lipgloss.Color
	Liquid  lipgloss.Color
	Gas     lipgloss.Color
	Accent  lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Warning lipgloss.Color
}

var (
	ThemeGlacier = Theme{
		Name:    "glacier",
		Solid:   lipgloss.Color("#a8e6ff"),
		Liquid:  lipgloss.Color("#3a8dde"),
		Gas:     lipgloss.Color("#ff7a5c"),
		Accent:  lipgloss.Color("#00ffff"),
		Text:    lipgloss.Color("#e0f0ff"),
		Muted:   lipgloss.Color("#4f6f8f"),
		Warning: lipgloss.Color("#ffcc00"),
	}

	ThemeRetroGreen = Theme{
		Name:    "retro",
		Solid:   lipgloss.Color("#88ff88"),
		Liquid:  lipgloss.Color("#00cc00"),
		Gas:     lipgloss.Color("#ccff00"),
		Accent:  lipgloss.Color("#00ff00"),
		Text:    lipgloss.Color("#00ff00"),
		Muted:   lipgloss.Color("#005500"),
		Warning: lipgloss.Color("#ffff00"),
	}

	ThemeMinimal = Theme{
		Name:    "minimal",
		Solid:   lipgloss.Color("#ffffff"),
		Liquid:  lipgloss.Color("#cccccc"),
		Gas:     lipgloss.Color("#999999"),
		Accent:  lipgloss.Color("#0088ff"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#888888"),
		Warning: lipgloss.Color("#ffaa00"),
	}

	ThemeEmber = Theme{
		Name:    "ember",
		Solid:   lipgloss.Color("#feca57"),
		Liquid:  lipgloss.Color("#ff9f43"),
		Gas:     lipgloss.Color("#ff4757"),
		Accent:  lipgloss.Color("#ff9ff3"),
		Text:    lipgloss.Color("#fff5f5"),
		Muted:   lipgloss.Color("#8b6b8c"),
		Warning: lipgloss.Color("#ffc048"),
	}

	// All available themes; the first is the default.
	Themes = []Theme{
		ThemeGlacier,
		ThemeRetroGreen,
		ThemeMinimal,
		ThemeEmber,
	}
)

// GetTheme returns a theme by name, falling back to the default.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

// NextTheme returns the theme after name, wrapping around.
func NextTheme(name string) Theme {
	for i, t := range Themes {
		if t.Name == name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// PhaseColor is the theme color for a phase.
func (t Theme) PhaseColor(p thermal.Phase) lipgloss.Color {
	switch p {
	case thermal.Solid:
		return t.Solid
	case thermal.Gas:
		return t.Gas
	default:
		return t.Liquid
	}
}
