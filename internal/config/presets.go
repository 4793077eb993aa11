package config

import "sort"

// Presets pair a built-in schedule with engine settings suited to it.
var Presets = map[string]func() *Config{
	"ice": func() *Config {
		c := DefaultConfig()
		c.Schedule = "ice"
		return c
	},
	"melt": func() *Config {
		c := DefaultConfig()
		c.Schedule = "melt"
		return c
	},
	"boil": func() *Config {
		c := DefaultConfig()
		c.Schedule = "boil"
		c.RecordEvery = 3
		return c
	},
	"steam": func() *Config {
		c := DefaultConfig()
		c.Schedule = "steam"
		c.Engine.Particles = 60
		return c
	},
	"flash-freeze": func() *Config {
		c := DefaultConfig()
		c.Schedule = "flash-freeze"
		c.RecordEvery = 2
		return c
	},
	"heat-ramp": func() *Config {
		c := DefaultConfig()
		c.Schedule = "heat-ramp"
		c.Engine.Particles = 60
		return c
	},
}

// GetPreset returns a fresh copy of the named preset, or nil.
func GetPreset(name string) *Config {
	fn, ok := Presets[name]
	if !ok {
		return nil
	}
	return fn()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
