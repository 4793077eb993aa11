package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/san-kum/phasesim/internal/config"
)

func newTestCmd(t *testing.T) *cobra.Command {
	t.Helper()
	preset, configFile = "", ""
	t.Cleanup(func() { preset, configFile = "", "" })
	cmd := &cobra.Command{Use: "test"}
	engineFlags(cmd)
	return cmd
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log, err := newLogger(&buf, "warn", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	log.Info("hidden")
	log.Warn("shown", "temp", 12.5)
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("expected info suppressed at warn level")
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "temp=12.5") {
		t.Errorf("expected warn record, got %q", out)
	}

	if _, err := newLogger(&buf, "loud", true); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestLoadBase_Flags(t *testing.T) {
	cmd := newTestCmd(t)
	if err := cmd.Flags().Set("particles", "12"); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadBase(cmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Engine.Particles != 12 {
		t.Errorf("expected 12 particles, got %d", cfg.Engine.Particles)
	}
	def := config.DefaultConfig()
	if cfg.Engine.Seed != def.Engine.Seed || cfg.Dt != def.Dt {
		t.Error("expected unset flags to keep defaults")
	}
}

func TestLoadBase_Preset(t *testing.T) {
	cmd := newTestCmd(t)
	preset = "steam"

	cfg, err := loadBase(cmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Schedule != "steam" || cfg.Engine.Particles != 60 {
		t.Errorf("expected steam preset, got %s with %d particles", cfg.Schedule, cfg.Engine.Particles)
	}

	preset = "plasma"
	if _, err := loadBase(cmd); err == nil {
		t.Error("expected unknown preset error")
	}
}

func TestLoadBase_ConfigFile(t *testing.T) {
	cmd := newTestCmd(t)
	path := filepath.Join(t.TempDir(), "run.yaml")
	if err := os.WriteFile(path, []byte("schedule: boil\nengine:\n  particles: 30\n"), 0644); err != nil {
		t.Fatal(err)
	}
	configFile = path
	if err := cmd.Flags().Set("particles", "20"); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadBase(cmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Schedule != "boil" {
		t.Errorf("expected boil from file, got %s", cfg.Schedule)
	}
	if cfg.Engine.Particles != 20 {
		t.Errorf("expected flag to override file, got %d", cfg.Engine.Particles)
	}
}

func TestResolve_Schedule(t *testing.T) {
	cmd := newTestCmd(t)
	cfg, err := resolve(cmd, []string{"ice"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Schedule.Name != "ice" {
		t.Errorf("expected ice schedule, got %s", cfg.Schedule.Name)
	}
	if _, err := resolve(cmd, []string{"plasma"}); err == nil {
		t.Error("expected unknown schedule error")
	}
}

func TestSortedKeys(t *testing.T) {
	got := sortedKeys(map[string]float64{"b": 1, "a": 2, "c": 3})
	if strings.Join(got, ",") != "a,b,c" {
		t.Errorf("expected a,b,c, got %v", got)
	}
}
