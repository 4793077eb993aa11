package export

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/san-kum/phasesim/internal/experiment"
	"github.com/san-kum/phasesim/internal/heat"
	"github.com/san-kum/phasesim/internal/sim"
	"github.com/san-kum/phasesim/internal/viz"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func testSnapshot(t *testing.T, n int) sim.Snapshot {
	t.Helper()
	cfg := sim.DefaultConfig()
	cfg.Particles = n
	e, err := sim.New(cfg, sim.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	e.SetTemperature(20)
	for i := 0; i < 30; i++ {
		e.Advance(1.0 / 60)
	}
	return e.Snapshot()
}

func TestCanvasToSVG(t *testing.T) {
	c := viz.NewCanvas(4, 2)
	c.Set(1, 1)
	c.Set(5, 6)

	svg := CanvasToSVG(c, 10)
	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Error("expected a complete svg document")
	}
	if got := strings.Count(svg, "<circle"); got != 2 {
		t.Errorf("expected 2 dots, got %d", got)
	}
	if !strings.Contains(svg, `width="80" height="80"`) {
		t.Error("expected 8x8 dots scaled by 10")
	}
	if CanvasToSVG(nil, 1) != "" {
		t.Error("expected empty output for nil canvas")
	}
}

func TestSnapshotToSVG(t *testing.T) {
	snap := testSnapshot(t, 12)

	plain := SnapshotToSVG(&snap, 14, SVGOptions{})
	if got := strings.Count(plain, "<circle"); got != 36 {
		t.Errorf("expected an oxygen and two hydrogens per molecule, got %d circles", got)
	}
	if strings.Contains(plain, "<line") {
		t.Error("expected no bond lines without the overlay")
	}
	if !strings.Contains(plain, PhaseColors[snap.Phase]) {
		t.Errorf("expected %s fill for %s", PhaseColors[snap.Phase], snap.Phase)
	}

	full := SnapshotToSVG(&snap, 14, SVGOptions{Scale: 0.5, Anchors: true, Bonds: true})
	want := 36 + len(snap.Anchors)
	if got := strings.Count(full, "<circle"); got != want {
		t.Errorf("expected %d circles with anchors, got %d", want, got)
	}
	if got := strings.Count(full, "<line"); got != len(snap.Bonds) {
		t.Errorf("expected %d bond lines, got %d", len(snap.Bonds), got)
	}
	if !strings.Contains(full, `width="400" height="250"`) {
		t.Error("expected container scaled by half")
	}

	if SnapshotToSVG(nil, 14, SVGOptions{}) != "" {
		t.Error("expected empty output for nil snapshot")
	}
}

func TestSeriesToSVG(t *testing.T) {
	pts := []Point{{0, 0}, {1, 1}, {2, 4}, {3, 9}}
	svg := SeriesToSVG(pts, 200, 100, "#ff0000")
	if !strings.Contains(svg, `stroke="#ff0000"`) {
		t.Error("expected stroke color")
	}
	if got := strings.Count(svg, " L"); got != 3 {
		t.Errorf("expected 3 segments, got %d", got)
	}
	if SeriesToSVG(pts[:1], 200, 100, "#fff") != "" {
		t.Error("expected empty output for a single point")
	}

	flat := SeriesToSVG([]Point{{0, 5}, {1, 5}}, 100, 100, "#fff")
	if strings.Contains(flat, "NaN") || strings.Contains(flat, "Inf") {
		t.Error("expected finite coordinates for a flat series")
	}
}

func TestHeatCurve(t *testing.T) {
	var buf bytes.Buffer
	if err := HeatCurve(&buf, heat.Water(), 200, PNG); err != nil {
		t.Fatalf("render png: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), pngMagic) {
		t.Error("expected png output")
	}

	buf.Reset()
	if err := HeatCurve(&buf, heat.Water(), 200, SVG); err != nil {
		t.Fatalf("render svg: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "<svg") {
		t.Error("expected svg output")
	}
	if !strings.Contains(out, "melting") || !strings.Contains(out, "boiling") {
		t.Error("expected plateau annotations")
	}

	if err := HeatCurve(&buf, heat.Water(), 10, Format("bmp")); err == nil {
		t.Error("expected unknown format error")
	}
}

func TestSeries(t *testing.T) {
	samples := []experiment.Sample{
		{Time: 0, Temperature: 20, ActiveBonds: 40},
		{Time: 1, Temperature: 10, ActiveBonds: 55},
		{Time: 2, Temperature: 0, ActiveBonds: 70},
	}

	var buf bytes.Buffer
	if err := Series(&buf, "melt", samples, SVG); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "active bonds") {
		t.Error("expected legend entry for bonds")
	}

	flat := []experiment.Sample{{Time: 0, Temperature: 5}, {Time: 1, Temperature: 5}}
	buf.Reset()
	if err := Series(&buf, "flat", flat, PNG); err != nil {
		t.Errorf("expected flat series to render, got %v", err)
	}

	if err := Series(&buf, "short", samples[:1], PNG); err == nil {
		t.Error("expected error for a single sample")
	}
}

func TestPaddedRange(t *testing.T) {
	r := paddedRange([]float64{3, 3, 3})
	if r.Min >= 3 || r.Max <= 3 {
		t.Errorf("expected range around 3, got [%v, %v]", r.Min, r.Max)
	}
	r = paddedRange([]float64{0, 100})
	if r.Min != -5 || r.Max != 105 {
		t.Errorf("expected [-5, 105], got [%v, %v]", r.Min, r.Max)
	}
}
