package export

import (
	"fmt"
	"io"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/san-kum/phasesim/internal/experiment"
	"github.com/san-kum/phasesim/internal/heat"
	"github.com/san-kum/phasesim/internal/thermal"
)

// Format selects the chart encoding.
type Format string

const (
	PNG Format = "png"
	SVG Format = "svg"
)

const (
	chartWidth  = 900
	chartHeight = 500
)

func (f Format) renderer() (chart.RendererProvider, error) {
	switch f {
	case PNG, "":
		return chart.PNG, nil
	case SVG:
		return chart.SVG, nil
	default:
		return nil, fmt.Errorf("unknown chart format %q", f)
	}
}

// HeatCurve charts temperature against heat added, T(Q), sampled at n
// points. The melting and boiling plateaus are annotated.
func HeatCurve(w io.Writer, model heat.Model, n int, format Format) error {
	render, err := format.renderer()
	if err != nil {
		return err
	}

	pts := model.Curve(n)
	qs := make([]float64, len(pts))
	ts := make([]float64, len(pts))
	for i, p := range pts {
		qs[i], ts[i] = p.Q, p.T
	}

	meltQ := model.Heat(thermal.MeltPoint)
	boilQ := model.Heat(thermal.BoilPoint)

	graph := chart.Chart{
		Title:  "Heating curve",
		Width:  chartWidth,
		Height: chartHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name:  "Heat added (J/g)",
			Style: chart.Style{FontSize: 10.0},
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%.0f", v.(float64))
			},
		},
		YAxis: chart.YAxis{
			Name:  "Temperature (°C)",
			Style: chart.Style{FontSize: 10.0},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "T(Q)",
				XValues: qs,
				YValues: ts,
				Style:   chart.Style{StrokeColor: drawing.ColorFromHex("3a8dde"), StrokeWidth: 3.0},
			},
			chart.AnnotationSeries{
				Annotations: []chart.Value2{
					{XValue: meltQ, YValue: thermal.MeltPoint, Label: "melting"},
					{XValue: boilQ, YValue: thermal.BoilPoint, Label: "boiling"},
				},
			},
		},
	}

	if err := graph.Render(render, w); err != nil {
		return fmt.Errorf("render heat curve: %w", err)
	}
	return nil
}

// Series charts a run's temperature on the left axis and active bonds on the
// right against time.
func Series(w io.Writer, title string, samples []experiment.Sample, format Format) error {
	render, err := format.renderer()
	if err != nil {
		return err
	}
	if len(samples) < 2 {
		return fmt.Errorf("series needs at least 2 samples, got %d", len(samples))
	}

	ts := make([]float64, len(samples))
	temps := make([]float64, len(samples))
	bondCounts := make([]float64, len(samples))
	for i, s := range samples {
		ts[i] = s.Time
		temps[i] = s.Temperature
		bondCounts[i] = float64(s.ActiveBonds)
	}

	graph := chart.Chart{
		Title:  title,
		Width:  chartWidth,
		Height: chartHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name:  "Time (s)",
			Style: chart.Style{FontSize: 10.0},
		},
		YAxis: chart.YAxis{
			Name:  "Temperature (°C)",
			Style: chart.Style{FontSize: 10.0},
			Range: paddedRange(temps),
		},
		YAxisSecondary: chart.YAxis{
			Name:  "Active bonds",
			Style: chart.Style{FontSize: 10.0},
			Range: paddedRange(bondCounts),
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "temperature",
				XValues: ts,
				YValues: temps,
				Style:   chart.Style{StrokeColor: drawing.ColorFromHex("ff7a5c"), StrokeWidth: 2.0},
			},
			chart.ContinuousSeries{
				Name:    "active bonds",
				YAxis:   chart.YAxisSecondary,
				XValues: ts,
				YValues: bondCounts,
				Style:   chart.Style{StrokeColor: drawing.ColorFromHex("3a8dde"), StrokeWidth: 2.0},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	if err := graph.Render(render, w); err != nil {
		return fmt.Errorf("render series: %w", err)
	}
	return nil
}

// paddedRange returns a fixed axis range around values that stays non-empty
// for flat series.
func paddedRange(values []float64) *chart.ContinuousRange {
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = 1
	}
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}
