package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/phasesim/internal/experiment"
	"github.com/san-kum/phasesim/internal/sim"
)

type ExportData struct {
	Schedule string              `json:"schedule"`
	Seed     int64               `json:"seed"`
	Dt       float64             `json:"dt"`
	Duration float64             `json:"duration"`
	Steps    int                 `json:"steps"`
	Freezes  int                 `json:"freezes"`
	Samples  []experiment.Sample `json:"samples"`
	Metrics  map[string]float64  `json:"metrics"`
	Final    *sim.Snapshot       `json:"final,omitempty"`
}

// NewExportData flattens a result. The final snapshot is only included when
// withFinal is set since it carries every particle.
func NewExportData(res *experiment.Result, cfg experiment.Config, withFinal bool) ExportData {
	data := ExportData{
		Schedule: res.Schedule,
		Seed:     res.Seed,
		Dt:       cfg.Dt,
		Duration: cfg.Schedule.Duration(),
		Steps:    res.StepsTaken,
		Freezes:  res.Freezes,
		Samples:  res.Samples,
		Metrics:  res.Metrics,
	}
	if withFinal {
		final := res.Final
		data.Final = &final
	}
	return data
}

func EncodeJSON(w io.Writer, data ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportJSON(path string, data ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return EncodeJSON(file, data)
}

func ExportJSONStdout(data ExportData) error {
	return EncodeJSON(os.Stdout, data)
}

// WriteSeries writes samples as CSV with a header row.
func WriteSeries(w io.Writer, samples []experiment.Sample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(seriesHeader); err != nil {
		return err
	}
	for _, s := range samples {
		if err := cw.Write(sampleRow(s)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
