package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/phasesim/internal/experiment"
)

const (
	metadataFile = "metadata.json"
	seriesFile   = "series.csv"
)

var seriesHeader = []string{
	"time", "temperature", "heat", "phase", "solid",
	"active_bonds", "open_bonds", "avg_bond_duration",
	"boost", "assigned", "mean_speed",
}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// Dir is the directory a run is stored under.
func (s *Store) Dir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Schedule   string             `json:"schedule"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Particles  int                `json:"particles"`
	Steps      int                `json:"steps"`
	Freezes    int                `json:"freezes"`
	FinalPhase string             `json:"final_phase"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Metadata builds the metadata record for a finished run without saving it.
func Metadata(res *experiment.Result, cfg experiment.Config) RunMetadata {
	return RunMetadata{
		Schedule:   res.Schedule,
		Timestamp:  time.Now(),
		Seed:       res.Seed,
		Dt:         cfg.Dt,
		Duration:   cfg.Schedule.Duration(),
		Particles:  cfg.Engine.Particles,
		Steps:      res.StepsTaken,
		Freezes:    res.Freezes,
		FinalPhase: res.Final.Phase.String(),
		Metrics:    res.Metrics,
	}
}

// Save writes metadata.json and series.csv into a fresh run directory. The
// returned metadata carries the new run id.
func (s *Store) Save(res *experiment.Result, cfg experiment.Config) (RunMetadata, error) {
	meta := Metadata(res, cfg)
	meta.ID = fmt.Sprintf("%s_%s", res.Schedule, uuid.NewString()[:8])
	runDir := s.Dir(meta.ID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return meta, err
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return meta, err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return meta, err
	}

	csvFile, err := os.Create(filepath.Join(runDir, seriesFile))
	if err != nil {
		return meta, err
	}
	defer csvFile.Close()

	if err := WriteSeries(csvFile, res.Samples); err != nil {
		return meta, fmt.Errorf("write series: %w", err)
	}
	return meta, nil
}

// List returns every stored run, newest first. Directories without readable
// metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir(runID), metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parse metadata %s: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadSeries(runID string) ([]experiment.Sample, error) {
	file, err := os.Open(filepath.Join(s.Dir(runID), seriesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []experiment.Sample{}, nil
	}

	samples := make([]experiment.Sample, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) < len(seriesHeader) {
			continue
		}
		sample, err := parseSample(rec)
		if err != nil {
			continue
		}
		samples = append(samples, sample)
	}
	return samples, nil
}

func (s *Store) Delete(runID string) error {
	if _, err := s.Load(runID); err != nil {
		return err
	}
	return os.RemoveAll(s.Dir(runID))
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func sampleRow(s experiment.Sample) []string {
	return []string{
		formatFloat(s.Time),
		formatFloat(s.Temperature),
		formatFloat(s.Heat),
		s.Phase,
		strconv.FormatBool(s.Solid),
		strconv.Itoa(s.ActiveBonds),
		strconv.Itoa(s.OpenBonds),
		formatFloat(s.AvgBondDuration),
		formatFloat(s.Boost),
		strconv.Itoa(s.Assigned),
		formatFloat(s.MeanSpeed),
	}
}

func parseSample(rec []string) (experiment.Sample, error) {
	var (
		s    experiment.Sample
		errs []error
	)
	f := func(i int) float64 {
		v, err := strconv.ParseFloat(rec[i], 64)
		if err != nil {
			errs = append(errs, err)
		}
		return v
	}
	n := func(i int) int {
		v, err := strconv.Atoi(rec[i])
		if err != nil {
			errs = append(errs, err)
		}
		return v
	}

	s.Time = f(0)
	s.Temperature = f(1)
	s.Heat = f(2)
	s.Phase = rec[3]
	solid, err := strconv.ParseBool(rec[4])
	if err != nil {
		errs = append(errs, err)
	}
	s.Solid = solid
	s.ActiveBonds = n(5)
	s.OpenBonds = n(6)
	s.AvgBondDuration = f(7)
	s.Boost = f(8)
	s.Assigned = n(9)
	s.MeanSpeed = f(10)

	if len(errs) > 0 {
		return s, errs[0]
	}
	return s, nil
}
