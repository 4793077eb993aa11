package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/phasesim/internal/export"
	"github.com/san-kum/phasesim/internal/storage"
)

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func listRuns(cmd *cobra.Command, args []string) error {
	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	// Runs saved by older builds or copied in by hand only exist on disk.
	if _, err := cat.Sync(storage.New(dataDir)); err != nil {
		return err
	}

	var runs []storage.RunMetadata
	if listSched != "" {
		runs, err = cat.BySchedule(listSched)
	} else {
		runs, err = cat.Recent(listLimit)
	}
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCHEDULE\tCREATED\tSTEPS\tPARTICLES\tPHASE\tFREEZES")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%d\n",
			run.ID,
			run.Schedule,
			humanize.Time(run.Timestamp),
			humanize.Comma(int64(run.Steps)),
			run.Particles,
			run.FinalPhase,
			run.Freezes,
		)
	}
	return w.Flush()
}

func reindexRuns(cmd *cobra.Command, args []string) error {
	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	n, err := cat.Sync(storage.New(dataDir))
	if err != nil {
		return err
	}
	fmt.Printf("indexed %s runs\n", humanize.Comma(int64(n)))
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	samples, err := st.LoadSeries(args[0])
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("schedule: %s\n", meta.Schedule)
	fmt.Printf("samples: %d\n\n", len(samples))

	temps := make([]float64, len(samples))
	active := make([]float64, len(samples))
	speed := make([]float64, len(samples))
	for i, s := range samples {
		temps[i] = s.Temperature
		active[i] = float64(s.ActiveBonds)
		speed[i] = s.MeanSpeed
	}

	for _, p := range []struct {
		data    []float64
		caption string
	}{
		{temps, "temperature (°C)"},
		{active, "active bonds"},
		{speed, "mean speed"},
	} {
		fmt.Println(asciigraph.Plot(p.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(p.caption),
		))
		fmt.Println()
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	samples, err := st.LoadSeries(args[0])
	if err != nil {
		return err
	}

	data := storage.ExportData{
		Schedule: meta.Schedule,
		Seed:     meta.Seed,
		Dt:       meta.Dt,
		Duration: meta.Duration,
		Steps:    meta.Steps,
		Freezes:  meta.Freezes,
		Samples:  samples,
		Metrics:  meta.Metrics,
	}
	if outFile != "" {
		return storage.ExportJSON(outFile, data)
	}
	return storage.ExportJSONStdout(data)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	samples, err := storage.New(dataDir).LoadSeries(args[0])
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("no data to export")
	}
	return storage.WriteSeries(os.Stdout, samples)
}

func chartRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	samples, err := st.LoadSeries(args[0])
	if err != nil {
		return err
	}

	f, err := os.Create(outFile)
	if err != nil {
		return err
	}
	defer f.Close()
	return export.Series(f, meta.ID, samples, export.Format(chartFormat))
}

func heatCurve(cmd *cobra.Command, args []string) error {
	base, err := loadBase(cmd)
	if err != nil {
		return err
	}
	if err := base.Heat.Validate(); err != nil {
		return err
	}

	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return err
		}
		defer f.Close()
		return export.HeatCurve(f, base.Heat, curvePoints, export.Format(chartFormat))
	}

	pts := base.Heat.Curve(curvePoints)
	temps := make([]float64, len(pts))
	for i, p := range pts {
		temps[i] = p.T
	}
	fmt.Println(asciigraph.Plot(temps,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("T(Q), Q from 0 to %.0f J/g", base.Heat.MaxHeat())),
	))
	return nil
}
