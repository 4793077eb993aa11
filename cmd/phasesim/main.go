package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/san-kum/phasesim/internal/automation"
	"github.com/san-kum/phasesim/internal/config"
	"github.com/san-kum/phasesim/internal/experiment"
	"github.com/san-kum/phasesim/internal/export"
	"github.com/san-kum/phasesim/internal/sim"
	"github.com/san-kum/phasesim/internal/storage"
	"github.com/san-kum/phasesim/internal/viz"
)

const catalogFile = "catalog.db"

var (
	dataDir     string
	logLevel    string
	logFile     string
	configFile  string
	preset      string
	dt          float64
	seed        int64
	particles   int
	recordEvery int
	svgOut      string
	theme       string
	// sweep
	sweepMin   float64
	sweepMax   float64
	sweepSteps int
	holdTime   float64
	// monte carlo
	trials int
	mcSeed int64
	// output
	outFile     string
	chartFormat string
	curvePoints int
	listLimit   int
	listSched   string
)

// main registers the phasesim commands and runs the preset picker when no
// subcommand is given.
func main() {
	rootCmd := &cobra.Command{
		Use:   "phasesim",
		Short: "thermal molecule simulation",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger(os.Stderr, logLevel, false)
			if err != nil {
				return err
			}
			slog.SetDefault(log)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			log, closeLog, err := tuiLogger()
			if err != nil {
				return err
			}
			defer closeLog()
			base, err := loadBase(cmd)
			if err != nil {
				return err
			}
			return viz.RunInteractive(base, log)
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".phasesim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "log file for terminal UI sessions")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "start from a named preset")

	runCmd := &cobra.Command{
		Use:   "run [schedule]",
		Short: "run a schedule and save the result",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	engineFlags(runCmd)
	runCmd.Flags().StringVar(&svgOut, "svg", "", "write the final state as svg")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}
	listCmd.Flags().IntVar(&listLimit, "limit", 20, "maximum runs shown")
	listCmd.Flags().StringVar(&listSched, "schedule", "", "only runs of this schedule")

	reindexCmd := &cobra.Command{
		Use:   "reindex",
		Short: "rebuild the run catalog from the data directory",
		RunE:  reindexRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run series in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run series to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	chartCmd := &cobra.Command{
		Use:   "chart [run_id]",
		Short: "render temperature and bonds of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  chartRun,
	}
	chartCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file")
	chartCmd.Flags().StringVar(&chartFormat, "format", "png", "png or svg")
	_ = chartCmd.MarkFlagRequired("out")

	curveCmd := &cobra.Command{
		Use:   "curve",
		Short: "show the heating curve T(Q)",
		RunE:  heatCurve,
	}
	curveCmd.Flags().StringVarP(&outFile, "out", "o", "", "render to file instead of the terminal")
	curveCmd.Flags().StringVar(&chartFormat, "format", "png", "png or svg")
	curveCmd.Flags().IntVar(&curvePoints, "points", 400, "samples along the curve")

	liveCmd := &cobra.Command{
		Use:   "live [schedule]",
		Short: "watch the simulation in the terminal",
		Long:  "Without a schedule the temperature is driven by hand.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	engineFlags(liveCmd)
	liveCmd.Flags().StringVar(&theme, "theme", "", "color theme")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "hold a range of temperatures and compare end states",
		RunE:  runSweep,
	}
	engineFlags(sweepCmd)
	sweepCmd.Flags().Float64Var(&sweepMin, "min", -40, "lowest temperature")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 140, "highest temperature")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 10, "number of temperatures")
	sweepCmd.Flags().Float64Var(&holdTime, "time", 5, "seconds held at each temperature")

	mcCmd := &cobra.Command{
		Use:   "montecarlo [schedule]",
		Short: "repeat a schedule over random seeds",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runMonteCarlo,
	}
	engineFlags(mcCmd)
	mcCmd.Flags().IntVar(&trials, "trials", 10, "number of trials")
	mcCmd.Flags().Int64Var(&mcSeed, "mc-seed", 0, "seed for drawing trial seeds (0 uses the clock)")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted sequence of runs",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list presets and schedules",
		RunE:  listPresets,
	}

	paramsCmd := &cobra.Command{
		Use:   "params",
		Short: "list engine parameters scenarios can override",
		Run: func(cmd *cobra.Command, args []string) {
			for _, p := range automation.Params() {
				fmt.Println(p)
			}
		},
	}

	rootCmd.AddCommand(runCmd, listCmd, reindexCmd, plotCmd, exportCmd, exportCSVCmd, chartCmd, curveCmd, liveCmd, sweepCmd, mcCmd, scenarioCmd, presetsCmd, paramsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func engineFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
	cmd.Flags().IntVar(&particles, "particles", sim.DefaultParticles, "number of molecules")
	cmd.Flags().IntVar(&recordEvery, "record-every", experiment.DefaultRecordEvery, "steps between recorded samples")
}

func newLogger(w io.Writer, level string, noColor bool) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      lvl,
		TimeFormat: "15:04:05",
		NoColor:    noColor || os.Getenv("NO_COLOR") != "",
	})), nil
}

// tuiLogger keeps engine output off the terminal the UI draws on. Logs go to
// --log-file when set and are discarded otherwise.
func tuiLogger() (*slog.Logger, func(), error) {
	if logFile == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, err
	}
	log, err := newLogger(f, logLevel, true)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return log, func() { f.Close() }, nil
}

// loadBase resolves --preset and --config and applies any engine flags the
// user set. The config file wins over the preset, and explicit flags win
// over both.
func loadBase(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("seed") {
		cfg.Engine.Seed = seed
	}
	if flags.Changed("particles") {
		cfg.Engine.Particles = particles
	}
	if flags.Changed("record-every") {
		cfg.RecordEvery = recordEvery
	}
	return cfg, nil
}

func resolve(cmd *cobra.Command, args []string) (experiment.Config, error) {
	cfg, err := loadBase(cmd)
	if err != nil {
		return experiment.Config{}, err
	}
	if len(args) > 0 {
		cfg.Schedule = args[0]
	}
	return cfg.Experiment()
}

func openCatalog() (*storage.Catalog, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, err
	}
	return storage.OpenCatalog(filepath.Join(dataDir, catalogFile))
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolve(cmd, args)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp, err := experiment.New(cfg, experiment.WithLogger(slog.Default()))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	fmt.Printf("running %s with %d molecules...\n", cfg.Schedule.Name, cfg.Engine.Particles)
	start := time.Now()
	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	meta, err := st.Save(result, cfg)
	if err != nil {
		return err
	}

	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()
	if err := cat.Index(meta); err != nil {
		return fmt.Errorf("index run: %w", err)
	}

	if svgOut != "" {
		svg := export.SnapshotToSVG(&result.Final, cfg.Engine.Radius, export.SVGOptions{Anchors: true, Bonds: true})
		if err := os.WriteFile(svgOut, []byte(svg), 0644); err != nil {
			return err
		}
	}

	fmt.Printf("completed in %v\n", elapsed.Round(time.Millisecond))
	fmt.Printf("run id: %s\n", meta.ID)
	fmt.Printf("steps: %s\n", humanize.Comma(int64(result.StepsTaken)))
	fmt.Printf("final phase: %s (freezes: %d)\n", meta.FinalPhase, result.Freezes)
	fmt.Println("\nmetrics:")
	for _, name := range sortedKeys(result.Metrics) {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	log, closeLog, err := tuiLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	base, err := loadBase(cmd)
	if err != nil {
		return err
	}
	opts := viz.Options{Heat: base.Heat, Dt: base.Dt, Theme: theme}
	if len(args) > 0 {
		base.Schedule = args[0]
		cfg, err := base.Experiment()
		if err != nil {
			return err
		}
		opts.Schedule = &cfg.Schedule
	}

	engine, err := sim.New(base.Engine, sim.WithLogger(log))
	if err != nil {
		return err
	}
	return viz.Run(engine, opts)
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolve(cmd, args)
	if err != nil {
		return err
	}
	sweep := &automation.TemperatureSweep{Min: sweepMin, Max: sweepMax, NumSteps: sweepSteps, Duration: holdTime}

	start := time.Now()
	results, err := automation.RunSweep(cmd.Context(), sweep, cfg, experiment.WithLogger(slog.Default()))
	if err != nil {
		return err
	}
	slog.Info("sweep complete", "temperatures", len(results), "elapsed", time.Since(start).Round(time.Millisecond))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TEMP\tPHASE\tCRYSTAL\tBONDS\tBOND LIFE\tSPEED")
	for _, r := range results {
		fmt.Fprintf(w, "%.1f°C\t%s\t%.2f\t%.1f\t%.2fs\t%.1f\n",
			r.Temperature, r.Phase, r.Crystallinity, r.ActiveBonds, r.BondDuration, r.MeanSpeed)
	}
	return w.Flush()
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := resolve(cmd, args)
	if err != nil {
		return err
	}
	results, err := automation.RunMonteCarlo(cmd.Context(), &automation.MonteCarloConfig{NumTrials: trials, Seed: mcSeed}, cfg, experiment.WithLogger(slog.Default()))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TRIAL\tSEED\tPHASE\tCRYSTAL\tCRYSTALLIZED")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%d\t%s\t%.2f\t%v\n", r.TrialID, r.Seed, r.FinalPhase, r.Crystallinity, r.Crystallized)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	ok, other := automation.MonteCarloStats(results)
	fmt.Printf("\ncrystallized: %d/%d\n", ok, ok+other)
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	base, err := loadBase(cmd)
	if err != nil {
		return err
	}

	results, err := automation.RunScenario(cmd.Context(), scenario, base, experiment.WithLogger(slog.Default()))
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	saved := make([]storage.RunMetadata, 0, len(results))
	for i, r := range results {
		if scenario.Steps[i].SaveAs == "" {
			fmt.Printf("%-16s %s\n", r.Name, r.Result.Final.Phase)
			continue
		}
		meta, err := st.Save(r.Result, r.Config)
		if err != nil {
			return err
		}
		saved = append(saved, meta)
		fmt.Printf("%-16s %s  saved %s\n", r.Name, r.Result.Final.Phase, meta.ID)
	}
	return cat.Index(saved...)
}

func listPresets(cmd *cobra.Command, args []string) error {
	fmt.Println("presets:")
	for _, p := range config.ListPresets() {
		fmt.Printf("  %s\n", p)
	}

	base, err := loadBase(cmd)
	if err != nil {
		return err
	}
	reg, err := base.Registry()
	if err != nil {
		return err
	}
	fmt.Println("\nschedules:")
	for _, name := range reg.List() {
		s, _ := reg.Get(name)
		fmt.Printf("  %-14s %6.1fs  %s\n", name, s.Duration(), s.Description)
	}
	return nil
}
