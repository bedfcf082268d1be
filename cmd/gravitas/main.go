package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/gravitas/internal/config"
	"github.com/san-kum/gravitas/internal/dynamo"
	"github.com/san-kum/gravitas/internal/experiment"
	"github.com/san-kum/gravitas/internal/export"
	"github.com/san-kum/gravitas/internal/optim"
	"github.com/san-kum/gravitas/internal/sim"
	"github.com/san-kum/gravitas/internal/storage"
	"github.com/san-kum/gravitas/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	preset     string
	seed       int64
	ticks      int
	dynamics   int
	collisions bool
	label      string
	metricList string
	verbose    bool
	// live view
	theme string
	// plot
	series  string
	svgPath string
	// snapshot and export
	outPath     string
	noFilaments bool
	noTrails    bool
	// bench
	numRuns int
	// sweep
	sweepParams []string
	sweepMetric string
	maximize    bool
)

// main registers the gravitas commands and opens the preset picker when no
// subcommand is given.
func main() {
	rootCmd := &cobra.Command{
		Use:          "gravitas",
		Short:        "2D gravity, collision and merge simulator",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".gravitas", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a headless simulation and store it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addScenarioFlags(runCmd)
	runCmd.Flags().IntVar(&ticks, "ticks", config.DefaultTicks, "ticks to simulate")
	runCmd.Flags().StringVar(&label, "label", "", "run label (defaults to the preset name)")
	runCmd.Flags().StringVar(&metricList, "metrics", "", "comma separated metrics (default: all)")
	runCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log every merge to stderr")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run the simulation in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addScenarioFlags(liveCmd)
	liveCmd.Flags().StringVar(&theme, "theme", viz.ThemeNebula.Name, fmt.Sprintf("colour theme %v", viz.ThemeNames()))

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the per-tick series of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&series, "series", "", fmt.Sprintf("single series to plot %v", seriesNames()))
	plotCmd.Flags().StringVar(&svgPath, "svg", "", "write the selected series as SVG instead")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a run as one JSON document",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot [run_id]",
		Short: "render the final population of a run as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  snapshotRun,
	}
	snapshotCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default <run_id>.svg)")
	snapshotCmd.Flags().BoolVar(&noFilaments, "no-filaments", false, "omit filaments")
	snapshotCmd.Flags().BoolVar(&noTrails, "no-trails", false, "omit trails")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "run seeded replicas in parallel and report throughput",
		Args:  cobra.NoArgs,
		RunE:  benchScenario,
	}
	addScenarioFlags(benchCmd)
	benchCmd.Flags().IntVar(&ticks, "ticks", config.DefaultTicks, "ticks per replica")
	benchCmd.Flags().IntVar(&numRuns, "runs", 8, "number of replicas")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "grid search physics parameters against a metric",
		Args:  cobra.NoArgs,
		RunE:  sweepScenario,
	}
	addScenarioFlags(sweepCmd)
	sweepCmd.Flags().IntVar(&ticks, "ticks", config.DefaultTicks, "ticks per trial")
	sweepCmd.Flags().StringArrayVar(&sweepParams, "param", nil, fmt.Sprintf("name=lo:hi:n, repeatable %v", optim.Parameters()))
	sweepCmd.Flags().StringVar(&sweepMetric, "metric", "merges", "metric to optimise")
	sweepCmd.Flags().BoolVar(&maximize, "maximize", false, "keep the largest value instead of the smallest")

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, exportJSONCmd, snapshotCmd, presetsCmd, benchCmd, sweepCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addScenarioFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed")
	cmd.Flags().IntVar(&dynamics, "dynamics", 0, "number of initial dynamic bodies")
	cmd.Flags().BoolVar(&collisions, "collisions", false, "enable dynamic-dynamic collisions")
}

// loadConfig starts from the preset (or the defaults), overlays the config
// file, then applies any flag the user set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p, err := config.GetPreset(preset)
		if err != nil {
			return nil, fmt.Errorf("%w (available: %v)", err, config.ListPresets())
		}
		cfg = p
	}

	if configFile != "" {
		c, err := config.LoadOnto(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
	}

	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("dynamics") {
		cfg.Bodies.Dynamics = dynamics
	}
	if flags.Changed("collisions") {
		cfg.DynamicCollisions = collisions
	}
	if flags.Changed("ticks") {
		cfg.Ticks = ticks
	}

	return cfg, cfg.Validate()
}

func scenarioLabel() string {
	switch {
	case label != "":
		return label
	case preset != "":
		return preset
	case configFile != "":
		return strings.TrimSuffix(filepath.Base(configFile), filepath.Ext(configFile))
	}
	return "default"
}

// mergeLogger writes one structured line per absorption.
type mergeLogger struct {
	log *slog.Logger
}

func (l mergeLogger) OnMerge(e dynamo.MergeEvent) {
	l.log.Info("merge",
		"tick", e.Tick,
		"x", e.Position.X,
		"y", e.Position.Y,
		"absorbed", e.Absorbed,
		"primary_mass", e.PrimaryMass,
	)
}

func selectMetrics(params dynamo.Params) ([]dynamo.Metric, error) {
	registry := experiment.NewRegistry()
	if metricList == "" {
		return registry.DefaultMetrics(params), nil
	}

	var metrics []dynamo.Metric
	for _, name := range strings.Split(metricList, ",") {
		m, err := registry.GetMetric(strings.TrimSpace(name), params)
		if err != nil {
			return nil, fmt.Errorf("%w (available: %v)", err, registry.ListMetrics())
		}
		metrics = append(metrics, m)
	}
	return metrics, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	metrics, err := selectMetrics(cfg.Params())
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp := experiment.New(cfg)
	if err := exp.Setup(metrics); err != nil {
		return err
	}
	if verbose {
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
		exp.GetSimulator().AddMergeObserver(mergeLogger{log: slog.New(handler)})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	name := scenarioLabel()
	fmt.Printf("running %s for %d ticks (seed %d)...\n", name, cfg.Ticks, cfg.Seed)
	start := time.Now()

	result, err := exp.Run(ctx)
	if err != nil && result == nil {
		return err
	}
	elapsed := time.Since(start)

	runID, saveErr := st.Save(name, cfg, result)
	if saveErr != nil {
		return saveErr
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("ticks: %d\n", result.TicksTaken)
	fmt.Printf("merges: %d\n", len(result.Merges))
	fmt.Printf("final bodies: %d\n", len(result.Final))
	fmt.Println("\nmetrics:")
	if err := printMetrics(result.Metrics); err != nil {
		return err
	}

	// a canceled or failed run is still stored, but the command reports the cause
	return runFailure(os.Stdout, runID, result, err)
}

// runFailure lists the simulation errors of a stored run and returns the
// cancellation cause, else the first simulation error.
func runFailure(w io.Writer, runID string, result *dynamo.Result, err error) error {
	if len(result.Errors) > 0 {
		fmt.Fprintln(w, "\nerrors:")
		for _, e := range result.Errors {
			fmt.Fprintf(w, "  %v\n", e)
		}
	}
	if err != nil {
		return err
	}
	if len(result.Errors) > 0 {
		return fmt.Errorf("run %s: %w", runID, result.Errors[0])
	}
	return nil
}

func printMetrics(metrics map[string]float64) error {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, name := range names {
		fmt.Fprintf(w, "  %s\t%.6f\n", name, metrics[name])
	}
	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	if preset == "" && configFile == "" && !cmd.Flags().Changed("seed") && !cmd.Flags().Changed("dynamics") {
		return viz.RunInteractive()
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	s, err := sim.New(cfg.Params(), cfg.Setup())
	if err != nil {
		return err
	}

	viz.SetTheme(theme)
	return viz.Run(s, scenarioLabel())
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tLABEL\tTIME\tSEED\tTICKS\tCOLL\tBODIES\tMERGES")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%v\t%d\t%d\n",
			run.ID,
			run.Label,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Seed,
			run.Ticks,
			run.DynamicCollisions,
			run.FinalBodies,
			run.Merges,
		)
	}

	return w.Flush()
}

// seriesColumns maps plot names to a column of the per-tick series.
var seriesColumns = map[string]func(dynamo.TickSample) float64{
	"bodies":         func(s dynamo.TickSample) float64 { return float64(s.Bodies) },
	"dynamics":       func(s dynamo.TickSample) float64 { return float64(s.Dynamics) },
	"primaries":      func(s dynamo.TickSample) float64 { return float64(s.Primaries) },
	"total_mass":     func(s dynamo.TickSample) float64 { return s.TotalMass },
	"kinetic_energy": func(s dynamo.TickSample) float64 { return s.KineticEnergy },
	"merges":         func(s dynamo.TickSample) float64 { return float64(s.Merges) },
}

func seriesNames() []string {
	names := make([]string, 0, len(seriesColumns))
	for name := range seriesColumns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func column(samples []dynamo.TickSample, name string) ([]float64, error) {
	get, ok := seriesColumns[name]
	if !ok {
		return nil, fmt.Errorf("unknown series: %s (available: %v)", name, seriesNames())
	}
	data := make([]float64, len(samples))
	for i, s := range samples {
		data[i] = get(s)
	}
	return data, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	samples, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}

	if len(samples) == 0 {
		return fmt.Errorf("no data to plot")
	}

	if svgPath != "" {
		name := series
		if name == "" {
			name = "bodies"
		}
		data, err := column(samples, name)
		if err != nil {
			return err
		}
		svg := export.SeriesToSVG(data, 800, 300, string(viz.CurrentTheme.Primary))
		if err := os.WriteFile(svgPath, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s (%s, %d samples)\n", svgPath, name, len(data))
		return nil
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("label: %s\n", meta.Label)
	fmt.Printf("samples: %d\n\n", len(samples))

	names := []string{"bodies", "total_mass", "kinetic_energy"}
	if series != "" {
		names = []string{series}
	}

	for _, name := range names {
		data, err := column(samples, name)
		if err != nil {
			return err
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(name+" vs tick"),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

// loadResult rebuilds a Result from the stored files of a run.
func loadResult(st *storage.Store, runID string) (*storage.RunMetadata, *dynamo.Result, error) {
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}

	samples, err := st.LoadSeries(runID)
	if err != nil {
		return nil, nil, err
	}
	final, err := st.LoadFinal(runID)
	if err != nil {
		return nil, nil, err
	}
	merges, err := st.LoadMerges(runID)
	if err != nil {
		return nil, nil, err
	}

	return meta, &dynamo.Result{
		Series:     samples,
		Metrics:    meta.Metrics,
		Merges:     merges,
		Final:      final,
		TicksTaken: meta.Ticks,
	}, nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, result, err := loadResult(st, args[0])
	if err != nil {
		return err
	}

	if outPath != "" {
		return storage.ExportJSON(outPath, meta.Seed, result)
	}
	return storage.WriteJSON(os.Stdout, meta.Seed, result)
}

func snapshotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	cfg, err := st.LoadConfig(runID)
	if err != nil {
		return err
	}
	final, err := st.LoadFinal(runID)
	if err != nil {
		return err
	}

	opts := export.DefaultOptions()
	opts.Filaments = !noFilaments
	opts.Trails = !noTrails

	path := outPath
	if path == "" {
		path = runID + ".svg"
	}

	svg := export.PopulationToSVG(final, cfg.Params(), opts)
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d bodies)\n", path, len(final))
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tPRIMARIES\tDYNAMICS\tCOLL\tTICKS")
	for _, name := range config.ListPresets() {
		cfg, err := config.GetPreset(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%v\t%d\n",
			name,
			len(cfg.Bodies.Primaries)+cfg.Bodies.RandomPrimaries,
			cfg.Bodies.Dynamics,
			cfg.DynamicCollisions,
			cfg.Ticks,
		)
	}
	return w.Flush()
}

func benchScenario(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if numRuns < 1 {
		return fmt.Errorf("%w: runs must be at least 1", dynamo.ErrParameterBounds)
	}

	params := cfg.Params()
	registry := experiment.NewRegistry()
	ens := sim.NewEnsemble(params, cfg.Setup(), numRuns, cfg.Seed, func() []dynamo.Metric {
		return registry.DefaultMetrics(params)
	})

	fmt.Printf("benchmarking %s: %d replicas x %d ticks\n\n", scenarioLabel(), numRuns, cfg.Ticks)

	start := time.Now()
	results, err := ens.Run(context.Background(), cfg.Ticks)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tTICKS\tBODIES\tMERGES\tPEAK\tKINETIC")

	total := 0
	for i, r := range results {
		total += r.TicksTaken
		fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%.0f\t%.4f\n",
			cfg.Seed+int64(i),
			r.TicksTaken,
			len(r.Final),
			len(r.Merges),
			r.Metrics["peak_bodies"],
			r.Metrics["kinetic_energy"],
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\n%d ticks in %v (%.0f ticks/sec)\n", total, elapsed, float64(total)/elapsed.Seconds())
	return nil
}

// parseSweepParam reads name=lo:hi:n.
func parseSweepParam(arg string) (string, []float64, error) {
	name, bounds, ok := strings.Cut(arg, "=")
	parts := strings.Split(bounds, ":")
	if !ok || len(parts) != 3 {
		return "", nil, fmt.Errorf("invalid --param %q, want name=lo:hi:n", arg)
	}

	lo, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return "", nil, fmt.Errorf("invalid --param %q: %w", arg, err)
	}
	hi, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return "", nil, fmt.Errorf("invalid --param %q: %w", arg, err)
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil || n < 1 {
		return "", nil, fmt.Errorf("invalid --param %q: n must be a positive integer", arg)
	}
	return name, optim.Linspace(lo, hi, n), nil
}

func sweepScenario(cmd *cobra.Command, args []string) error {
	base, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if len(sweepParams) == 0 {
		return fmt.Errorf("at least one --param is required (available: %v)", optim.Parameters())
	}

	names := make([]string, len(sweepParams))
	ranges := make([][]float64, len(sweepParams))
	for i, arg := range sweepParams {
		if names[i], ranges[i], err = parseSweepParam(arg); err != nil {
			return err
		}
	}

	registry := experiment.NewRegistry()
	build := func(params map[string]float64) (*experiment.Experiment, error) {
		cfg := *base
		cfg.Bodies.Primaries = append([]config.PrimaryConfig(nil), base.Bodies.Primaries...)
		if err := optim.Apply(&cfg, params); err != nil {
			return nil, err
		}
		m, err := registry.GetMetric(sweepMetric, cfg.Params())
		if err != nil {
			return nil, err
		}
		exp := experiment.New(&cfg)
		return exp, exp.Setup([]dynamo.Metric{m})
	}

	g := optim.NewGridSearch(names, ranges)
	if maximize {
		g.Maximize()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	trials, best, err := g.Search(ctx, build, sweepMetric)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\n", strings.ToUpper(strings.Join(names, "\t")), strings.ToUpper(sweepMetric))
	for _, t := range trials {
		cells := make([]string, len(names))
		for i, name := range names {
			cells[i] = strconv.FormatFloat(t.Params[name], 'g', 6, 64)
		}
		val := strconv.FormatFloat(t.Value, 'g', 6, 64)
		if t.Err != nil {
			val = "error: " + t.Err.Error()
		}
		fmt.Fprintf(w, "%s\t%s\n", strings.Join(cells, "\t"), val)
	}
	if flushErr := w.Flush(); flushErr != nil {
		return flushErr
	}
	if err != nil {
		return err
	}

	fmt.Printf("\nbest %s = %g at %v\n", sweepMetric, best.Value, best.Params)
	return nil
}
