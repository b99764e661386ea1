package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/virial/internal/cluster"
	"github.com/san-kum/virial/internal/config"
	"github.com/san-kum/virial/internal/direct"
	"github.com/san-kum/virial/internal/experiment"
	"github.com/san-kum/virial/internal/meter"
	"github.com/san-kum/virial/internal/storage"
)

var (
	dataDir    string
	verbose    bool
	configFile string
	preset     string
	points     int
	temp       float64
	steps      int64
	walkers    int
	seed       uint64
	tolerance  float64
	positions  string
	rmax       float64
	gridPoints int
	gridLog2   int
	channel    int
	noSave     bool
)

var (
	title = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	label = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	value = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	warn  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "virial",
		Short:        "virial coefficients by Mayer sampling",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".virial", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "estimate a virial coefficient by Mayer sampling",
		Args:  cobra.NoArgs,
		RunE:  runSampling,
	}
	addConfigFlags(runCmd)
	runCmd.Flags().Int64Var(&steps, "steps", config.DefaultSteps, "production steps per walker")
	runCmd.Flags().IntVar(&walkers, "walkers", config.DefaultWalkers, "independent walkers")
	runCmd.Flags().Uint64Var(&seed, "seed", 0, "random seed")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	valueCmd := &cobra.Command{
		Use:   "value",
		Short: "evaluate the cluster sum at one configuration",
		Args:  cobra.NoArgs,
		RunE:  clusterValue,
	}
	addConfigFlags(valueCmd)
	valueCmd.Flags().StringVar(&positions, "positions", "", "molecule centers as x,y,z;x,y,z;... (default compact)")

	b2Cmd := &cobra.Command{
		Use:   "b2",
		Short: "second virial coefficient by quadrature",
		Args:  cobra.NoArgs,
		RunE:  directB2,
	}
	addConfigFlags(b2Cmd)
	b2Cmd.Flags().Float64Var(&rmax, "rmax", 10, "integration cutoff in units of sigma")
	b2Cmd.Flags().IntVar(&gridPoints, "grid", 100_001, "quadrature points")

	b3Cmd := &cobra.Command{
		Use:   "b3",
		Short: "third virial coefficient by Fourier convolution",
		Args:  cobra.NoArgs,
		RunE:  directB3,
	}
	addConfigFlags(b3Cmd)
	b3Cmd.Flags().Float64Var(&rmax, "rmax", 20, "grid extent in units of sigma")
	b3Cmd.Flags().IntVar(&gridLog2, "log2n", 16, "log2 of grid size")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the running estimate of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&channel, "channel", 0, "target output to plot")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	rootCmd.AddCommand(runCmd, valueCmd, b2Cmd, b3Cmd, listCmd, showCmd, exportCmd, plotCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().IntVar(&points, "points", config.DefaultPoints, "number of points")
	cmd.Flags().Float64Var(&temp, "temp", config.DefaultTemperature, "reduced temperature")
	cmd.Flags().Float64Var(&tolerance, "tol", config.DefaultTolerance, "relative precision tolerance, 0 to disable")
}

func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	cfg.Encoding = "console"
	return cfg.Build()
}

// loadConfig layers preset, then config file, then explicitly set flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
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
	if flags.Changed("points") {
		cfg.Points = points
	}
	if flags.Changed("temp") {
		cfg.Temperature = temp
	}
	if flags.Changed("tol") {
		cfg.Precision.Tolerance = tolerance
	}
	if flags.Lookup("steps") != nil && flags.Changed("steps") {
		cfg.Run.Steps = steps
	}
	if flags.Lookup("walkers") != nil && flags.Changed("walkers") {
		cfg.Run.Walkers = walkers
	}
	if flags.Lookup("seed") != nil && flags.Changed("seed") {
		cfg.Run.Seed = seed
	}
	return cfg, cfg.Validate()
}

func runSampling(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	exp := experiment.New(cfg, experiment.NewRegistry(), log)
	if err := exp.Setup(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	name := runName(cfg)
	fmt.Println(title.Render(fmt.Sprintf("B%d  %s", cfg.Points, name)))
	fmt.Printf("%s %d × %d steps, T=%g\n", label.Render("sampling"), cfg.Run.Walkers, cfg.Run.Steps, cfg.Temperature)

	start := time.Now()
	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("%s %v\n\n", label.Render("completed in"), elapsed.Round(time.Millisecond))
	printEstimates(result.Estimates, cfg.Derivatives)
	fmt.Println()
	printCounters(result.Counters)

	if noSave {
		return nil
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(name, cfg, result, elapsed)
	if err != nil {
		return err
	}
	fmt.Printf("\n%s %s\n", label.Render("run id:"), runID)
	return nil
}

func runName(cfg *config.Config) string {
	name := cfg.Potential.Name
	if cfg.NonAdditive.Name != "" {
		name += "-" + cfg.NonAdditive.Name
	}
	if cfg.Molecule.Shape != "point" {
		name += "-" + cfg.Molecule.Shape
	}
	return fmt.Sprintf("%s-b%d", name, cfg.Points)
}

func printEstimates(estimates []meter.Estimate, derivatives int) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "OUTPUT\tVALUE\tERROR\tCORRELATION")
	for k, e := range estimates {
		name := "B"
		if derivatives > 0 && k > 0 {
			name = fmt.Sprintf("d^%d B/dβ^%d", k, k)
		} else if k > 0 {
			name = fmt.Sprintf("output %d", k)
		}
		fmt.Fprintf(w, "%s\t%s\t%.3g\t%.3f\n", name, value.Render(strconv.FormatFloat(e.Value, 'g', 8, 64)), e.Error, e.Correlation)
	}
	w.Flush()
}

func printCounters(c cluster.Counters) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "COMPUTED\tCACHED\tREVERTS\tSHORT\tFALLBACKS\tESCALATIONS\tZEROED")
	fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%d\t%d\t%d\n",
		c.Computed, c.CacheHits, c.Reverts, c.ShortCircuits, c.Fallbacks, c.Escalations, c.Zeroed)
	w.Flush()
	if c.Zeroed > 0 {
		fmt.Println(warn.Render(fmt.Sprintf("%d configurations lost all precision and were counted as zero", c.Zeroed)))
	}
}

func clusterValue(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	reg := experiment.NewRegistry()
	exp := experiment.New(cfg, reg, log)
	c, err := exp.Cluster()
	if err != nil {
		return err
	}

	b, err := exp.Box()
	if err != nil {
		return err
	}
	if positions != "" {
		centers, err := parsePositions(positions)
		if err != nil {
			return err
		}
		if len(centers) != cfg.Points {
			return fmt.Errorf("%d positions for %d points", len(centers), cfg.Points)
		}
		for i, m := range b.Molecules() {
			m.Translate(r3.Sub(centers[i], m.Center()))
		}
		if err := b.Refresh(); err != nil {
			return err
		}
	}

	if v, ok := c.(cluster.Vector); ok {
		for k, x := range v.Values(b) {
			fmt.Printf("%s %.17g\n", label.Render(fmt.Sprintf("value[%d]", k)), x)
		}
	} else {
		fmt.Printf("%s %.17g\n", label.Render("value"), c.Value(b))
	}
	printCounters(c.Stats())
	return nil
}

func parsePositions(s string) ([]r3.Vec, error) {
	var out []r3.Vec
	for _, part := range strings.Split(s, ";") {
		fields := strings.Split(strings.TrimSpace(part), ",")
		if len(fields) != 3 {
			return nil, fmt.Errorf("position %q: want x,y,z", part)
		}
		var xyz [3]float64
		for i, f := range fields {
			v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil {
				return nil, fmt.Errorf("position %q: %w", part, err)
			}
			xyz[i] = v
		}
		out = append(out, r3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]})
	}
	return out, nil
}

func radial(cfg *config.Config) (direct.Radial, error) {
	if cfg.Molecule.Shape != "point" {
		return nil, fmt.Errorf("%w: direct integration needs point molecules", experiment.ErrUnsupported)
	}
	f, err := experiment.NewRegistry().GetMayer(cfg.Potential, cfg.Molecule)
	if err != nil {
		return nil, err
	}
	return direct.FromMayer(f, 1/cfg.Temperature), nil
}

func directB2(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	f, err := radial(cfg)
	if err != nil {
		return err
	}
	b2, err := direct.B2(f, rmax*cfg.Potential.Sigma, gridPoints)
	if err != nil {
		return err
	}
	fmt.Printf("%s %.10g\n", label.Render(fmt.Sprintf("B2(T=%g)", cfg.Temperature)), b2)
	return nil
}

func directB3(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	f, err := radial(cfg)
	if err != nil {
		return err
	}
	n := 1 << gridLog2
	b3, err := direct.B3(f, rmax*cfg.Potential.Sigma/float64(n), gridLog2)
	if err != nil {
		return err
	}
	fmt.Printf("%s %.10g\n", label.Render(fmt.Sprintf("B3(T=%g)", cfg.Temperature)), b3)
	return nil
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
	fmt.Fprintln(w, "ID\tPOINTS\tTIME\tSAMPLES\tVALUE\tERROR")

	for _, run := range runs {
		v, e := math.NaN(), math.NaN()
		if len(run.Estimates) > 0 {
			v, e = run.Estimates[0].Value, run.Estimates[0].Error
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%d\t%.6g\t%.2g\n",
			run.ID,
			run.Points,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Samples,
			v,
			e,
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	fmt.Println(title.Render(meta.ID))
	fmt.Printf("%s %s\n", label.Render("time:"), meta.Timestamp.Format(time.RFC3339))
	fmt.Printf("%s %.1fs\n", label.Render("elapsed:"), meta.Elapsed)
	fmt.Printf("%s %d in %d blocks\n", label.Render("samples:"), meta.Samples, meta.Blocks)
	fmt.Printf("%s %.10g\n\n", label.Render("reference:"), meta.Reference)

	derivatives := 0
	if meta.Config != nil {
		derivatives = meta.Config.Derivatives
	}
	printEstimates(meta.Estimates, derivatives)
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MOVE\tTRIALS\tACCEPTANCE\tSTEP")
	for name, acc := range meta.Acceptance {
		fmt.Fprintf(w, "%s\t%d\t%.3f\t%.4g\n", name, acc.Trials, acc.Ratio(), meta.StepSizes[name])
	}
	w.Flush()
	fmt.Println()
	printCounters(meta.Counters)
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	return storage.WriteJSON(os.Stdout, meta)
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	blocks, err := st.LoadBlocks(runID)
	if err != nil {
		return err
	}
	data := storage.RunningEstimate(blocks, channel, meta.Reference)
	if len(data) == 0 {
		return errors.New("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("blocks: %d\n\n", len(data))

	graph := asciigraph.Plot(data,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("running estimate of output %d", channel)),
	)
	fmt.Println(graph)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tPOINTS\tPOTENTIAL\tNONADDITIVE\tSHAPE\tT")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		na := p.NonAdditive.Name
		if na == "" {
			na = "-"
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%g\n", name, p.Points, p.Potential.Name, na, p.Molecule.Shape, p.Temperature)
	}
	return w.Flush()
}
