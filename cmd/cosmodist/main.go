package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/cosmodist/internal/config"
	"github.com/san-kum/cosmodist/internal/cosmo"
	"github.com/san-kum/cosmodist/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	verbose    bool
	// Cosmology
	h0       float64
	omegaM   float64
	omegaR   float64
	omegaL   float64
	unitName string
	// Extend bounds
	maxZ       float64
	maxDL      float64
	maxDc      float64
	maxVc      float64
	dz         float64
	maxSteps   int
	zCeiling   float64
	integrator string
	// Runs
	saveRun bool
	runName string
	resume  string
	// Plot
	plotWidth  int
	plotHeight int
	svgPath    string
	// Metrics server
	listenAddr string
	// Fit
	h0Range []float64
	omRange []float64
	gridN   int
	workers int
	topN    int
)

// main registers the cosmodist commands and flags and executes the root
// command, exiting with status 1 on error.
func main() {
	rootCmd := &cobra.Command{
		Use:           "cosmodist",
		Short:         "flat FLRW distance tables and redshift conversions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".cosmodist", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "named cosmology preset")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging to stderr")

	tabulateCmd := &cobra.Command{
		Use:   "tabulate",
		Short: "integrate a distance table and optionally save it",
		Args:  cobra.NoArgs,
		RunE:  runTabulate,
	}
	addCosmologyFlags(tabulateCmd)
	addExtendFlags(tabulateCmd)
	tabulateCmd.Flags().BoolVar(&saveRun, "save", false, "save the table to the data directory")
	tabulateCmd.Flags().StringVar(&runName, "name", "", "run name (defaults to the preset or \"custom\")")
	tabulateCmd.Flags().StringVar(&resume, "resume", "", "extend a saved run instead of starting from z=0")

	convertCmd := &cobra.Command{
		Use:   "convert [z2dl|dl2z|z2dc|dc2z|dvcdz|logdvcdz] [values...]",
		Short: "convert between redshift and distance",
		Args:  cobra.MinimumNArgs(2),
		RunE:  runConvert,
	}
	addCosmologyFlags(convertCmd)
	convertCmd.Flags().Float64Var(&dz, "dz", cosmo.DefaultStep, "redshift step")
	convertCmd.Flags().StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator")

	plotCmd := &cobra.Command{
		Use:   "plot [quantity]",
		Short: fmt.Sprintf("plot a quantity against redshift (%v)", viz.ListQuantities()),
		Args:  cobra.ExactArgs(1),
		RunE:  runPlot,
	}
	addCosmologyFlags(plotCmd)
	plotCmd.Flags().Float64Var(&maxZ, "max-z", cosmo.DefaultMaxZ, "maximum redshift")
	plotCmd.Flags().IntVar(&plotWidth, "width", 80, "plot width")
	plotCmd.Flags().IntVar(&plotHeight, "height", 12, "plot height")
	plotCmd.Flags().StringVar(&svgPath, "svg", "", "also write the curve to an SVG file")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved tables",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "summarize a saved table",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export a saved table to CSV in its output unit",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a saved table to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available cosmology presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "compare integrators on the same cosmology",
		Args:  cobra.NoArgs,
		RunE:  runBench,
	}
	addCosmologyFlags(benchCmd)
	addExtendFlags(benchCmd)

	serveCmd := &cobra.Command{
		Use:   "serve-metrics",
		Short: "extend a table and serve Prometheus metrics",
		Args:  cobra.NoArgs,
		RunE:  serveMetrics,
	}
	addCosmologyFlags(serveCmd)
	addExtendFlags(serveCmd)
	serveCmd.Flags().StringVar(&listenAddr, "addr", ":9090", "listen address")

	fitCmd := &cobra.Command{
		Use:   "fit [observations.csv]",
		Short: "grid fit H0 and omega-m to luminosity distances (csv: z,dl,sigma)",
		Args:  cobra.ExactArgs(1),
		RunE:  runFit,
	}
	fitCmd.Flags().StringVar(&unitName, "unit", config.DefaultUnit, "distance unit of the observations (mpc or cm)")
	fitCmd.Flags().Float64Var(&dz, "dz", cosmo.DefaultStep, "redshift step")
	fitCmd.Flags().StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator")
	fitCmd.Flags().Float64SliceVar(&h0Range, "h0-range", []float64{60, 80}, "H0 grid bounds in km/s/Mpc")
	fitCmd.Flags().Float64SliceVar(&omRange, "omega-m-range", []float64{0.1, 0.5}, "omega-m grid bounds")
	fitCmd.Flags().IntVar(&gridN, "grid", 21, "grid points per axis")
	fitCmd.Flags().IntVar(&workers, "workers", 0, "parallel tables (default GOMAXPROCS)")
	fitCmd.Flags().IntVar(&topN, "top", 5, "number of best grid points to print")

	rootCmd.AddCommand(tabulateCmd, convertCmd, plotCmd, listCmd, showCmd, exportCSVCmd, exportJSONCmd, presetsCmd, benchCmd, serveCmd, fitCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, viz.StatusError.Render("error: ")+err.Error())
		os.Exit(1)
	}
}

func addCosmologyFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&h0, "h0", config.DefaultH0, "Hubble constant in km/s/Mpc")
	cmd.Flags().Float64Var(&omegaM, "omega-m", config.DefaultOmegaM, "matter density fraction")
	cmd.Flags().Float64Var(&omegaR, "omega-r", 0, "radiation density fraction")
	cmd.Flags().Float64Var(&omegaL, "omega-l", 0, "dark energy density fraction (default 1 - omega-m - omega-r)")
	cmd.Flags().StringVar(&unitName, "unit", config.DefaultUnit, "distance unit (mpc or cm)")
}

func addExtendFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&maxZ, "max-z", cosmo.DefaultMaxZ, "maximum redshift")
	cmd.Flags().Float64Var(&maxDL, "max-dl", 0, "maximum luminosity distance (output unit)")
	cmd.Flags().Float64Var(&maxDc, "max-dc", 0, "maximum comoving distance (output unit)")
	cmd.Flags().Float64Var(&maxVc, "max-vc", 0, "maximum comoving volume (output unit cubed)")
	cmd.Flags().Float64Var(&dz, "dz", cosmo.DefaultStep, "redshift step")
	cmd.Flags().IntVar(&maxSteps, "max-steps", cosmo.DefaultMaxSteps, "step ceiling per extend call")
	cmd.Flags().Float64Var(&zCeiling, "z-ceiling", cosmo.DefaultZCeiling, "redshift extend never steps past")
	cmd.Flags().StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator (euler, rk4, trapezoid)")
}

// loadConfig layers defaults, the preset, the config file and finally any
// flag the user set explicitly.
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
	if flags.Changed("h0") {
		cfg.Cosmology.H0 = h0
	}
	if flags.Changed("omega-m") {
		cfg.Cosmology.OmegaMatter = omegaM
		if !flags.Changed("omega-l") {
			cfg.Cosmology.OmegaLambda = nil
		}
	}
	if flags.Changed("omega-r") {
		cfg.Cosmology.OmegaRadiation = omegaR
		if !flags.Changed("omega-l") {
			cfg.Cosmology.OmegaLambda = nil
		}
	}
	if flags.Changed("omega-l") {
		v := omegaL
		cfg.Cosmology.OmegaLambda = &v
	}
	if flags.Changed("unit") {
		cfg.Cosmology.Unit = unitName
	}
	if flags.Changed("max-z") {
		cfg.Extend.MaxZ = maxZ
	}
	if flags.Changed("max-dl") {
		cfg.Extend.MaxDL = maxDL
	}
	if flags.Changed("max-dc") {
		cfg.Extend.MaxDc = maxDc
	}
	if flags.Changed("max-vc") {
		cfg.Extend.MaxVc = maxVc
	}
	if flags.Changed("dz") {
		cfg.Extend.Dz = dz
	}
	if flags.Changed("max-steps") {
		cfg.Extend.MaxSteps = maxSteps
	}
	if flags.Changed("z-ceiling") {
		cfg.Extend.ZCeiling = zCeiling
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}

	return cfg, nil
}

func tableOptions() []cosmo.Option {
	if !verbose {
		return nil
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return []cosmo.Option{cosmo.WithLogger(logger)}
}

func displayName() string {
	switch {
	case runName != "":
		return runName
	case preset != "":
		return preset
	default:
		return "custom"
	}
}
