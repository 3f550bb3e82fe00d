package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/san-kum/rebound/internal/config"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	logLevel   string
	addr       string
	configFile string
	preset     string
	integrator string
	tick       float64
	duration   float64
	maxDt      float64
	elasticity float64

	sweepParam string
	sweepFrom  float64
	sweepTo    float64
	sweepSteps int
	workers    int

	logger *log.Logger
)

func main() {
	env, err := config.LoadEnv(".env")
	if err != nil {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(1)
	}

	rootCmd := &cobra.Command{
		Use:   "rebound",
		Short: "2d plane-bounce motion simulator",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogger()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLive(cmd, nil)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", env.DataDir, "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", env.LogLevel, "log level (debug, info, warn, error)")
	addScenarioFlags(rootCmd)

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a headless simulation and store it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addScenarioFlags(runCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot body trajectories of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run states to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a full run to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "bounce and frequency analysis of body 0",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "run the world live in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addScenarioFlags(liveCmd)

	serveCmd := &cobra.Command{
		Use:   "serve [preset]",
		Short: "stream the world over websocket",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runServe,
	}
	addScenarioFlags(serveCmd)
	serveCmd.Flags().StringVar(&addr, "addr", env.Addr, "listen address")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("presets:")
			for _, p := range config.ListPresets() {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	benchCmd := &cobra.Command{
		Use:   "bench [preset]",
		Short: "benchmark step throughput",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchScenario,
	}
	addScenarioFlags(benchCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep [preset]",
		Short: "run a parameter sweep in parallel",
		Args:  cobra.MaximumNArgs(1),
		RunE:  sweepScenario,
	}
	addScenarioFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "elasticity", "parameter to sweep (elasticity, height, gravity)")
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", 0.1, "first value")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 1.0, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 10, "number of values")
	sweepCmd.Flags().IntVar(&workers, "workers", 0, "max concurrent runs (0 = unlimited)")

	compareCmd := &cobra.Command{
		Use:   "compare [preset] [integrator1] [integrator2] ...",
		Short: "compare integrators on the same scenario",
		Args:  cobra.MinimumNArgs(2),
		RunE:  compareIntegrators,
	}
	addScenarioFlags(compareCmd)

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, exportCSVCmd, exportJSONCmd, analyzeCmd,
		liveCmd, serveCmd, presetsCmd, benchCmd, sweepCmd, compareCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addScenarioFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "scenario file (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset scenario")
	cmd.Flags().StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator (trapezoidal, euler, semi_implicit)")
	cmd.Flags().Float64Var(&tick, "tick", config.DefaultTick, "step length in ms")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration in ms")
	cmd.Flags().Float64Var(&maxDt, "max-dt", 0, "cap on a single step in ms (0 = none)")
	cmd.Flags().Float64Var(&elasticity, "elasticity", config.DefaultElasticity, "elasticity applied to every body")
}

func setupLogger() error {
	level, err := log.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}
	logger = log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: true,
		Prefix:          "rebound",
	})
	return nil
}

// loadScenario resolves the scenario from, in order: the positional preset
// or --preset, --config, then any explicitly set flags.
func loadScenario(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()

	name := preset
	if len(args) > 0 {
		name = args[0]
	}
	if name != "" {
		cfg = config.GetPreset(name)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
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
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("tick") {
		cfg.Tick = tick
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("max-dt") {
		cfg.MaxDt = maxDt
	}
	if flags.Changed("elasticity") {
		for i := range cfg.Bodies {
			cfg.Bodies[i].Elasticity = elasticity
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
