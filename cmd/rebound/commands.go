package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/rebound/internal/analysis"
	"github.com/san-kum/rebound/internal/config"
	"github.com/san-kum/rebound/internal/experiment"
	"github.com/san-kum/rebound/internal/sim"
	"github.com/san-kum/rebound/internal/storage"
	"github.com/san-kum/rebound/internal/stream"
	"github.com/san-kum/rebound/internal/viz"
	"github.com/spf13/cobra"
)

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	exp := experiment.New(cfg)
	if err := exp.Setup(registry, registry.DefaultMetrics(), logger); err != nil {
		return err
	}

	fmt.Printf("running %s (%s, tick %.2fms, %.0fms)...\n", cfg.Name, cfg.Integrator, cfg.Tick, cfg.Duration)
	start := time.Now()

	result, err := exp.Run(cmd.Context())
	if err != nil {
		return err
	}
	for _, e := range result.Errors {
		logger.Warn("run error", "err", e)
	}

	elapsed := time.Since(start)

	runID, err := st.Save(cfg.Integrator, cfg.RunConfig(), result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Printf("rebounds: %d\n", result.Rebounds)
	fmt.Println("\nmetrics:")
	for name, val := range result.Metrics {
		fmt.Printf("  %s: %.6g\n", name, val)
	}

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
	fmt.Fprintln(w, "ID\tSCENE\tTIME\tDURATION\tTICK\tINTEG\tBODIES\tREBOUNDS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.0fms\t%.2fms\t%s\t%d\t%d\n",
			run.ID,
			run.Scene,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Tick,
			run.Integrator,
			run.Bodies,
			run.Rebounds,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, result, err := st.LoadResult(args[0])
	if err != nil {
		return err
	}

	if len(result.States) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scene: %s\n", meta.Scene)
	fmt.Printf("samples: %d\n\n", len(result.States))

	bodies := min(meta.Bodies, 3)
	for b := 0; b < bodies; b++ {
		for _, c := range []struct {
			idx  int
			name string
		}{{1, "y"}, {0, "x"}} {
			data := result.Series(b, c.idx)
			graph := asciigraph.Plot(data,
				asciigraph.Height(10),
				asciigraph.Width(80),
				asciigraph.Caption(fmt.Sprintf("body %d %s vs time", b, c.name)),
			)
			fmt.Println(graph)
			fmt.Println()
		}
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	states, times, err := st.LoadStates(args[0])
	if err != nil {
		return err
	}

	if len(states) == 0 {
		return fmt.Errorf("no data to export")
	}

	return writeCSV(os.Stdout, states, times)
}

func writeCSV(out io.Writer, states [][]float64, times []float64) error {
	w := csv.NewWriter(out)

	header := []string{"time_ms"}
	for i := 0; i < len(states[0])/4; i++ {
		header = append(header,
			fmt.Sprintf("b%d_x", i), fmt.Sprintf("b%d_y", i),
			fmt.Sprintf("b%d_vx", i), fmt.Sprintf("b%d_vy", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i := range states {
		row := []string{strconv.FormatFloat(times[i], 'f', 4, 64)}
		for _, val := range states[i] {
			row = append(row, strconv.FormatFloat(val, 'f', 6, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, result, err := st.LoadResult(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, meta, result)
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, result, err := st.LoadResult(args[0])
	if err != nil {
		return err
	}

	heights := result.Series(0, 1)
	if len(heights) < 2 {
		return fmt.Errorf("no data")
	}

	fmt.Printf("bounce analysis: %s\n", meta.ID)
	fmt.Printf("scene: %s\n\n", meta.Scene)

	// Heights are measured above the lowest sample.
	base := heights[0]
	for _, h := range heights {
		base = min(base, h)
	}

	peaks := analysis.Peaks(heights)
	ratios := analysis.PeakRatios(heights[0], peaks, base)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BOUNCE\tTIME\tHEIGHT\tRATIO")
	for i, p := range peaks {
		if i >= 8 {
			break
		}
		ratio := "-"
		if i < len(ratios) {
			ratio = fmt.Sprintf("%.3f", ratios[i])
		}
		fmt.Fprintf(w, "%d\t%.0fms\t%.3f\t%s\n", i+1, result.Times[p.Index], p.Value, ratio)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(ratios) > 0 {
		fmt.Printf("\nestimated elasticity: %.3f\n", analysis.EstimateElasticity(ratios, 4))
	}
	if idx := analysis.SettleIndex(heights, base, 0.05); idx >= 0 {
		fmt.Printf("settled at: %.0fms\n", result.Times[idx])
	}

	n := 1
	for n < len(heights) {
		n *= 2
	}
	padded := make([]float64, n)
	copy(padded, heights)
	for i := len(heights); i < n; i++ {
		padded[i] = heights[len(heights)-1]
	}

	ps := analysis.PowerSpectrum(padded)
	if len(ps) > 4 {
		graph := asciigraph.Plot(ps[1:len(ps)/4],
			asciigraph.Height(12),
			asciigraph.Width(80),
			asciigraph.Caption("power spectrum (body 0 y)"),
		)
		fmt.Println()
		fmt.Println(graph)
	}

	freq := analysis.DominantFrequency(padded, meta.Tick)
	fmt.Printf("\ndominant frequency: %.3f hz\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1.0/freq)
	}

	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}

	integ, err := experiment.NewRegistry().GetIntegrator(cfg.Integrator)
	if err != nil {
		return err
	}

	scene, err := cfg.Scene()
	if err != nil {
		return err
	}

	// The terminal belongs to the TUI; world logging is discarded.
	return viz.Run(scene, integ, nil)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}

	integ, err := experiment.NewRegistry().GetIntegrator(cfg.Integrator)
	if err != nil {
		return err
	}

	scene, err := cfg.Scene()
	if err != nil {
		return err
	}

	w := sim.New(
		sim.WithIntegrator(integ),
		sim.WithDefaultGravity(scene.DefaultGravity),
		sim.WithMaxDt(cfg.MaxDt),
		sim.WithLogger(logger),
	)

	srv, err := stream.New(w, scene,
		stream.WithTick(sim.Millis(cfg.Tick)),
		stream.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	return srv.ListenAndServe(ctx, addr)
}

func benchScenario(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()

	durations := []float64{1000, 10000, 60000}
	ticks := []float64{1, 1000.0 / 60.0, 100}

	fmt.Printf("benchmarking %s (%s)\n\n", cfg.Name, cfg.Integrator)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DURATION\tTICK\tSTEPS\tTIME\tSTEPS/SEC")

	for _, dur := range durations {
		for _, tk := range ticks {
			run := cfg.Clone()
			run.Duration = dur
			run.Tick = tk

			exp := experiment.New(run)
			if err := exp.Setup(registry, nil, nil); err != nil {
				return err
			}

			start := time.Now()
			result, err := exp.Run(cmd.Context())
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			stepsPerSec := float64(result.StepsTaken) / elapsed.Seconds()
			fmt.Fprintf(w, "%.0fms\t%.2fms\t%d\t%v\t%.0f\n",
				dur, tk, result.StepsTaken, elapsed, stepsPerSec)
		}
	}

	return w.Flush()
}

func sweepScenario(cmd *cobra.Command, args []string) error {
	base, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}
	if sweepSteps < 1 {
		return fmt.Errorf("steps must be at least 1")
	}

	registry := experiment.NewRegistry()
	if _, err := registry.GetIntegrator(base.Integrator); err != nil {
		return err
	}

	values := make([]float64, sweepSteps)
	scenes := make([]sim.Scene, sweepSteps)
	for i := range values {
		v := sweepFrom
		if sweepSteps > 1 {
			v += (sweepTo - sweepFrom) * float64(i) / float64(sweepSteps-1)
		}
		values[i] = v

		cfg := base.Clone()
		if err := applySweep(cfg, sweepParam, v); err != nil {
			return err
		}
		scene, err := cfg.Scene()
		if err != nil {
			return err
		}
		scene.Name = fmt.Sprintf("%s[%s=%.3g]", cfg.Name, sweepParam, v)
		scenes[i] = scene
	}

	ens := sim.NewEnsemble(func() *sim.Simulator {
		integ, _ := registry.GetIntegrator(base.Integrator)
		s := sim.NewSimulator(integ)
		for _, m := range registry.DefaultMetrics() {
			s.AddMetric(m)
		}
		return s
	}, workers)

	start := time.Now()
	results, err := ens.Run(cmd.Context(), scenes, base.RunConfig())
	if err != nil {
		return err
	}

	fmt.Printf("sweep %s over %s: %d runs in %v\n\n", sweepParam, base.Name, len(results), time.Since(start))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.ToUpper(sweepParam)+"\tREBOUNDS\tPEAK\tENERGY_DRIFT\tFINAL_Y")
	for i, r := range results {
		finalY := 0.0
		if ys := r.Series(0, 1); len(ys) > 0 {
			finalY = ys[len(ys)-1]
		}
		fmt.Fprintf(w, "%.3g\t%d\t%.3f\t%.2e\t%.3f\n",
			values[i], r.Rebounds, r.Metrics["peak_height"], r.Metrics["energy_drift"], finalY)
	}
	return w.Flush()
}

func applySweep(cfg *config.Config, param string, v float64) error {
	switch param {
	case "elasticity":
		for i := range cfg.Bodies {
			cfg.Bodies[i].Elasticity = v
		}
	case "height":
		for i := range cfg.Bodies {
			cfg.Bodies[i].Y = v
		}
	case "gravity":
		cfg.Gravity.X = 0
		cfg.Gravity.Y = -v
		cfg.Gravity.DefaultMagnitude = v
	default:
		return fmt.Errorf("unknown sweep parameter: %s", param)
	}
	return nil
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd, args[:1])
	if err != nil {
		return err
	}
	names := args[1:]

	registry := experiment.NewRegistry()

	fmt.Printf("comparing integrators for %s (tick=%.2fms, duration=%.0fms)\n\n", cfg.Name, cfg.Tick, cfg.Duration)
	fmt.Printf("%-14s  %-12s  %-12s  %-10s  %-10s\n", "integrator", "final_y", "energy_drift", "rebounds", "time_ms")
	fmt.Println(strings.Repeat("-", 66))

	for _, name := range names {
		run := cfg.Clone()
		run.Integrator = name

		result, elapsed, err := timedRun(cmd.Context(), registry, run)
		if err != nil {
			fmt.Printf("%-14s  error: %v\n", name, err)
			continue
		}

		finalY := 0.0
		if ys := result.Series(0, 1); len(ys) > 0 {
			finalY = ys[len(ys)-1]
		}

		fmt.Printf("%-14s  %12.6f  %12.2e  %10d  %10.2f\n",
			name, finalY, result.Metrics["energy_drift"], result.Rebounds, float64(elapsed.Microseconds())/1000)
	}

	return nil
}

func timedRun(ctx context.Context, registry *experiment.Registry, cfg *config.Config) (*sim.Result, time.Duration, error) {
	exp := experiment.New(cfg)
	if err := exp.Setup(registry, registry.DefaultMetrics(), logger); err != nil {
		return nil, 0, err
	}
	start := time.Now()
	result, err := exp.Run(ctx)
	return result, time.Since(start), err
}
