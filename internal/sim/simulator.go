package sim

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/san-kum/rebound/internal/dynamo"
	"github.com/san-kum/rebound/internal/integrators"
)

// Simulator runs scenes headless against a manual clock so every step sees
// exactly Config.Tick milliseconds.
type Simulator struct {
	integrator dynamo.Integrator
	metrics    []Metric
	observers  []Observer
	logger     *log.Logger
}

func NewSimulator(integrator dynamo.Integrator) *Simulator {
	if integrator == nil {
		integrator = integrators.NewTrapezoidal()
	}
	return &Simulator{
		integrator: integrator,
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
		logger:     log.New(io.Discard),
	}
}

func (s *Simulator) AddMetric(m Metric)      { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer)  { s.observers = append(s.observers, o) }
func (s *Simulator) SetLogger(l *log.Logger) { s.logger = l }

func (s *Simulator) Run(ctx context.Context, scene Scene, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	start := time.Unix(0, 0).UTC()
	clock := NewManualClock(start)
	hooks := &runHooks{metrics: s.metrics}

	opts := []Option{
		WithClock(clock),
		WithIntegrator(s.integrator),
		WithDefaultGravity(scene.DefaultGravity),
		WithMaxDt(cfg.MaxDt),
		WithLogger(s.logger),
		WithObserver(hooks),
	}
	for _, o := range s.observers {
		opts = append(opts, WithObserver(o))
	}
	w := New(opts...)
	if err := scene.Populate(w); err != nil {
		return nil, err
	}

	steps := int(cfg.Duration / cfg.Tick)
	tick := Millis(cfg.Tick)

	result := &Result{
		Scene:   scene.Name,
		Times:   make([]float64, 0, steps+1),
		States:  make([][]float64, 0, steps+1),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	snap := w.Snapshot()
	result.Times = append(result.Times, 0)
	result.States = append(result.States, snap.Flatten())
	for _, m := range s.metrics {
		m.Observe(snap, 0)
	}

	s.logger.Debug("run started", "scene", scene.Name, "steps", steps, "tick_ms", cfg.Tick)

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		now := clock.Advance(tick)
		w.StepAt(now)
		t := elapsedMillis(start, now)

		snap = w.Snapshot()
		if cfg.ValidateState && !validSnapshot(snap) {
			err := &dynamo.SimulationError{Step: i, Time: t, Wrapped: fmt.Errorf("invalid body state (NaN/Inf)")}
			result.Errors = append(result.Errors, err)
			s.logger.Error("run aborted", "err", err)
			break
		}

		for _, m := range s.metrics {
			m.Observe(snap, t)
		}

		result.StepsTaken++
		result.Times = append(result.Times, t)
		result.States = append(result.States, snap.Flatten())
	}

	result.Rebounds = hooks.rebounds
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	s.logger.Debug("run finished", "scene", scene.Name, "steps", result.StepsTaken, "rebounds", result.Rebounds)
	return result, nil
}

func validateConfig(cfg Config) error {
	if cfg.Tick <= 0 {
		return fmt.Errorf("%w: tick must be positive, got %f", dynamo.ErrInvalidConfig, cfg.Tick)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %f", dynamo.ErrInvalidConfig, cfg.Duration)
	}
	if cfg.MaxDt < 0 {
		return fmt.Errorf("%w: max dt must not be negative, got %f", dynamo.ErrInvalidConfig, cfg.MaxDt)
	}
	return nil
}

func validSnapshot(snap dynamo.Snapshot) bool {
	for _, b := range snap.Bodies {
		if !b.IsValid() {
			return false
		}
	}
	return true
}

// runHooks counts rebounds and forwards them to metrics that care.
type runHooks struct {
	metrics  []Metric
	rebounds int
}

func (h *runHooks) OnStep(dynamo.Snapshot, float64) {}

func (h *runHooks) OnRebound(body int, p dynamo.Plane) {
	h.rebounds++
	for _, m := range h.metrics {
		if ro, ok := m.(ReboundObserver); ok {
			ro.OnRebound(body, p)
		}
	}
}
