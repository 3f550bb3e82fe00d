package experiment

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/san-kum/rebound/internal/config"
	"github.com/san-kum/rebound/internal/sim"
)

// Experiment is a configured, repeatable headless run.
type Experiment struct {
	cfg       *config.Config
	scene     sim.Scene
	simulator *sim.Simulator
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{cfg: cfg}
}

// Setup validates the config and wires the named integrator and metrics.
func (e *Experiment) Setup(reg *Registry, metrics []sim.Metric, logger *log.Logger) error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}

	integ, err := reg.GetIntegrator(e.cfg.Integrator)
	if err != nil {
		return err
	}

	scene, err := e.cfg.Scene()
	if err != nil {
		return err
	}
	e.scene = scene

	e.simulator = sim.NewSimulator(integ)
	if logger != nil {
		e.simulator.SetLogger(logger)
	}
	for _, m := range metrics {
		e.simulator.AddMetric(m)
	}
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Run(ctx, e.scene, e.cfg.RunConfig())
}

func (e *Experiment) Config() *config.Config { return e.cfg }

// GetSimulator returns the underlying simulator for adding observers.
func (e *Experiment) GetSimulator() *sim.Simulator {
	return e.simulator
}

// Run is a one-shot helper: setup with the registry defaults, then run.
func Run(ctx context.Context, cfg *config.Config, logger *log.Logger) (*sim.Result, error) {
	reg := NewRegistry()
	exp := New(cfg)
	if err := exp.Setup(reg, reg.DefaultMetrics(), logger); err != nil {
		return nil, err
	}
	return exp.Run(ctx)
}
