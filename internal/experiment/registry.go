package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/rebound/internal/dynamo"
	"github.com/san-kum/rebound/internal/integrators"
	"github.com/san-kum/rebound/internal/metrics"
	"github.com/san-kum/rebound/internal/sim"
)

type Registry struct {
	integrators map[string]func() dynamo.Integrator
}

func NewRegistry() *Registry {
	r := &Registry{
		integrators: make(map[string]func() dynamo.Integrator),
	}

	r.integrators["trapezoidal"] = func() dynamo.Integrator { return integrators.NewTrapezoidal() }
	r.integrators["euler"] = func() dynamo.Integrator { return integrators.NewEuler() }
	r.integrators["semi_implicit"] = func() dynamo.Integrator { return integrators.NewSemiImplicitEuler() }

	return r
}

// GetIntegrator returns a fresh integrator. An empty name selects trapezoidal.
func (r *Registry) GetIntegrator(name string) (dynamo.Integrator, error) {
	if name == "" {
		name = "trapezoidal"
	}
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

func (r *Registry) ListIntegrators() []string {
	names := make([]string, 0, len(r.integrators))
	for name := range r.integrators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics tracks the first body's bounce alongside global energy and
// containment.
func (r *Registry) DefaultMetrics() []sim.Metric {
	return []sim.Metric{
		metrics.NewEnergy(),
		metrics.NewEnergyDrift(),
		metrics.NewRebounds(),
		metrics.NewPeakHeight(0),
		metrics.NewContainment(),
	}
}
