package experiment

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/san-kum/rebound/internal/config"
	"github.com/san-kum/rebound/internal/dynamo"
)

func TestRegistryIntegrators(t *testing.T) {
	reg := NewRegistry()

	want := []string{"euler", "semi_implicit", "trapezoidal"}
	if got := reg.ListIntegrators(); !reflect.DeepEqual(got, want) {
		t.Errorf("ListIntegrators() = %v, want %v", got, want)
	}

	for _, name := range append(want, "") {
		if _, err := reg.GetIntegrator(name); err != nil {
			t.Errorf("GetIntegrator(%q) failed: %v", name, err)
		}
	}

	if _, err := reg.GetIntegrator("rk4"); err == nil {
		t.Error("expected error for unknown integrator")
	}
}

func TestDefaultMetricsNames(t *testing.T) {
	seen := map[string]bool{}
	for _, m := range NewRegistry().DefaultMetrics() {
		if seen[m.Name()] {
			t.Errorf("duplicate metric name %q", m.Name())
		}
		seen[m.Name()] = true
	}
	for _, name := range []string{"energy", "rebounds", "peak_height"} {
		if !seen[name] {
			t.Errorf("missing metric %q", name)
		}
	}
}

func TestExperimentRun(t *testing.T) {
	cfg := config.GetPreset("drop")
	cfg.Duration = 10000

	result, err := Run(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.Scene != "drop" {
		t.Errorf("scene = %q, want drop", result.Scene)
	}
	if result.Rebounds == 0 {
		t.Error("expected the ball to hit the floor within 10s")
	}
	if result.Metrics["rebounds"] != float64(result.Rebounds) {
		t.Errorf("rebounds metric %v disagrees with result %d", result.Metrics["rebounds"], result.Rebounds)
	}
	if result.Metrics["containment"] != 1 {
		t.Errorf("ball escaped the floor: containment %v", result.Metrics["containment"])
	}
}

func TestExperimentSetupErrors(t *testing.T) {
	reg := NewRegistry()

	cfg := config.DefaultConfig()
	cfg.Integrator = "leapfrog"
	if err := New(cfg).Setup(reg, nil, nil); err == nil {
		t.Error("expected unknown integrator error")
	}

	cfg = config.DefaultConfig()
	cfg.Tick = 0
	if err := New(cfg).Setup(reg, nil, nil); !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}

	if _, err := New(config.DefaultConfig()).Run(context.Background()); err == nil {
		t.Error("expected error when running without setup")
	}
}
