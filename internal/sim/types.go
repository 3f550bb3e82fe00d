package sim

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rebound/internal/dynamo"
)

// Scene is the initial content of a run.
type Scene struct {
	Name           string
	Gravity        mgl64.Vec2
	DefaultGravity mgl64.Vec2
	Bodies         []dynamo.Body
	Planes         []dynamo.Plane
}

// NewScene returns a scene using the package default gravity.
func NewScene(name string, bodies []dynamo.Body, planes []dynamo.Plane) Scene {
	return Scene{
		Name:           name,
		Gravity:        dynamo.DefaultGravity(),
		DefaultGravity: dynamo.DefaultGravity(),
		Bodies:         bodies,
		Planes:         planes,
	}
}

// Populate resets w and loads the scene into it.
func (s Scene) Populate(w *World) error {
	w.Reset()
	for i, b := range s.Bodies {
		if err := w.AddBody(b); err != nil {
			return fmt.Errorf("body %d: %w", i, err)
		}
	}
	for i, p := range s.Planes {
		if err := w.AddPlane(p); err != nil {
			return fmt.Errorf("plane %d: %w", i, err)
		}
	}
	w.SetGravity(s.Gravity[0], s.Gravity[1])
	return nil
}

// Metric accumulates a scalar over the snapshots of a run.
type Metric interface {
	Name() string
	Observe(snap dynamo.Snapshot, t float64)
	Value() float64
	Reset()
}

// Config controls a headless run. Tick, Duration and MaxDt are milliseconds.
type Config struct {
	Tick          float64
	Duration      float64
	MaxDt         float64
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Tick:          1000.0 / 60.0,
		Duration:      20000,
		ValidateState: true,
	}
}

// Result holds the recorded trajectory of a run. States are flattened as
// [x, y, vx, vy] per body.
type Result struct {
	Scene      string
	Times      []float64
	States     [][]float64
	Metrics    map[string]float64
	Rebounds   int
	StepsTaken int
	Errors     []error
}

// Series extracts one column of the flattened states, e.g. body 0 y is
// Series(0, 1).
func (r *Result) Series(body, component int) []float64 {
	idx := body*4 + component
	out := make([]float64, 0, len(r.States))
	for _, s := range r.States {
		if idx < len(s) {
			out = append(out, s[idx])
		}
	}
	return out
}
