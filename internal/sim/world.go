package sim

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rebound/internal/collision"
	"github.com/san-kum/rebound/internal/dynamo"
	"github.com/san-kum/rebound/internal/integrators"
)

// State is the coarse lifecycle state of a World.
type State int

const (
	Empty State = iota
	Populated
)

func (s State) String() string {
	if s == Empty {
		return "empty"
	}
	return "populated"
}

// Observer is notified after every completed step.
type Observer interface {
	OnStep(snap dynamo.Snapshot, dt float64)
}

// ReboundObserver is an optional extension notified for every plane hit.
type ReboundObserver interface {
	OnRebound(body int, plane dynamo.Plane)
}

// World owns bodies, planes, gravity and the previous tick time. It has a
// single mutator and is not safe for concurrent use; see SyncWorld.
type World struct {
	gravity        mgl64.Vec2
	defaultGravity mgl64.Vec2
	bodies         []dynamo.Body
	planes         []dynamo.Plane
	prevTick       time.Time

	clock      Clock
	integrator dynamo.Integrator
	maxDt      float64
	logger     *log.Logger
	observers  []Observer
}

type Option func(*World)

func WithClock(c Clock) Option { return func(w *World) { w.clock = c } }

func WithIntegrator(i dynamo.Integrator) Option { return func(w *World) { w.integrator = i } }

// WithDefaultGravity sets the gravity restored by New and Reset.
func WithDefaultGravity(g mgl64.Vec2) Option { return func(w *World) { w.defaultGravity = g } }

// WithMaxDt caps the per-step delta in milliseconds. Zero disables the cap.
func WithMaxDt(ms float64) Option { return func(w *World) { w.maxDt = ms } }

func WithLogger(l *log.Logger) Option { return func(w *World) { w.logger = l } }

func WithObserver(o Observer) Option {
	return func(w *World) { w.observers = append(w.observers, o) }
}

func New(opts ...Option) *World {
	w := &World{
		defaultGravity: dynamo.DefaultGravity(),
		clock:          SystemClock{},
		integrator:     integrators.NewTrapezoidal(),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = log.New(io.Discard)
	}
	w.gravity = w.defaultGravity
	w.prevTick = w.clock.Now()
	return w
}

// Reset drops every body and plane and restores the default gravity. The
// previous tick is kept so the next step measures from the last one.
func (w *World) Reset() {
	w.gravity = w.defaultGravity
	w.bodies = nil
	w.planes = nil
}

// AddBody appends b. Field ranges are not checked; a body without a shape
// is rejected.
func (w *World) AddBody(b dynamo.Body) error {
	if b.Shape == nil {
		return fmt.Errorf("%w: body has no shape", dynamo.ErrUnsupportedShape)
	}
	w.bodies = append(w.bodies, b)
	return nil
}

func (w *World) AddPlane(p dynamo.Plane) error {
	if err := p.Validate(); err != nil {
		return err
	}
	w.planes = append(w.planes, p)
	return nil
}

// SetGravity is the only way to change gravity after construction.
func (w *World) SetGravity(x, y float64) {
	w.gravity = mgl64.Vec2{x, y}
}

func (w *World) Gravity() mgl64.Vec2 { return w.gravity }

func (w *World) PrevTick() time.Time { return w.prevTick }

func (w *World) NumBodies() int { return len(w.bodies) }

func (w *World) NumPlanes() int { return len(w.planes) }

func (w *World) State() State {
	if len(w.bodies) == 0 && len(w.planes) == 0 {
		return Empty
	}
	return Populated
}

// Step advances the world by the wall time elapsed since the previous step.
func (w *World) Step() {
	w.StepAt(w.clock.Now())
}

// StepAt advances the world to now. Each body is integrated and then
// resolved against the planes before the next body is touched.
func (w *World) StepAt(now time.Time) {
	dt := elapsedMillis(w.prevTick, now)
	if dt < 0 {
		w.logger.Warn("clock moved backwards, clamping step", "dt_ms", dt)
		dt = 0
	}
	if w.maxDt > 0 && dt > w.maxDt {
		w.logger.Debug("step exceeds max dt", "dt_ms", dt, "max_dt_ms", w.maxDt)
		dt = w.maxDt
	}

	for i := range w.bodies {
		b := &w.bodies[i]
		w.integrator.Step(b, w.gravity, dt)
		for _, pi := range collision.Resolve(b, w.planes) {
			w.logger.Debug("rebound", "body", i, "plane", pi, "axis", w.planes[pi].Axis, "vel", b.Vel)
			w.notifyRebound(i, w.planes[pi])
		}
	}

	w.prevTick = now

	if len(w.observers) > 0 {
		snap := w.Snapshot()
		for _, o := range w.observers {
			o.OnStep(snap, dt)
		}
	}
}

func (w *World) notifyRebound(body int, p dynamo.Plane) {
	for _, o := range w.observers {
		if ro, ok := o.(ReboundObserver); ok {
			ro.OnRebound(body, p)
		}
	}
}

// Snapshot returns a deep copy safe to hand to readers.
func (w *World) Snapshot() dynamo.Snapshot {
	bodies := make([]dynamo.Body, len(w.bodies))
	copy(bodies, w.bodies)
	planes := make([]dynamo.Plane, len(w.planes))
	copy(planes, w.planes)
	return dynamo.Snapshot{
		Gravity:  w.gravity,
		Bodies:   bodies,
		Planes:   planes,
		PrevTick: w.prevTick,
	}
}

// AddObserver registers o for subsequent steps.
func (w *World) AddObserver(o Observer) { w.observers = append(w.observers, o) }
