package sim_test

import (
	"bytes"
	"math"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/rebound/internal/dynamo"
	"github.com/san-kum/rebound/internal/sim"
)

const frame = 16.67

var floor = dynamo.Plane{Axis: dynamo.AxisX, Direction: dynamo.Positive, Pos: 0}

type recorder struct {
	steps    int
	lastDt   float64
	rebounds []int
}

func (r *recorder) OnStep(_ dynamo.Snapshot, dt float64) {
	r.steps++
	r.lastDt = dt
}

func (r *recorder) OnRebound(body int, _ dynamo.Plane) {
	r.rebounds = append(r.rebounds, body)
}

var _ = Describe("World", func() {
	var (
		clock *sim.ManualClock
		world *sim.World
	)

	step := func(ms float64) {
		world.StepAt(clock.Advance(sim.Millis(ms)))
	}

	BeforeEach(func() {
		clock = sim.NewManualClock(time.Unix(1700000000, 0))
		world = sim.New(sim.WithClock(clock))
	})

	Describe("construction", func() {
		It("starts empty with default gravity", func() {
			Expect(world.State()).To(Equal(sim.Empty))
			Expect(world.Gravity()).To(Equal(mgl64.Vec2{0, -dynamo.DefaultGravityMagnitude}))
			Expect(world.PrevTick()).To(Equal(clock.Now()))
		})

		It("keeps separate state per instance", func() {
			other := sim.New(sim.WithClock(clock))
			Expect(world.AddBody(dynamo.NewBall(0, 1, 0, 0, 1, 1))).To(Succeed())
			Expect(other.NumBodies()).To(BeZero())
		})
	})

	Describe("mutation", func() {
		It("appends bodies and planes in order", func() {
			Expect(world.AddBody(dynamo.NewBall(1, 1, 0, 0, 1, 1))).To(Succeed())
			Expect(world.AddBody(dynamo.NewBall(2, 2, 0, 0, 1, 1))).To(Succeed())
			Expect(world.AddPlane(floor)).To(Succeed())

			snap := world.Snapshot()
			Expect(world.State()).To(Equal(sim.Populated))
			Expect(snap.Bodies).To(HaveLen(2))
			Expect(snap.Bodies[0].Pos[0]).To(Equal(1.0))
			Expect(snap.Bodies[1].Pos[0]).To(Equal(2.0))
			Expect(snap.Planes).To(ConsistOf(floor))
		})

		It("becomes populated from a plane alone", func() {
			Expect(world.AddPlane(floor)).To(Succeed())
			Expect(world.State()).To(Equal(sim.Populated))
		})

		It("rejects bodies without a shape", func() {
			err := world.AddBody(dynamo.Body{Elasticity: 1})
			Expect(err).To(MatchError(dynamo.ErrUnsupportedShape))
			Expect(world.NumBodies()).To(BeZero())
		})

		It("rejects planes outside the closed axis and direction sets", func() {
			Expect(world.AddPlane(dynamo.Plane{Axis: dynamo.Axis(3), Direction: dynamo.Positive})).
				To(MatchError(dynamo.ErrInvalidAxis))
			Expect(world.AddPlane(dynamo.Plane{Axis: dynamo.AxisY, Direction: 2})).
				To(MatchError(dynamo.ErrInvalidDirection))
			Expect(world.NumPlanes()).To(BeZero())
		})

		It("accepts out-of-range elasticity without validation", func() {
			Expect(world.AddBody(dynamo.NewBall(0, 1, 0, 0, 1, 3))).To(Succeed())
		})

		It("changes gravity only through the setter", func() {
			world.SetGravity(1e-5, 0)
			Expect(world.Gravity()).To(Equal(mgl64.Vec2{1e-5, 0}))

			snap := world.Snapshot()
			snap.Gravity[0] = 99
			snap.Bodies = append(snap.Bodies, dynamo.NewBall(0, 0, 0, 0, 1, 1))
			Expect(world.Gravity()[0]).To(Equal(1e-5))
			Expect(world.NumBodies()).To(BeZero())
		})

		It("hands out snapshots that do not alias bodies", func() {
			Expect(world.AddBody(dynamo.NewBall(0, 5, 0, 0, 1, 1))).To(Succeed())
			snap := world.Snapshot()
			snap.Bodies[0].Pos[1] = -100
			Expect(world.Snapshot().Bodies[0].Pos[1]).To(Equal(5.0))
		})
	})

	Describe("reset", func() {
		It("clears bodies and planes and restores default gravity", func() {
			Expect(world.AddBody(dynamo.NewBall(0, 1, 0, 0, 1, 1))).To(Succeed())
			Expect(world.AddPlane(floor)).To(Succeed())
			world.SetGravity(3, 4)

			world.Reset()

			snap := world.Snapshot()
			Expect(snap.Bodies).To(BeEmpty())
			Expect(snap.Planes).To(BeEmpty())
			Expect(snap.Gravity).To(Equal(dynamo.DefaultGravity()))
			Expect(world.State()).To(Equal(sim.Empty))
		})

		It("restores a configured default gravity", func() {
			w := sim.New(sim.WithClock(clock), sim.WithDefaultGravity(mgl64.Vec2{0, -2e-5}))
			w.SetGravity(0, 0)
			w.Reset()
			Expect(w.Gravity()).To(Equal(mgl64.Vec2{0, -2e-5}))
		})
	})

	Describe("step", func() {
		It("integrates free fall exactly", func() {
			Expect(world.AddBody(dynamo.NewBall(0, 0, 0, 0, 1, 1))).To(Succeed())
			step(frame)

			b := world.Snapshot().Bodies[0]
			g := -dynamo.DefaultGravityMagnitude
			Expect(b.Vel[1]).To(BeNumerically("~", g*frame, 1e-18))
			Expect(b.Pos[1]).To(BeNumerically("~", 0.5*g*frame*frame, 1e-15))
		})

		It("is a no-op on bodies for dt = 0 but still advances the tick", func() {
			Expect(world.AddBody(dynamo.NewBall(1, 2, 0.1, -0.2, 1, 1))).To(Succeed())
			Expect(world.AddPlane(floor)).To(Succeed())
			before := world.Snapshot()

			now := clock.Now()
			world.StepAt(now)

			after := world.Snapshot()
			Expect(after.Bodies).To(Equal(before.Bodies))
			Expect(after.PrevTick).To(Equal(now))
		})

		It("clamps a backwards clock to a zero step and logs it", func() {
			var buf bytes.Buffer
			w := sim.New(sim.WithClock(clock), sim.WithLogger(log.New(&buf)))
			Expect(w.AddBody(dynamo.NewBall(0, 10, 0, 0, 1, 1))).To(Succeed())

			earlier := clock.Now().Add(-time.Second)
			w.StepAt(earlier)

			Expect(w.Snapshot().Bodies[0].Pos).To(Equal(mgl64.Vec2{0, 10}))
			Expect(w.PrevTick()).To(Equal(earlier))
			Expect(buf.String()).To(ContainSubstring("clock moved backwards"))
		})

		It("uses the injected clock for Step", func() {
			rec := &recorder{}
			w := sim.New(sim.WithClock(clock), sim.WithObserver(rec))
			clock.Advance(sim.Millis(frame))
			w.Step()
			Expect(rec.steps).To(Equal(1))
			Expect(rec.lastDt).To(Equal(frame))
		})

		It("caps dt when a max step is configured", func() {
			rec := &recorder{}
			w := sim.New(sim.WithClock(clock), sim.WithMaxDt(10), sim.WithObserver(rec))
			w.StepAt(clock.Advance(time.Second))
			Expect(rec.lastDt).To(Equal(10.0))
		})

		It("rebounds off a floor with flipped, scaled velocity and mirrored edge", func() {
			e := 0.5
			Expect(world.AddBody(dynamo.NewBall(0, 0.6, 0, -0.01, 1, e))).To(Succeed())
			Expect(world.AddPlane(floor)).To(Succeed())
			world.SetGravity(0, 0)

			step(20)

			// bottom edge moved from 0.1 to -0.1 and mirrors back to +0.1
			b := world.Snapshot().Bodies[0]
			Expect(b.Vel[1]).To(BeNumerically("~", 0.005, 1e-15))
			Expect(dynamo.BoundingBoxOf(b).Bottom).To(BeNumerically("~", 0.1, 1e-12))
		})

		It("reports rebounds to observers", func() {
			rec := &recorder{}
			w := sim.New(sim.WithClock(clock), sim.WithObserver(rec))
			Expect(w.AddBody(dynamo.NewBall(0, 10, 0, 0, 1, 1))).To(Succeed())
			Expect(w.AddBody(dynamo.NewBall(0, 0.4, 0, -0.1, 1, 1))).To(Succeed())
			Expect(w.AddPlane(floor)).To(Succeed())

			w.StepAt(clock.Advance(sim.Millis(frame)))
			Expect(rec.rebounds).To(Equal([]int{1}))
		})

		It("resolves planes in collection order", func() {
			ceiling := dynamo.Plane{Axis: dynamo.AxisX, Direction: dynamo.Negative, Pos: 0.45}
			run := func(planes ...dynamo.Plane) dynamo.Body {
				w := sim.New(sim.WithClock(clock))
				w.SetGravity(0, 0)
				Expect(w.AddBody(dynamo.NewBall(0, 0.1, 0, -0.01, 0.4, 1))).To(Succeed())
				for _, p := range planes {
					Expect(w.AddPlane(p)).To(Succeed())
				}
				w.StepAt(w.PrevTick())
				return w.Snapshot().Bodies[0]
			}

			floorFirst := run(floor, ceiling)
			ceilingFirst := run(ceiling, floor)

			Expect(floorFirst.Pos[1]).To(BeNumerically("~", 0.2, 1e-12))
			Expect(floorFirst.Vel[1]).To(BeNumerically("~", -0.01, 1e-15))
			Expect(ceilingFirst.Pos[1]).To(BeNumerically("~", 0.3, 1e-12))
			Expect(ceilingFirst.Vel[1]).To(BeNumerically("~", 0.01, 1e-15))
		})
	})

	Describe("bouncing ball", func() {
		var (
			elasticity = math.Sqrt(0.5)
			ys         []float64
			firstHit   int
		)

		BeforeEach(func() {
			world.SetGravity(0, -1e-5)
			Expect(world.AddBody(dynamo.NewBall(0, 50, 0, 0, 1, elasticity))).To(Succeed())
			Expect(world.AddPlane(floor)).To(Succeed())

			rec := &recorder{}
			world.AddObserver(rec)

			ys = ys[:0]
			firstHit = -1
			for i := 0; i < 3600; i++ {
				step(frame)
				ys = append(ys, world.Snapshot().Bodies[0].Pos[1])
				if firstHit < 0 && len(rec.rebounds) > 0 {
					firstHit = i
				}
			}
		})

		It("falls monotonically until the first contact", func() {
			Expect(firstHit).To(BeNumerically(">", 0))
			prev := 50.0
			for i := 0; i < firstHit; i++ {
				Expect(ys[i]).To(BeNumerically("<", prev), "step %d", i)
				prev = ys[i]
			}
		})

		It("loses half its peak height on every bounce", func() {
			heights := []float64{50 - 0.5}
			for i := 1; i < len(ys)-1 && len(heights) < 5; i++ {
				if ys[i] > ys[i-1] && ys[i] >= ys[i+1] {
					heights = append(heights, ys[i]-0.5)
				}
			}
			Expect(heights).To(HaveLen(5))
			for i := 1; i < len(heights); i++ {
				Expect(heights[i] / heights[i-1]).To(BeNumerically("~", elasticity*elasticity, 0.05))
			}
		})

		It("settles on the floor", func() {
			last := ys[len(ys)-1]
			Expect(last).To(BeNumerically("~", floor.Pos+0.5, 0.05))
		})
	})
})
