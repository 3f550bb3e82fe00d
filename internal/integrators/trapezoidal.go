package integrators

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rebound/internal/dynamo"
)

// Trapezoidal advances position with the mean of the pre- and post-step
// velocity. Under constant gravity this is exact for free flight.
type Trapezoidal struct{}

func NewTrapezoidal() *Trapezoidal {
	return &Trapezoidal{}
}

func (Trapezoidal) Step(b *dynamo.Body, g mgl64.Vec2, dt float64) {
	prevVelY := b.Vel[1]
	b.Vel[1] = b.Vel[1] + g[1]*dt
	b.Pos[1] = b.Pos[1] + (prevVelY+b.Vel[1])/2*dt

	prevVelX := b.Vel[0]
	b.Vel[0] = b.Vel[0] + g[0]*dt
	b.Pos[0] = b.Pos[0] + (prevVelX+b.Vel[0])/2*dt
}
