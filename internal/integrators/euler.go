package integrators

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rebound/internal/dynamo"
)

// Euler is explicit forward Euler: position moves with the old velocity.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (Euler) Step(b *dynamo.Body, g mgl64.Vec2, dt float64) {
	for i := 0; i < 2; i++ {
		b.Pos[i] += b.Vel[i] * dt
		b.Vel[i] += g[i] * dt
	}
}

// SemiImplicitEuler updates velocity first and moves with the new velocity.
type SemiImplicitEuler struct{}

func NewSemiImplicitEuler() *SemiImplicitEuler {
	return &SemiImplicitEuler{}
}

func (SemiImplicitEuler) Step(b *dynamo.Body, g mgl64.Vec2, dt float64) {
	for i := 0; i < 2; i++ {
		b.Vel[i] += g[i] * dt
		b.Pos[i] += b.Vel[i] * dt
	}
}
