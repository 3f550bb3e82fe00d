package dynamo

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// DefaultGravityMagnitude is the default downward acceleration in units/ms².
const DefaultGravityMagnitude = 1e-5

// DefaultGravity points down with DefaultGravityMagnitude.
func DefaultGravity() mgl64.Vec2 {
	return mgl64.Vec2{0, -DefaultGravityMagnitude}
}

// Axis selects the boundary orientation of a plane.
type Axis uint8

const (
	// AxisX planes are horizontal lines and constrain Y.
	AxisX Axis = iota
	// AxisY planes are vertical lines and constrain X.
	AxisY
)

// Constrains returns the coordinate index (0 = x, 1 = y) the plane limits.
func (a Axis) Constrains() int {
	if a == AxisX {
		return 1
	}
	return 0
}

func (a Axis) Valid() bool { return a == AxisX || a == AxisY }

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	default:
		return fmt.Sprintf("axis(%d)", uint8(a))
	}
}

// ParseAxis converts "x" or "y" to an Axis.
func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "x":
		return AxisX, nil
	case "y":
		return AxisY, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidAxis, s)
	}
}

// Direction picks the allowed side of a plane.
type Direction int8

const (
	Positive Direction = 1
	Negative Direction = -1
)

func (d Direction) Valid() bool { return d == Positive || d == Negative }

// ParseDirection accepts 1 or -1.
func ParseDirection(v int) (Direction, error) {
	switch v {
	case 1:
		return Positive, nil
	case -1:
		return Negative, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrInvalidDirection, v)
	}
}

// Plane is an infinite axis-aligned boundary. Planes are never mutated once
// added to a world.
type Plane struct {
	Axis      Axis
	Direction Direction
	Pos       float64
}

// Validate reports whether the plane uses values from the closed axis and
// direction sets.
func (p Plane) Validate() error {
	if !p.Axis.Valid() {
		return fmt.Errorf("%w: %v", ErrInvalidAxis, p.Axis)
	}
	if !p.Direction.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidDirection, p.Direction)
	}
	return nil
}

// Body is a simulated object. Elasticity is expected in [0, 1] but not enforced.
type Body struct {
	Pos        mgl64.Vec2
	Vel        mgl64.Vec2
	Elasticity float64
	Shape      Shape
}

// NewBall returns a ball body of the given diameter.
func NewBall(x, y, vx, vy, size, elasticity float64) Body {
	return Body{
		Pos:        mgl64.Vec2{x, y},
		Vel:        mgl64.Vec2{vx, vy},
		Elasticity: elasticity,
		Shape:      Ball{Size: size},
	}
}

// Speed returns the velocity magnitude.
func (b Body) Speed() float64 { return b.Vel.Len() }

// IsValid reports whether every component is finite.
func (b Body) IsValid() bool {
	for _, v := range [...]float64{b.Pos[0], b.Pos[1], b.Vel[0], b.Vel[1]} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Snapshot is a deep copy of world state for read-only consumers.
type Snapshot struct {
	Gravity  mgl64.Vec2
	Bodies   []Body
	Planes   []Plane
	PrevTick time.Time
}

// Flatten packs bodies as [x, y, vx, vy] per body.
func (s Snapshot) Flatten() []float64 {
	out := make([]float64, 0, len(s.Bodies)*4)
	for _, b := range s.Bodies {
		out = append(out, b.Pos[0], b.Pos[1], b.Vel[0], b.Vel[1])
	}
	return out
}

// Integrator advances a single body by dt milliseconds under gravity g.
type Integrator interface {
	Step(b *Body, g mgl64.Vec2, dt float64)
}
