package dynamo

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// BoundingBox is the axis-aligned extent of a body. It is always derived from
// current body state and never stored.
type BoundingBox struct {
	Top    float64
	Bottom float64
	Left   float64
	Right  float64
}

// Shape is the closed set of body extents. Adding a variant means
// implementing Bounds; the unexported marker keeps the set inside this package.
type Shape interface {
	Bounds(center mgl64.Vec2) BoundingBox
	Kind() string
	isShape()
}

// Ball is a circle of diameter Size.
type Ball struct {
	Size float64
}

func (b Ball) Bounds(c mgl64.Vec2) BoundingBox {
	half := b.Size / 2
	return BoundingBox{
		Top:    c[1] + half,
		Bottom: c[1] - half,
		Left:   c[0] - half,
		Right:  c[0] + half,
	}
}

func (Ball) Kind() string { return "ball" }
func (Ball) isShape()     {}

// Point has no extent; its box collapses onto the body position.
type Point struct{}

func (Point) Bounds(c mgl64.Vec2) BoundingBox { return pointBox(c) }
func (Point) Kind() string                    { return "point" }
func (Point) isShape()                        {}

func pointBox(c mgl64.Vec2) BoundingBox {
	return BoundingBox{Top: c[1], Bottom: c[1], Left: c[0], Right: c[0]}
}

// ParseShape builds a shape from its config name. size is ignored for points.
func ParseShape(kind string, size float64) (Shape, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "ball":
		return Ball{Size: size}, nil
	case "point":
		return Point{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedShape, kind)
	}
}

// BoundingBoxOf computes the box of b from its current position.
func BoundingBoxOf(b Body) BoundingBox {
	if b.Shape == nil {
		return pointBox(b.Pos)
	}
	return b.Shape.Bounds(b.Pos)
}

// RelevantEdge returns the box edge that leads when approaching p from its
// allowed side.
func RelevantEdge(p Plane, box BoundingBox) float64 {
	switch {
	case p.Axis == AxisX && p.Direction == Positive:
		return box.Bottom
	case p.Axis == AxisX && p.Direction == Negative:
		return box.Top
	case p.Axis == AxisY && p.Direction == Positive:
		return box.Left
	}
	return box.Right
}
