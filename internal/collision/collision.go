// Package collision resolves body overlap against boundary planes.
//
// The model is an instantaneous rebound: no time of impact inside the step,
// planes are rigid and infinitely thin, and planes are processed one at a
// time in collection order so a body touching two planes in the same step
// gets compounded, order-dependent corrections.
package collision

import "github.com/san-kum/rebound/internal/dynamo"

// Overlaps reports whether the leading edge of b has crossed p, and the
// signed depth of that crossing.
func Overlaps(b dynamo.Body, p dynamo.Plane) (depth float64, ok bool) {
	rel := dynamo.RelevantEdge(p, dynamo.BoundingBoxOf(b))
	if (rel-p.Pos)*float64(p.Direction) < 0 {
		return rel - p.Pos, true
	}
	return 0, false
}

// Rebound reflects b off p when it overlaps. It reports whether a rebound
// happened.
func Rebound(b *dynamo.Body, p dynamo.Plane) bool {
	depth, ok := Overlaps(*b, p)
	if !ok {
		return false
	}

	rel := p.Pos + depth
	reflected := p.Pos - depth

	i := p.Axis.Constrains()
	b.Vel[i] *= -1 * b.Elasticity
	b.Pos[i] = reflected + b.Pos[i] - rel
	return true
}

// Resolve tests b against every plane in order and returns the indices of
// the planes it rebounded off. The result is nil when nothing was hit.
func Resolve(b *dynamo.Body, planes []dynamo.Plane) []int {
	var hits []int
	for i, p := range planes {
		if Rebound(b, p) {
			hits = append(hits, i)
		}
	}
	return hits
}
