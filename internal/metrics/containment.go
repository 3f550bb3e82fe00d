package metrics

import (
	"github.com/san-kum/rebound/internal/collision"
	"github.com/san-kum/rebound/internal/dynamo"
)

// Containment is the fraction of samples in which no body sits past any
// plane after resolution.
type Containment struct {
	name       string
	violations int
	samples    int
}

func NewContainment() *Containment {
	return &Containment{name: "containment"}
}

func (c *Containment) Name() string {
	return c.name
}

func (c *Containment) Observe(snap dynamo.Snapshot, t float64) {
	c.samples++
	for _, b := range snap.Bodies {
		for _, p := range snap.Planes {
			if _, ok := collision.Overlaps(b, p); ok {
				c.violations++
				return
			}
		}
	}
}

func (c *Containment) Value() float64 {
	if c.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(c.violations)/float64(c.samples)
}

func (c *Containment) Reset() {
	c.violations = 0
	c.samples = 0
}
