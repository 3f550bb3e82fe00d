package metrics

import (
	"math"

	"github.com/san-kum/rebound/internal/dynamo"
)

// Rebounds counts plane hits across all bodies.
type Rebounds struct {
	name  string
	count int
}

func NewRebounds() *Rebounds {
	return &Rebounds{name: "rebounds"}
}

func (r *Rebounds) Name() string                           { return r.name }
func (r *Rebounds) Observe(dynamo.Snapshot, float64)       {}
func (r *Rebounds) OnRebound(body int, plane dynamo.Plane) { r.count++ }
func (r *Rebounds) Value() float64                         { return float64(r.count) }
func (r *Rebounds) Reset()                                 { r.count = 0 }

// PeakHeight records the highest y one body reaches after its first
// rebound, i.e. the apex of its first bounce.
type PeakHeight struct {
	name    string
	body    int
	peak    float64
	bounced bool
}

func NewPeakHeight(body int) *PeakHeight {
	return &PeakHeight{name: "peak_height", body: body, peak: math.Inf(-1)}
}

func (p *PeakHeight) Name() string { return p.name }

func (p *PeakHeight) OnRebound(body int, plane dynamo.Plane) {
	if body == p.body {
		p.bounced = true
	}
}

func (p *PeakHeight) Observe(snap dynamo.Snapshot, t float64) {
	if !p.bounced || p.body >= len(snap.Bodies) {
		return
	}
	p.peak = math.Max(p.peak, snap.Bodies[p.body].Pos[1])
}

func (p *PeakHeight) Value() float64 {
	if math.IsInf(p.peak, -1) {
		return 0
	}
	return p.peak
}

func (p *PeakHeight) Reset() {
	p.peak = math.Inf(-1)
	p.bounced = false
}
