package metrics

import (
	"math"

	"github.com/san-kum/rebound/internal/dynamo"
)

// MechanicalEnergy returns kinetic plus potential energy per unit mass summed
// over all bodies. Potential is measured from the origin along gravity.
func MechanicalEnergy(snap dynamo.Snapshot) float64 {
	total := 0.0
	for _, b := range snap.Bodies {
		ke := 0.5 * b.Vel.Dot(b.Vel)
		pe := -snap.Gravity.Dot(b.Pos)
		total += ke + pe
	}
	return total
}

type Energy struct {
	name        string
	samples     int
	totalEnergy float64
}

func NewEnergy() *Energy {
	return &Energy{name: "energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(snap dynamo.Snapshot, t float64) {
	e.totalEnergy += MechanicalEnergy(snap)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// EnergyDrift tracks the largest relative departure from the first observed
// energy. Inelastic rebounds show up here as loss.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(snap dynamo.Snapshot, t float64) {
	energy := MechanicalEnergy(snap)

	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
