package metrics

import (
	"math"

	"github.com/san-kum/physlab/internal/dynamo"
)

// Energy averages a model's mechanical energy over the observed frames.
type Energy struct {
	name        string
	src         dynamo.Energetic
	samples     int
	totalEnergy float64
}

func NewEnergy(src dynamo.Energetic) *Energy {
	return &Energy{
		name: "energy",
		src:  src,
	}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(t float64) {
	e.totalEnergy += e.src.Energy()
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

// EnergyDrift is the largest relative departure from the first observed energy.
// Energies are compared against scale when the initial energy is zero.
type EnergyDrift struct {
	name          string
	src           dynamo.Energetic
	scale         float64
	initialEnergy float64
	currentEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift(src dynamo.Energetic, scale float64) *EnergyDrift {
	return &EnergyDrift{
		name:  "energy_drift",
		src:   src,
		scale: scale,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(t float64) {
	energy := e.src.Energy()

	if e.samples == 0 {
		e.initialEnergy = energy
	}

	e.currentEnergy = energy
	e.samples++

	ref := math.Abs(e.initialEnergy)
	if ref == 0 {
		ref = e.scale
	}
	if ref != 0 {
		drift := math.Abs(energy-e.initialEnergy) / ref
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

// Current is the most recently observed energy.
func (e *EnergyDrift) Current() float64 { return e.currentEnergy }

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.currentEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
