package metrics

import (
	"math"

	"github.com/san-kum/massspring/internal/dynamo"
	"github.com/san-kum/massspring/internal/physics"
)

// Energy is the mean total energy over observed frames. Gravity only
// counts when the scenario has external forces.
type Energy struct {
	name        string
	features    dynamo.Features
	samples     int
	totalEnergy float64
}

func NewEnergy(features dynamo.Features) *Energy {
	return &Energy{
		name:     "energy",
		features: features,
	}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(f dynamo.Frame) {
	e.totalEnergy += total(f, e.features)
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

// EnergyDrift tracks the largest relative departure from the first
// observed total energy.
type EnergyDrift struct {
	name          string
	features      dynamo.Features
	initialEnergy float64
	currentEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift(features dynamo.Features) *EnergyDrift {
	return &EnergyDrift{
		name:     "energy_drift",
		features: features,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(f dynamo.Frame) {
	energy := total(f, e.features)

	if e.samples == 0 {
		e.initialEnergy = energy
	}

	e.currentEnergy = energy
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
	e.currentEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}

func total(f dynamo.Frame, features dynamo.Features) float64 {
	k, el, g := physics.NewEvaluator(f.Params, features).Energy(f.Points, f.Springs)
	return k + el + g
}
