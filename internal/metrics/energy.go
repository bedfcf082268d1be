package metrics

import (
	"math"

	"github.com/san-kum/gravitas/internal/dynamo"
)

// KineticEnergy is the mean total kinetic energy over the observed ticks.
type KineticEnergy struct {
	name    string
	samples int
	total   float64
}

func NewKineticEnergy() *KineticEnergy {
	return &KineticEnergy{name: "kinetic_energy"}
}

func (e *KineticEnergy) Name() string { return e.name }

func (e *KineticEnergy) Observe(p *dynamo.Population, tick int) {
	e.total += p.KineticEnergy()
	e.samples++
}

func (e *KineticEnergy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

func (e *KineticEnergy) Reset() {
	e.total = 0
	e.samples = 0
}

// MassDrift is the largest relative deviation of total mass from the first
// observed tick. Merges and burst expiry move it; nothing else should.
type MassDrift struct {
	name        string
	initialMass float64
	maxDrift    float64
	samples     int
}

func NewMassDrift() *MassDrift {
	return &MassDrift{name: "mass_drift"}
}

func (m *MassDrift) Name() string { return m.name }

func (m *MassDrift) Observe(p *dynamo.Population, tick int) {
	mass := p.TotalMass()
	if m.samples == 0 {
		m.initialMass = mass
	}
	m.samples++

	if m.initialMass != 0 {
		drift := math.Abs(mass-m.initialMass) / m.initialMass
		m.maxDrift = math.Max(m.maxDrift, drift)
	}
}

func (m *MassDrift) Value() float64 { return m.maxDrift }

func (m *MassDrift) Reset() {
	m.initialMass = 0
	m.maxDrift = 0
	m.samples = 0
}

// PrimaryMass reports the combined mass of the primary bodies at the last
// observed tick.
type PrimaryMass struct {
	name string
	mass float64
}

func NewPrimaryMass() *PrimaryMass {
	return &PrimaryMass{name: "primary_mass"}
}

func (m *PrimaryMass) Name() string { return m.name }

func (m *PrimaryMass) Observe(p *dynamo.Population, tick int) {
	m.mass = p.MassOf(dynamo.KindPrimary)
}

func (m *PrimaryMass) Value() float64 { return m.mass }
func (m *PrimaryMass) Reset()         { m.mass = 0 }
