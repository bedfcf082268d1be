package metrics

import "github.com/san-kum/gravitas/internal/dynamo"

// PeakBodies is the largest population size seen.
type PeakBodies struct {
	name string
	peak int
}

func NewPeakBodies() *PeakBodies {
	return &PeakBodies{name: "peak_bodies"}
}

func (b *PeakBodies) Name() string { return b.name }

func (b *PeakBodies) Observe(p *dynamo.Population, tick int) {
	b.peak = max(b.peak, p.Len())
}

func (b *PeakBodies) Value() float64 { return float64(b.peak) }
func (b *PeakBodies) Reset()         { b.peak = 0 }

// MeanDynamics is the average number of dynamic bodies per tick.
type MeanDynamics struct {
	name    string
	sum     int
	samples int
}

func NewMeanDynamics() *MeanDynamics {
	return &MeanDynamics{name: "mean_dynamics"}
}

func (d *MeanDynamics) Name() string { return d.name }

func (d *MeanDynamics) Observe(p *dynamo.Population, tick int) {
	d.sum += p.Count(dynamo.KindDynamic)
	d.samples++
}

func (d *MeanDynamics) Value() float64 {
	if d.samples == 0 {
		return 0
	}
	return float64(d.sum) / float64(d.samples)
}

func (d *MeanDynamics) Reset() {
	d.sum = 0
	d.samples = 0
}

// Merges counts absorptions. It is fed through dynamo.MergeObserver; Observe
// is a no-op.
type Merges struct {
	name     string
	count    int
	absorbed float64
}

func NewMerges() *Merges {
	return &Merges{name: "merges"}
}

func (m *Merges) Name() string                           { return m.name }
func (m *Merges) Observe(p *dynamo.Population, tick int) {}
func (m *Merges) Value() float64                         { return float64(m.count) }

// Absorbed is the total dynamic mass handed to primaries.
func (m *Merges) Absorbed() float64 { return m.absorbed }

func (m *Merges) OnMerge(e dynamo.MergeEvent) {
	m.count++
	m.absorbed += e.Absorbed
}

func (m *Merges) Reset() {
	m.count = 0
	m.absorbed = 0
}
