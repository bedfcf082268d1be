package dynamo

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"
)

// Population is the ordered body collection. Structural changes go through
// Append and RemoveIndices, which stages call only between scans.
type Population struct {
	bodies []*Body
}

func NewPopulation(bodies ...*Body) *Population {
	p := &Population{bodies: make([]*Body, 0, len(bodies))}
	p.bodies = append(p.bodies, bodies...)
	return p
}

func (p *Population) Len() int          { return len(p.bodies) }
func (p *Population) At(i int) *Body    { return p.bodies[i] }
func (p *Population) Bodies() []*Body   { return p.bodies }
func (p *Population) Append(b ...*Body) { p.bodies = append(p.bodies, b...) }

// Indices returns the positions of every body of the given kind, in order.
func (p *Population) Indices(kind Kind) []int {
	idx := make([]int, 0, len(p.bodies))
	for i, b := range p.bodies {
		if b.Kind == kind {
			idx = append(idx, i)
		}
	}
	return idx
}

func (p *Population) Count(kind Kind) int {
	n := 0
	for _, b := range p.bodies {
		if b.Kind == kind {
			n++
		}
	}
	return n
}

// RemoveIndices drops the bodies at the given positions in a single
// compaction, preserving the relative order of survivors.
func (p *Population) RemoveIndices(idx []int) {
	if len(idx) == 0 {
		return
	}
	sorted := append([]int(nil), idx...)
	sort.Ints(sorted)

	kept := p.bodies[:0]
	next := 0
	for i, b := range p.bodies {
		for next < len(sorted) && sorted[next] < i {
			next++
		}
		if next < len(sorted) && sorted[next] == i {
			continue
		}
		kept = append(kept, b)
	}
	for i := len(kept); i < len(p.bodies); i++ {
		p.bodies[i] = nil
	}
	p.bodies = kept
}

// Nearest returns the closest body of the given kind to pos. Ties keep the
// earliest body in population order.
func (p *Population) Nearest(pos r2.Vec, kind Kind) (*Body, float64, bool) {
	var best *Body
	bestDist := math.Inf(1)
	for _, b := range p.bodies {
		if b.Kind != kind {
			continue
		}
		d := r2.Norm(r2.Sub(b.Pos, pos))
		if d < bestDist {
			best, bestDist = b, d
		}
	}
	return best, bestDist, best != nil
}

func (p *Population) TotalMass() float64 {
	sum := 0.0
	for _, b := range p.bodies {
		sum += b.Mass
	}
	return sum
}

func (p *Population) MassOf(kind Kind) float64 {
	sum := 0.0
	for _, b := range p.bodies {
		if b.Kind == kind {
			sum += b.Mass
		}
	}
	return sum
}

func (p *Population) KineticEnergy() float64 {
	sum := 0.0
	for _, b := range p.bodies {
		sum += b.KineticEnergy()
	}
	return sum
}

func (p *Population) IsValid() bool {
	for _, b := range p.bodies {
		if !b.IsValid() {
			return false
		}
	}
	return true
}

// Views copies every body for read-only consumers.
func (p *Population) Views() []BodyView {
	views := make([]BodyView, len(p.bodies))
	for i, b := range p.bodies {
		views[i] = b.View()
	}
	return views
}
