package metrics

import (
	"github.com/san-kum/gravitas/internal/dynamo"
	"github.com/san-kum/gravitas/internal/integrators"
)

// Stability is the fraction of observed ticks on which every body was finite
// and inside the walls. Reflection is velocity-only, so a body grazing a wall
// counts as a violation for that tick.
type Stability struct {
	name       string
	walls      integrators.Walls
	violations int
	samples    int
}

func NewStability(params dynamo.Params) *Stability {
	return &Stability{
		name:  "stability",
		walls: integrators.NewWalls(params),
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(p *dynamo.Population, tick int) {
	s.samples++
	for _, b := range p.Bodies() {
		if !b.IsValid() || !s.walls.Contains(b) {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
