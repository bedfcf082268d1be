package integrators

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/gravitas/internal/dynamo"
)

// Euler advances positions by one unit tick: x += v.
type Euler struct {
	params dynamo.Params
	walls  Walls
}

func NewEuler(params dynamo.Params) *Euler {
	return &Euler{
		params: params,
		walls:  NewWalls(params),
	}
}

// UpdatePositions moves every body, records dynamic trails, counts down
// transient lifetimes and reflects off the walls. Expired bodies are removed
// after the scan; the number removed is returned.
func (e *Euler) UpdatePositions(p *dynamo.Population) int {
	var expired []int

	for i, b := range p.Bodies() {
		b.Pos = r2.Add(b.Pos, b.Vel)

		if b.Kind == dynamo.KindDynamic {
			b.PushTrail(b.Pos, e.params.TrailLength)

			if b.Transient {
				b.Lifetime--
				if b.Lifetime <= 0 {
					expired = append(expired, i)
				}
			}
		}

		e.walls.Reflect(b)
	}

	p.RemoveIndices(expired)
	return len(expired)
}
