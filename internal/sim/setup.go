package sim

import (
	"fmt"

	"github.com/san-kum/gravitas/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// PrimarySeed places one primary body at setup.
type PrimarySeed struct {
	Pos  r2.Vec
	Mass float64
}

// Setup describes the initial population and the seed of a run.
type Setup struct {
	Seed              int64
	Primaries         []PrimarySeed
	RandomPrimaries   int
	Dynamics          int
	DynamicMassMin    float64
	DynamicMassMax    float64
	DynamicSpeed      float64
	SpawnMin          r2.Vec
	SpawnMax          r2.Vec
	DynamicCollisions bool
	ValidateState     bool
}

func DefaultSetup() Setup {
	return Setup{
		Primaries: []PrimarySeed{
			{Pos: r2.Vec{X: 200, Y: 150}, Mass: 50},
			{Pos: r2.Vec{X: 600, Y: 150}, Mass: 50},
			{Pos: r2.Vec{X: 400, Y: 450}, Mass: 50},
		},
		Dynamics:       50,
		DynamicMassMin: 2,
		DynamicMassMax: 8,
		DynamicSpeed:   0.5,
		SpawnMin:       r2.Vec{X: 100, Y: 100},
		SpawnMax:       r2.Vec{X: 700, Y: 500},
		ValidateState:  true,
	}
}

func (s Setup) Validate() error {
	for i, ps := range s.Primaries {
		if err := dynamo.CheckMass(ps.Mass); err != nil {
			return fmt.Errorf("primary %d: %w", i, err)
		}
	}
	switch {
	case s.RandomPrimaries < 0:
		return fmt.Errorf("%w: random primary count must be non-negative", dynamo.ErrParameterBounds)
	case s.Dynamics < 0:
		return fmt.Errorf("%w: dynamic count must be non-negative", dynamo.ErrParameterBounds)
	case s.Dynamics > 0 && !(s.DynamicMassMin > 0):
		return fmt.Errorf("%w: dynamic mass range must be positive", dynamo.ErrParameterBounds)
	case s.DynamicMassMax < s.DynamicMassMin:
		return fmt.Errorf("%w: dynamic mass range [%v, %v]", dynamo.ErrParameterBounds, s.DynamicMassMin, s.DynamicMassMax)
	case s.DynamicSpeed < 0:
		return fmt.Errorf("%w: dynamic speed must be non-negative", dynamo.ErrParameterBounds)
	case s.SpawnMax.X < s.SpawnMin.X || s.SpawnMax.Y < s.SpawnMin.Y:
		return fmt.Errorf("%w: spawn region", dynamo.ErrParameterBounds)
	}
	return nil
}

// Mass range of primaries placed without an explicit seed.
const (
	randomPrimaryMassMin = 20
	randomPrimaryMassMax = 40
)

// populate builds the initial bodies, drawing unseeded ones from rng.
func (s Setup) populate(rng dynamo.Source) *dynamo.Population {
	p := dynamo.NewPopulation()
	for _, ps := range s.Primaries {
		p.Append(dynamo.NewPrimary(ps.Pos, r2.Vec{}, ps.Mass))
	}
	for i := 0; i < s.RandomPrimaries; i++ {
		pos := dynamo.UniformVec(rng, s.SpawnMin, s.SpawnMax)
		mass := dynamo.Uniform(rng, randomPrimaryMassMin, randomPrimaryMassMax)
		p.Append(dynamo.NewPrimary(pos, r2.Vec{}, mass))
	}

	v := r2.Vec{X: s.DynamicSpeed, Y: s.DynamicSpeed}
	for i := 0; i < s.Dynamics; i++ {
		pos := dynamo.UniformVec(rng, s.SpawnMin, s.SpawnMax)
		mass := dynamo.Uniform(rng, s.DynamicMassMin, s.DynamicMassMax)
		vel := dynamo.UniformVec(rng, r2.Scale(-1, v), v)
		p.Append(dynamo.NewDynamic(pos, vel, mass))
	}
	return p
}
