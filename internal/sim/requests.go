package sim

import (
	"github.com/san-kum/gravitas/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	SliderMin     = 1
	SliderMax     = 100
	SliderDefault = 10
)

// request is a population change queued by a collaborator and applied at the
// start of the next tick.
type request func(s *Simulator)

func (s *Simulator) enqueue(r request) {
	s.pending = append(s.pending, r)
}

// drain applies queued requests in arrival order.
func (s *Simulator) drain() {
	for len(s.pending) > 0 {
		batch := s.pending
		s.pending = nil
		for _, r := range batch {
			r(s)
		}
	}
}

// Pending reports how many requests wait for the next tick.
func (s *Simulator) Pending() int { return len(s.pending) }

func (s *Simulator) AddPrimary(pos, vel r2.Vec, mass float64) error {
	if err := dynamo.CheckMass(mass); err != nil {
		return err
	}
	s.enqueue(func(s *Simulator) {
		s.pop.Append(dynamo.NewPrimary(pos, vel, mass))
	})
	return nil
}

func (s *Simulator) AddDynamic(pos, vel r2.Vec, mass float64) error {
	if err := dynamo.CheckMass(mass); err != nil {
		return err
	}
	s.enqueue(func(s *Simulator) {
		s.pop.Append(dynamo.NewDynamic(pos, vel, mass))
	})
	return nil
}

// AddRandomDynamic queues a dynamic body with mass in [0.5, 5), a random
// position anywhere in the world and velocity in [-1, 1) per axis.
func (s *Simulator) AddRandomDynamic() error {
	pos := dynamo.UniformVec(s.rng, r2.Vec{}, s.params.World)
	vel := dynamo.UniformVec(s.rng, r2.Vec{X: -1, Y: -1}, r2.Vec{X: 1, Y: 1})
	return s.AddDynamic(pos, vel, dynamo.Uniform(s.rng, 0.5, 5))
}

// AddRandomPrimary queues a stationary primary body of mass slider*5 at a
// random position.
func (s *Simulator) AddRandomPrimary(slider int) error {
	pos := dynamo.UniformVec(s.rng, r2.Vec{}, s.params.World)
	return s.AddPrimary(pos, r2.Vec{}, float64(clampSlider(slider))*5)
}

// SetDynamicCollisions queues a change of the dynamic-dynamic collision toggle.
func (s *Simulator) SetDynamicCollisions(on bool) {
	s.enqueue(func(s *Simulator) { s.dynamicCollisions = on })
}

// DynamicCollisions reports the toggle as applied to the current tick.
func (s *Simulator) DynamicCollisions() bool { return s.dynamicCollisions }

// RescaleMass queues setting every body of kind to mass. Dynamic velocities
// are scaled by 1/mass.
func (s *Simulator) RescaleMass(kind dynamo.Kind, mass float64) error {
	if err := dynamo.CheckMass(mass); err != nil {
		return err
	}
	s.enqueue(func(s *Simulator) {
		for _, b := range s.pop.Bodies() {
			if b.Kind != kind {
				continue
			}
			b.Mass = mass
			if kind == dynamo.KindDynamic {
				b.Vel = r2.Scale(1/mass, b.Vel)
			}
		}
	})
	return nil
}

// ApplySlider maps a 1..100 slider onto both variants: dynamic mass
// slider/10, primary mass slider*2.
func (s *Simulator) ApplySlider(value int) error {
	value = clampSlider(value)
	if err := s.RescaleMass(dynamo.KindDynamic, float64(value)/10); err != nil {
		return err
	}
	return s.RescaleMass(dynamo.KindPrimary, float64(value)*2)
}

func clampSlider(v int) int {
	return max(SliderMin, min(SliderMax, v))
}
