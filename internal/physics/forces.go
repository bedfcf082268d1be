package physics

import (
	"math"

	"github.com/san-kum/gravitas/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// ForceCalculator applies primary-body gravity to dynamic bodies and resolves
// same-kind collisions. It keeps no reference to a population between calls.
type ForceCalculator struct {
	params dynamo.Params
	rng    dynamo.Source
}

func NewForceCalculator(params dynamo.Params, rng dynamo.Source) *ForceCalculator {
	return &ForceCalculator{params: params, rng: rng}
}

// ApplyForces updates the velocity of every dynamic body. Primary bodies are
// only read.
func (f *ForceCalculator) ApplyForces(p *dynamo.Population) {
	primaries := p.Indices(dynamo.KindPrimary)

	for _, b := range p.Bodies() {
		if b.Kind != dynamo.KindDynamic {
			continue
		}
		f.applyGravity(p, primaries, b)
		f.applySteering(b)
	}
}

// Pull returns the mass-weighted average gravitational force on b, clamped to
// MaxForce, and whether any primary contributed.
func (f *ForceCalculator) Pull(p *dynamo.Population, b *dynamo.Body) (r2.Vec, bool) {
	return f.pull(p, p.Indices(dynamo.KindPrimary), b)
}

func (f *ForceCalculator) pull(p *dynamo.Population, primaries []int, b *dynamo.Body) (r2.Vec, bool) {
	var total r2.Vec
	weight := 0.0

	for _, i := range primaries {
		other := p.At(i)
		r := r2.Sub(other.Pos, b.Pos)
		dist := r2.Norm(r) + f.params.Softening

		scale := f.params.G * b.Mass * other.Mass / math.Pow(dist, f.params.DistanceExp)
		total = r2.Add(total, r2.Scale(scale, r))
		weight += other.Mass / dist
	}

	if !(weight > 0) {
		return r2.Vec{}, false
	}
	return clamp(r2.Scale(1/weight, total), f.params.MaxForce), true
}

func (f *ForceCalculator) applyGravity(p *dynamo.Population, primaries []int, b *dynamo.Body) {
	force, ok := f.pull(p, primaries, b)
	if !ok {
		return
	}
	b.Vel = r2.Add(b.Vel, r2.Scale(f.params.ForceDt/b.Mass, force))
}

// applySteering adds the tangential nudge and jitter, then clamps and damps.
func (f *ForceCalculator) applySteering(b *dynamo.Body) {
	tangent := r2.Vec{X: -b.Vel.Y, Y: b.Vel.X}
	if n := r2.Norm(tangent); n != 0 {
		nudge := dynamo.Uniform(f.rng, f.params.TangentialMin, f.params.TangentialMax)
		b.Vel = r2.Add(b.Vel, r2.Scale(nudge/n, tangent))
	}

	j := f.params.Jitter
	b.Vel = r2.Add(b.Vel, r2.Vec{
		X: dynamo.Uniform(f.rng, -j, j),
		Y: dynamo.Uniform(f.rng, -j, j),
	})

	b.Vel = r2.Scale(f.params.Damping, clamp(b.Vel, f.params.MaxVelocity))
}

// clamp limits the magnitude of v to limit, preserving direction.
func clamp(v r2.Vec, limit float64) r2.Vec {
	n := r2.Norm(v)
	if n > limit {
		return r2.Scale(limit/n, v)
	}
	return v
}
