package physics

import (
	"github.com/san-kum/gravitas/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// PrimaryContact is the primary-primary collision distance.
func PrimaryContact(a, b *dynamo.Body) float64 {
	return a.Radius() + b.Radius()
}

// DynamicContact is the dynamic-dynamic collision distance.
func (f *ForceCalculator) DynamicContact(a, b *dynamo.Body) float64 {
	return f.params.DynamicScale * (a.Radius() + b.Radius())
}

// ResolvePrimaryCollisions runs elastic response for every touching pair of
// primary bodies.
func (f *ForceCalculator) ResolvePrimaryCollisions(p *dynamo.Population) int {
	return f.resolve(p, dynamo.KindPrimary, PrimaryContact)
}

// ResolveDynamicCollisions runs elastic response for every touching pair of
// dynamic bodies.
func (f *ForceCalculator) ResolveDynamicCollisions(p *dynamo.Population) int {
	return f.resolve(p, dynamo.KindDynamic, f.DynamicContact)
}

// resolve walks pairs i<j over a snapshot of indices taken before the scan.
func (f *ForceCalculator) resolve(p *dynamo.Population, kind dynamo.Kind, contact func(a, b *dynamo.Body) float64) int {
	idx := p.Indices(kind)
	hits := 0
	for i := 0; i < len(idx); i++ {
		a := p.At(idx[i])
		for j := i + 1; j < len(idx); j++ {
			b := p.At(idx[j])
			if r2.Norm(r2.Sub(b.Pos, a.Pos)) < contact(a, b) {
				f.ElasticCollision(a, b)
				hits++
			}
		}
	}
	return hits
}

// ElasticCollision separates overlapping bodies and exchanges a restitution
// impulse along the contact normal when they are approaching.
func (f *ForceCalculator) ElasticCollision(a, b *dynamo.Body) {
	normal := r2.Sub(b.Pos, a.Pos)
	dist := r2.Norm(normal)
	if dist == 0 {
		normal = r2.Vec{X: f.rng.Float64() - 0.5, Y: f.rng.Float64() - 0.5}
		dist = r2.Norm(normal)
		if dist == 0 {
			normal, dist = r2.Vec{X: 1}, 1
		}
	}
	normal = r2.Scale(1/dist, normal)

	total := a.Mass + b.Mass
	overlap := 0.5*(a.Radius()+b.Radius()) - dist
	if overlap > 0 {
		correction := r2.Scale(overlap, normal)
		a.Pos = r2.Sub(a.Pos, r2.Scale(b.Mass/total, correction))
		b.Pos = r2.Add(b.Pos, r2.Scale(a.Mass/total, correction))
	}

	closing := r2.Dot(r2.Sub(b.Vel, a.Vel), normal)
	if closing > 0 {
		return
	}

	j := -(1 + f.params.Restitution) * closing / (1/a.Mass + 1/b.Mass)
	a.Vel = r2.Scale(f.params.CollisionDamping, r2.Sub(a.Vel, r2.Scale(j/a.Mass, normal)))
	b.Vel = r2.Scale(f.params.CollisionDamping, r2.Add(b.Vel, r2.Scale(j/b.Mass, normal)))
}
