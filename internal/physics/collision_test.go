package physics

import (
	"math"
	"testing"

	"github.com/san-kum/gravitas/internal/dynamo"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestElasticCollision_HeadOn(t *testing.T) {
	params := dynamo.DefaultParams()
	a := dynamo.NewDynamic(r2.Vec{X: 0}, r2.Vec{X: 1}, 2)
	b := dynamo.NewDynamic(r2.Vec{X: 0.1}, r2.Vec{X: -1}, 2)

	fc := NewForceCalculator(params, constSource(0.5))
	if d := r2.Norm(r2.Sub(b.Pos, a.Pos)); d >= fc.DynamicContact(a, b) {
		t.Fatalf("bodies at %v are not in contact", d)
	}

	fc.ElasticCollision(a, b)

	want := params.Restitution * params.CollisionDamping
	if math.Abs(a.Vel.X+want) > 1e-12 || math.Abs(b.Vel.X-want) > 1e-12 {
		t.Errorf("velocities = %v, %v; want -%v, +%v", a.Vel, b.Vel, want, want)
	}
	if a.Vel.Y != 0 || b.Vel.Y != 0 {
		t.Error("tangential components must not change")
	}

	sep := r2.Norm(r2.Sub(b.Pos, a.Pos))
	if math.Abs(sep-0.5*(a.Radius()+b.Radius())) > 1e-12 {
		t.Errorf("separation = %v, want %v", sep, 0.5*(a.Radius()+b.Radius()))
	}
	mid := r2.Scale(0.5, r2.Add(a.Pos, b.Pos))
	if math.Abs(mid.X-0.05) > 1e-12 {
		t.Errorf("equal masses should move symmetrically, midpoint %v", mid)
	}
}

func TestElasticCollision_SeparatingUntouched(t *testing.T) {
	a := dynamo.NewDynamic(r2.Vec{X: 0}, r2.Vec{X: -1}, 2)
	b := dynamo.NewDynamic(r2.Vec{X: 0.1}, r2.Vec{X: 1}, 2)

	NewForceCalculator(dynamo.DefaultParams(), constSource(0.5)).ElasticCollision(a, b)

	if a.Vel.X != -1 || b.Vel.X != 1 {
		t.Errorf("separating bodies received an impulse: %v, %v", a.Vel, b.Vel)
	}
	if r2.Norm(r2.Sub(b.Pos, a.Pos)) <= 0.1 {
		t.Error("overlapping bodies should still be pushed apart")
	}
}

func TestElasticCollision_MassWeightedCorrection(t *testing.T) {
	a := dynamo.NewDynamic(r2.Vec{}, r2.Vec{}, 1)
	b := dynamo.NewDynamic(r2.Vec{X: 0.1}, r2.Vec{}, 8)

	NewForceCalculator(dynamo.DefaultParams(), constSource(0.5)).ElasticCollision(a, b)

	overlap := 0.5*(1+2) - 0.1
	if math.Abs(a.Pos.X+overlap*8/9) > 1e-12 {
		t.Errorf("light body moved to %v, want %v", a.Pos.X, -overlap*8/9)
	}
	if math.Abs(b.Pos.X-(0.1+overlap/9)) > 1e-12 {
		t.Errorf("heavy body moved to %v, want %v", b.Pos.X, 0.1+overlap/9)
	}
}

func TestElasticCollision_CoincidentBodies(t *testing.T) {
	a := dynamo.NewDynamic(r2.Vec{X: 5, Y: 5}, r2.Vec{}, 2)
	b := dynamo.NewDynamic(r2.Vec{X: 5, Y: 5}, r2.Vec{}, 2)

	NewForceCalculator(dynamo.DefaultParams(), constSource(0.75)).ElasticCollision(a, b)

	if !a.IsValid() || !b.IsValid() {
		t.Fatal("coincident collision produced non-finite state")
	}
	d := r2.Sub(b.Pos, a.Pos)
	if r2.Norm(d) == 0 {
		t.Fatal("coincident bodies were not separated")
	}
	if math.Abs(d.X-d.Y) > 1e-12 || d.X <= 0 {
		t.Errorf("expected separation along the random normal (1,1), got %v", d)
	}
}

func TestElasticCollision_NeverGainsEnergy(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	fc := NewForceCalculator(dynamo.DefaultParams(), rng)

	for i := 0; i < 500; i++ {
		a := dynamo.NewDynamic(
			r2.Vec{X: rng.Float64() * 4, Y: rng.Float64() * 4},
			r2.Vec{X: rng.Float64()*10 - 5, Y: rng.Float64()*10 - 5},
			0.1+rng.Float64()*50,
		)
		b := dynamo.NewDynamic(
			r2.Vec{X: rng.Float64() * 4, Y: rng.Float64() * 4},
			r2.Vec{X: rng.Float64()*10 - 5, Y: rng.Float64()*10 - 5},
			0.1+rng.Float64()*50,
		)

		before := a.KineticEnergy() + b.KineticEnergy()
		fc.ElasticCollision(a, b)
		after := a.KineticEnergy() + b.KineticEnergy()

		if after > before*(1+1e-9)+1e-12 {
			t.Fatalf("pair %d gained energy: %v -> %v", i, before, after)
		}
	}
}

func TestResolvePrimaryCollisions(t *testing.T) {
	tests := []struct {
		name string
		gap  float64
		hits int
	}{
		{"touching", 5, 1},
		{"apart", 7, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pop := dynamo.NewPopulation(
				dynamo.NewPrimary(r2.Vec{}, r2.Vec{}, 27),
				dynamo.NewDynamic(r2.Vec{X: 1}, r2.Vec{}, 27),
				dynamo.NewPrimary(r2.Vec{X: tt.gap}, r2.Vec{}, 27),
			)
			fc := NewForceCalculator(dynamo.DefaultParams(), constSource(0.5))
			if got := fc.ResolvePrimaryCollisions(pop); got != tt.hits {
				t.Errorf("hits = %d, want %d", got, tt.hits)
			}
		})
	}
}

func TestResolveDynamicCollisions_ScaledContact(t *testing.T) {
	// radii 1+1, contact at 1.5*2 = 3
	pop := dynamo.NewPopulation(
		dynamo.NewDynamic(r2.Vec{}, r2.Vec{X: 1}, 1),
		dynamo.NewDynamic(r2.Vec{X: 2.9}, r2.Vec{X: -1}, 1),
		dynamo.NewDynamic(r2.Vec{X: 100}, r2.Vec{}, 1),
		dynamo.NewPrimary(r2.Vec{X: 1}, r2.Vec{}, 50),
	)
	fc := NewForceCalculator(dynamo.DefaultParams(), constSource(0.5))

	if got := fc.ResolveDynamicCollisions(pop); got != 1 {
		t.Errorf("hits = %d, want 1", got)
	}
	if pop.At(0).Vel.X >= 0 || pop.At(1).Vel.X <= 0 {
		t.Errorf("approaching pair should bounce: %v, %v", pop.At(0).Vel, pop.At(1).Vel)
	}
	if pop.At(3).Vel != (r2.Vec{}) {
		t.Error("primary must not take part in dynamic collisions")
	}
}
