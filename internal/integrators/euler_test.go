package integrators

import (
	"testing"

	"github.com/san-kum/gravitas/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestEuler_UnitStep(t *testing.T) {
	params := dynamo.DefaultParams()
	p := dynamo.NewPopulation(
		dynamo.NewPrimary(r2.Vec{X: 400, Y: 300}, r2.Vec{X: 1, Y: -2}, 50),
		dynamo.NewDynamic(r2.Vec{X: 100, Y: 100}, r2.Vec{X: 0.5, Y: 0.25}, 3),
	)

	NewEuler(params).UpdatePositions(p)

	if got := p.At(0).Pos; got != (r2.Vec{X: 401, Y: 298}) {
		t.Errorf("primary at %v", got)
	}
	if got := p.At(1).Pos; got != (r2.Vec{X: 100.5, Y: 100.25}) {
		t.Errorf("dynamic at %v", got)
	}
	if len(p.At(0).Trail) != 0 {
		t.Error("primary bodies keep no trail")
	}
	if len(p.At(1).Trail) != 1 || p.At(1).Trail[0] != p.At(1).Pos {
		t.Errorf("dynamic trail = %v", p.At(1).Trail)
	}
}

func TestEuler_TrailIsPositionSuffix(t *testing.T) {
	params := dynamo.DefaultParams()
	b := dynamo.NewDynamic(r2.Vec{X: 100, Y: 300}, r2.Vec{X: 1}, 3)
	p := dynamo.NewPopulation(b)
	e := NewEuler(params)

	var history []r2.Vec
	for i := 0; i < 30; i++ {
		e.UpdatePositions(p)
		history = append(history, b.Pos)

		if len(b.Trail) > params.TrailLength {
			t.Fatalf("tick %d: trail length %d", i, len(b.Trail))
		}
		suffix := history[len(history)-len(b.Trail):]
		for j := range suffix {
			if suffix[j] != b.Trail[j] {
				t.Fatalf("tick %d: trail is not a suffix of the position history", i)
			}
		}
	}
}

func TestEuler_TransientLifetime(t *testing.T) {
	params := dynamo.DefaultParams()
	p := dynamo.NewPopulation(
		dynamo.NewTransient(r2.Vec{X: 400, Y: 300}, r2.Vec{}, 0.1, 15),
		dynamo.NewDynamic(r2.Vec{X: 200, Y: 300}, r2.Vec{}, 2),
	)
	e := NewEuler(params)

	for tick := 1; tick <= 14; tick++ {
		if n := e.UpdatePositions(p); n != 0 {
			t.Fatalf("tick %d: %d bodies expired early", tick, n)
		}
	}
	if p.Len() != 2 {
		t.Fatalf("expected both bodies after 14 ticks, got %d", p.Len())
	}

	if n := e.UpdatePositions(p); n != 1 {
		t.Fatalf("expected one expiry on tick 15, got %d", n)
	}
	if p.Len() != 1 || p.At(0).Transient {
		t.Error("the transient body should be gone and the permanent one kept")
	}
}

func TestEuler_ExpiryDoesNotSkipNeighbours(t *testing.T) {
	params := dynamo.DefaultParams()
	p := dynamo.NewPopulation(
		dynamo.NewTransient(r2.Vec{X: 400, Y: 300}, r2.Vec{}, 0.1, 1),
		dynamo.NewTransient(r2.Vec{X: 410, Y: 300}, r2.Vec{}, 0.1, 1),
		dynamo.NewDynamic(r2.Vec{X: 200, Y: 300}, r2.Vec{X: 1}, 2),
	)

	if n := NewEuler(params).UpdatePositions(p); n != 2 {
		t.Fatalf("expected 2 expiries, got %d", n)
	}
	if p.Len() != 1 || p.At(0).Pos.X != 201 {
		t.Error("the body after two expired neighbours was not integrated")
	}
}

func BenchmarkUpdatePositions(b *testing.B) {
	params := dynamo.DefaultParams()
	p := dynamo.NewPopulation()
	for i := 0; i < 53; i++ {
		p.Append(dynamo.NewDynamic(r2.Vec{X: 100 + float64(i)*10, Y: 300}, r2.Vec{X: 0.1, Y: 0.1}, 4))
	}
	e := NewEuler(params)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.UpdatePositions(p)
	}
}
