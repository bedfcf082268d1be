package integrators

import (
	"testing"

	"github.com/san-kum/gravitas/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestWalls_Reflect(t *testing.T) {
	params := dynamo.DefaultParams()
	w := NewWalls(params)

	tests := []struct {
		name    string
		body    *dynamo.Body
		wantVel r2.Vec
	}{
		{"inside", dynamo.NewDynamic(r2.Vec{X: 400, Y: 300}, r2.Vec{X: 1, Y: 2}, 3), r2.Vec{X: 1, Y: 2}},
		{"left wall", dynamo.NewDynamic(r2.Vec{X: 10, Y: 300}, r2.Vec{X: -1, Y: 2}, 3), r2.Vec{X: 1, Y: 2}},
		{"right wall", dynamo.NewDynamic(r2.Vec{X: 790, Y: 300}, r2.Vec{X: 1, Y: 2}, 3), r2.Vec{X: -1, Y: 2}},
		{"top wall", dynamo.NewDynamic(r2.Vec{X: 400, Y: 14}, r2.Vec{X: 1, Y: -2}, 3), r2.Vec{X: 1, Y: 2}},
		{"bottom wall", dynamo.NewDynamic(r2.Vec{X: 400, Y: 590}, r2.Vec{X: 1, Y: 2}, 3), r2.Vec{X: 1, Y: -2}},
		{"corner", dynamo.NewDynamic(r2.Vec{X: 0, Y: 600}, r2.Vec{X: -1, Y: 2}, 3), r2.Vec{X: 1, Y: -2}},
		{"unit mass is small", dynamo.NewDynamic(r2.Vec{X: 10, Y: 300}, r2.Vec{X: -1, Y: 2}, 1), r2.Vec{X: -1, Y: 2}},
		{"unit mass edge", dynamo.NewDynamic(r2.Vec{X: 5, Y: 300}, r2.Vec{X: -1, Y: 2}, 1), r2.Vec{X: 1, Y: 2}},
		{"primary", dynamo.NewPrimary(r2.Vec{X: 400, Y: 590}, r2.Vec{Y: 1}, 1), r2.Vec{Y: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos := tt.body.Pos
			w.Reflect(tt.body)
			if tt.body.Vel != tt.wantVel {
				t.Errorf("velocity = %v, want %v", tt.body.Vel, tt.wantVel)
			}
			if tt.body.Pos != pos {
				t.Error("reflection must not move the body")
			}
		})
	}
}

func TestWalls_Contains(t *testing.T) {
	w := NewWalls(dynamo.DefaultParams())
	if !w.Contains(dynamo.NewDynamic(r2.Vec{X: 400, Y: 300}, r2.Vec{}, 2)) {
		t.Error("centre body should be inside")
	}
	if w.Contains(dynamo.NewDynamic(r2.Vec{X: -3, Y: 300}, r2.Vec{}, 2)) {
		t.Error("out of bounds body should not be inside")
	}
}
