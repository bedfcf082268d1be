package integrators

import (
	"github.com/san-kum/gravitas/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// Walls is the axis-aligned box [0, W] x [0, H] bodies bounce inside.
type Walls struct {
	size   r2.Vec
	params dynamo.Params
}

func NewWalls(params dynamo.Params) Walls {
	return Walls{size: params.World, params: params}
}

// Reflect negates each velocity component whose axis has the body's edge on or
// past a wall. Position is left alone.
func (w Walls) Reflect(b *dynamo.Body) (flippedX, flippedY bool) {
	h := w.params.HalfSize(b)

	if b.Pos.X-h <= 0 || b.Pos.X+h >= w.size.X {
		b.Vel.X = -b.Vel.X
		flippedX = true
	}
	if b.Pos.Y-h <= 0 || b.Pos.Y+h >= w.size.Y {
		b.Vel.Y = -b.Vel.Y
		flippedY = true
	}
	return flippedX, flippedY
}

// Contains reports whether b lies strictly inside the walls.
func (w Walls) Contains(b *dynamo.Body) bool {
	h := w.params.HalfSize(b)
	return b.Pos.X-h > 0 && b.Pos.X+h < w.size.X && b.Pos.Y-h > 0 && b.Pos.Y+h < w.size.Y
}
