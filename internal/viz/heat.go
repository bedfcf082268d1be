package viz

import (
	"image/color"
	"math"

	"github.com/charmbracelet/lipgloss"
	"gonum.org/v1/gonum/spatial/r2"
)

// HeatMaxDistance is the filament length at which the heat map bottoms out.
const HeatMaxDistance = 400.0

// HeatColor maps a dynamic body's distance to its nearest primary onto a
// three-band gradient: white-red when close, red-magenta in the middle and
// magenta-blue far away.
func HeatColor(distance float64) color.RGBA {
	n := math.Max(0, math.Min(1, 1-distance/HeatMaxDistance))

	var r, g, b float64
	switch {
	case n > 0.66:
		r, g, b = 255, 255*(1-n)*3, 255*(1-n)*3
	case n > 0.33:
		r, g, b = 255, 0, 255*(n-0.33)*3
	default:
		r, g, b = 255*n*3, 0, 255
	}
	return color.RGBA{R: channel(r), G: channel(g), B: channel(b), A: 0xff}
}

func channel(v float64) uint8 {
	return uint8(math.Max(0, math.Min(255, v)))
}

// Hex renders c as #rrggbb.
func Hex(c color.RGBA) string {
	return hexColor(int(c.R), int(c.G), int(c.B))
}

func HeatLipgloss(distance float64) lipgloss.Color {
	return lipgloss.Color(Hex(HeatColor(distance)))
}

// Projector maps world coordinates onto a canvas dot grid.
type Projector struct {
	world r2.Vec
	w, h  int
}

func NewProjector(world r2.Vec, c *Canvas) Projector {
	return Projector{world: world, w: c.SubWidth(), h: c.SubHeight()}
}

// Point returns the dot for p. Non-finite positions report false.
func (p Projector) Point(v r2.Vec) (int, int, bool) {
	if !finite(v.X) || !finite(v.Y) {
		return 0, 0, false
	}
	x := v.X / p.world.X * float64(p.w)
	y := v.Y / p.world.Y * float64(p.h)
	// keep far-off bodies from overflowing int conversion
	x = math.Max(-1e6, math.Min(1e6, x))
	y = math.Max(-1e6, math.Min(1e6, y))
	return int(math.Floor(x)), int(math.Floor(y)), true
}

// Length scales a world distance along x to dots.
func (p Projector) Length(d float64) int {
	return int(math.Round(d / p.world.X * float64(p.w)))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
