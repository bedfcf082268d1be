package export

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/gravitas/internal/dynamo"
	"github.com/san-kum/gravitas/internal/viz"
)

const (
	primaryColor = "#ffff96"
	dynamicColor = "#0096ff"
	// filament endpoints are clamped to this box before drawing
	filamentClamp = 2000.0
)

// Options controls what PopulationToSVG draws.
type Options struct {
	Filaments bool
	Trails    bool
	Glow      bool
}

func DefaultOptions() Options {
	return Options{Filaments: true, Trails: true, Glow: true}
}

// PopulationToSVG draws a snapshot of the world: heat-mapped filaments from
// each dynamic body to its nearest primary, trails, then the bodies.
// Bodies with non-finite positions are skipped.
func PopulationToSVG(bodies []dynamo.BodyView, params dynamo.Params, opts Options) string {
	w, h := params.World.X, params.World.Y

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<defs>
<radialGradient id="glow-primary"><stop offset="0" stop-color="%s" stop-opacity="0.6"/><stop offset="1" stop-color="%s" stop-opacity="0"/></radialGradient>
<radialGradient id="glow-dynamic"><stop offset="0" stop-color="%s" stop-opacity="0.5"/><stop offset="1" stop-color="%s" stop-opacity="0"/></radialGradient>
</defs>
<rect width="100%%" height="100%%" fill="#0a0a14"/>
`, w, h, w, h, primaryColor, primaryColor, dynamicColor, dynamicColor))

	var primaries []dynamo.BodyView
	for _, b := range bodies {
		if b.Kind == dynamo.KindPrimary && finite(b.Pos) {
			primaries = append(primaries, b)
		}
	}

	if opts.Filaments && len(primaries) > 0 {
		sb.WriteString(`<g stroke-width="3" stroke-opacity="0.6">` + "\n")
		for _, b := range bodies {
			if b.Kind != dynamo.KindDynamic || !finite(b.Pos) {
				continue
			}
			target, dist := nearest(b.Pos, primaries)
			from, to := clampVec(b.Pos), clampVec(target.Pos)
			sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s"/>`+"\n",
				from.X, from.Y, to.X, to.Y, viz.Hex(viz.HeatColor(dist))))
		}
		sb.WriteString("</g>\n")
	}

	if opts.Trails {
		sb.WriteString(fmt.Sprintf(`<g fill="none" stroke="%s" stroke-opacity="0.4" stroke-width="1">`+"\n", dynamicColor))
		for _, b := range bodies {
			if len(b.Trail) < 2 {
				continue
			}
			sb.WriteString(`<polyline points="`)
			for i, p := range b.Trail {
				if !finite(p) {
					continue
				}
				if i > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", p.X, p.Y))
			}
			sb.WriteString(`"/>` + "\n")
		}
		sb.WriteString("</g>\n")
	}

	for _, b := range bodies {
		if !finite(b.Pos) {
			continue
		}
		size, fill, glow := bodyStyle(b)
		if opts.Glow {
			sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="url(#%s)"/>`+"\n", b.Pos.X, b.Pos.Y, size*2, glow))
		}
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>`+"\n", b.Pos.X, b.Pos.Y, size/2, fill))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// bodyStyle returns the drawn diameter, fill and glow gradient of a body.
// Primaries share one size; dynamic bodies grow with mass.
func bodyStyle(b dynamo.BodyView) (float64, string, string) {
	if b.Kind == dynamo.KindPrimary {
		return 40, primaryColor, "glow-primary"
	}
	return math.Max(5, b.Mass*4), dynamicColor, "glow-dynamic"
}

func nearest(pos r2.Vec, primaries []dynamo.BodyView) (dynamo.BodyView, float64) {
	best, bestDist := primaries[0], r2.Norm(r2.Sub(primaries[0].Pos, pos))
	for _, p := range primaries[1:] {
		if d := r2.Norm(r2.Sub(p.Pos, pos)); d < bestDist {
			best, bestDist = p, d
		}
	}
	return best, bestDist
}

func finite(v r2.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

func clampVec(v r2.Vec) r2.Vec {
	c := func(x float64) float64 { return math.Max(-filamentClamp, math.Min(filamentClamp, x)) }
	return r2.Vec{X: c(v.X), Y: c(v.Y)}
}

// SeriesToSVG plots one value per tick as a polyline.
func SeriesToSVG(values []float64, width, height int, strokeColor string) string {
	if len(values) < 2 {
		return ""
	}

	minY, maxY := values[0], values[0]
	for _, v := range values {
		minY, maxY = math.Min(minY, v), math.Max(maxY, v)
	}

	// Add padding
	rangeY := maxY - minY
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY
	rangeX := float64(len(values) - 1)

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor))

	for i, v := range values {
		x := float64(i) / rangeX * float64(width)
		y := float64(height) - (v-minY)/rangeY*float64(height)

		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
