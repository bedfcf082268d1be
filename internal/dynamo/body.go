package dynamo

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Kind tags the two body variants.
type Kind uint8

const (
	// KindPrimary is a heavy attractor that dynamic bodies fall toward and merge into.
	KindPrimary Kind = iota
	// KindDynamic is a light mobile body subject to gravity, collisions and absorption.
	KindDynamic
)

func (k Kind) String() string {
	switch k {
	case KindPrimary:
		return "primary"
	case KindDynamic:
		return "dynamic"
	}
	return "unknown"
}

// Phase is the merge state of a dynamic body, derived from its proximity timer.
type Phase uint8

const (
	PhaseFree Phase = iota
	PhaseProximate
	PhaseAbsorbed
)

func (p Phase) String() string {
	switch p {
	case PhaseFree:
		return "free"
	case PhaseProximate:
		return "proximate"
	case PhaseAbsorbed:
		return "absorbed"
	}
	return "unknown"
}

// Body is a point mass. Trail, Timer and Lifetime are only meaningful for
// dynamic bodies.
type Body struct {
	Kind Kind
	Pos  r2.Vec
	Vel  r2.Vec
	Mass float64

	// Trail holds past positions, most recent last.
	Trail []r2.Vec

	// Timer counts consecutive ticks spent within merge range of the same
	// nearest primary.
	Timer int
	near  *Body

	// Lifetime is a countdown in ticks, used only when Transient is set.
	Lifetime  int
	Transient bool
}

func NewPrimary(pos, vel r2.Vec, mass float64) *Body {
	return &Body{Kind: KindPrimary, Pos: pos, Vel: vel, Mass: mass}
}

func NewDynamic(pos, vel r2.Vec, mass float64) *Body {
	return &Body{Kind: KindDynamic, Pos: pos, Vel: vel, Mass: mass}
}

// NewTransient creates a short-lived dynamic body removed once lifetime ticks
// have been integrated.
func NewTransient(pos, vel r2.Vec, mass float64, lifetime int) *Body {
	return &Body{
		Kind:      KindDynamic,
		Pos:       pos,
		Vel:       vel,
		Mass:      mass,
		Lifetime:  lifetime,
		Transient: true,
	}
}

func (b *Body) IsAttractor() bool { return b.Kind == KindPrimary }
func (b *Body) IsMobile() bool    { return b.Kind == KindDynamic }

// Priority is the inverse mass of a dynamic body; lighter bodies rank higher.
func (b *Body) Priority() float64 {
	return 1 / b.Mass
}

// Radius is the cube-root collision radius used by pair resolution.
func (b *Body) Radius() float64 {
	return math.Cbrt(b.Mass)
}

// PushTrail appends p and drops the oldest samples beyond limit.
func (b *Body) PushTrail(p r2.Vec, limit int) {
	if limit <= 0 {
		return
	}
	if len(b.Trail) < limit {
		b.Trail = append(b.Trail, p)
		return
	}
	n := copy(b.Trail, b.Trail[len(b.Trail)-limit+1:])
	b.Trail = append(b.Trail[:n], p)
}

// Approach advances the proximity timer for a tick spent within merge range of
// target and returns the new count. The count restarts when the nearest
// primary differs from the previous tick's.
func (b *Body) Approach(target *Body) int {
	if b.near != target {
		b.near, b.Timer = target, 0
	}
	b.Timer++
	return b.Timer
}

// Leave resets the proximity timer.
func (b *Body) Leave() {
	b.near, b.Timer = nil, 0
}

// Phase reports the merge state for a merge threshold of mergeTicks.
func (b *Body) Phase(mergeTicks int) Phase {
	switch {
	case b.Timer <= 0:
		return PhaseFree
	case b.Timer >= mergeTicks:
		return PhaseAbsorbed
	}
	return PhaseProximate
}

func (b *Body) KineticEnergy() float64 {
	return 0.5 * b.Mass * r2.Norm2(b.Vel)
}

func (b *Body) IsValid() bool {
	for _, v := range [4]float64{b.Pos.X, b.Pos.Y, b.Vel.X, b.Vel.Y} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// BodyView is a read-only copy of a body handed to collaborators.
type BodyView struct {
	Kind      Kind     `json:"kind"`
	Pos       r2.Vec   `json:"pos"`
	Vel       r2.Vec   `json:"vel"`
	Mass      float64  `json:"mass"`
	Trail     []r2.Vec `json:"trail,omitempty"`
	Timer     int      `json:"timer,omitempty"`
	Transient bool     `json:"transient,omitempty"`
}

func (b *Body) View() BodyView {
	v := BodyView{
		Kind:      b.Kind,
		Pos:       b.Pos,
		Vel:       b.Vel,
		Mass:      b.Mass,
		Timer:     b.Timer,
		Transient: b.Transient,
	}
	if len(b.Trail) > 0 {
		v.Trail = append([]r2.Vec(nil), b.Trail...)
	}
	return v
}
