package dynamo

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
)

// Params holds every constant of the per-tick pipeline.
type Params struct {
	// Gravity
	G             float64
	Softening     float64
	DistanceExp   float64
	MaxForce      float64
	MaxVelocity   float64
	ForceDt       float64
	Damping       float64
	TangentialMin float64
	TangentialMax float64
	Jitter        float64

	// Collisions
	Restitution      float64
	CollisionDamping float64
	DynamicScale     float64

	// Integration
	TrailLength   int
	World         r2.Vec
	SmallHalfSize float64
	LargeHalfSize float64

	// Merge and burst
	ProximityThreshold float64
	MergeTicks         int
	BurstCount         int
	BurstMass          float64
	BurstLifetime      int
	BurstSpeedMin      float64
	BurstSpeedMax      float64
}

func DefaultParams() Params {
	return Params{
		G:                  1.2,
		Softening:          5,
		DistanceExp:        1.9,
		MaxForce:           15,
		MaxVelocity:        20,
		ForceDt:            0.5,
		Damping:            0.998,
		TangentialMin:      0.005,
		TangentialMax:      0.01,
		Jitter:             0.1,
		Restitution:        0.9,
		CollisionDamping:   0.98,
		DynamicScale:       1.5,
		TrailLength:        15,
		World:              r2.Vec{X: 800, Y: 600},
		SmallHalfSize:      5,
		LargeHalfSize:      15,
		ProximityThreshold: 20,
		MergeTicks:         50,
		BurstCount:         10,
		BurstMass:          0.1,
		BurstLifetime:      15,
		BurstSpeedMin:      0.5,
		BurstSpeedMax:      2.0,
	}
}

func (p Params) Validate() error {
	positive := []struct {
		name  string
		value float64
	}{
		{"g", p.G},
		{"softening", p.Softening},
		{"distance_exp", p.DistanceExp},
		{"max_force", p.MaxForce},
		{"max_velocity", p.MaxVelocity},
		{"force_dt", p.ForceDt},
		{"dynamic_scale", p.DynamicScale},
		{"world.x", p.World.X},
		{"world.y", p.World.Y},
		{"proximity_threshold", p.ProximityThreshold},
		{"burst_mass", p.BurstMass},
	}
	for _, f := range positive {
		if !(f.value > 0) {
			return fmt.Errorf("%w: %s must be positive, got %v", ErrParameterBounds, f.name, f.value)
		}
	}

	unit := []struct {
		name  string
		value float64
	}{
		{"damping", p.Damping},
		{"restitution", p.Restitution},
		{"collision_damping", p.CollisionDamping},
	}
	for _, f := range unit {
		if f.value < 0 || f.value > 1 {
			return fmt.Errorf("%w: %s must be in [0, 1], got %v", ErrParameterBounds, f.name, f.value)
		}
	}

	switch {
	case p.Jitter < 0:
		return fmt.Errorf("%w: jitter must be non-negative", ErrParameterBounds)
	case p.TangentialMin < 0 || p.TangentialMax < p.TangentialMin:
		return fmt.Errorf("%w: tangential range [%v, %v]", ErrParameterBounds, p.TangentialMin, p.TangentialMax)
	case p.BurstSpeedMin < 0 || p.BurstSpeedMax < p.BurstSpeedMin:
		return fmt.Errorf("%w: burst speed range [%v, %v]", ErrParameterBounds, p.BurstSpeedMin, p.BurstSpeedMax)
	case p.TrailLength < 0:
		return fmt.Errorf("%w: trail_length must be non-negative", ErrParameterBounds)
	case p.MergeTicks < 1:
		return fmt.Errorf("%w: merge_ticks must be at least 1", ErrParameterBounds)
	case p.BurstCount < 0:
		return fmt.Errorf("%w: burst_count must be non-negative", ErrParameterBounds)
	case p.BurstLifetime < 1:
		return fmt.Errorf("%w: burst_lifetime must be at least 1", ErrParameterBounds)
	}
	return nil
}

// HalfSize is the wall-test extent of a body. Unit-mass dynamic bodies are
// small; everything else uses the large extent.
func (p Params) HalfSize(b *Body) float64 {
	if b.Kind == KindDynamic && b.Mass == 1 {
		return p.SmallHalfSize
	}
	return p.LargeHalfSize
}
