package sim

import (
	"math"

	"github.com/san-kum/gravitas/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// mergePass advances each dynamic body's proximity timer against its nearest
// primary, restarting it when that primary changes, and absorbs bodies whose timer reaches MergeTicks. Absorptions and
// bursts are applied after the scan, so bursts first move on the next tick.
func (s *Simulator) mergePass(tick int) ([]dynamo.MergeEvent, int) {
	var (
		absorbed []int
		burst    []*dynamo.Body
		events   []dynamo.MergeEvent
	)

	for i, b := range s.pop.Bodies() {
		if b.Kind != dynamo.KindDynamic {
			continue
		}
		target, dist, ok := s.pop.Nearest(b.Pos, dynamo.KindPrimary)
		if !ok {
			continue
		}

		if dist >= s.params.ProximityThreshold {
			b.Leave()
			continue
		}

		if b.Approach(target) < s.params.MergeTicks {
			continue
		}

		burst = append(burst, s.spawnBurst(target.Pos)...)
		target.Mass += b.Mass
		absorbed = append(absorbed, i)
		events = append(events, dynamo.MergeEvent{
			Tick:        tick,
			Position:    target.Pos,
			Absorbed:    b.Mass,
			PrimaryMass: target.Mass,
		})
	}

	s.pop.RemoveIndices(absorbed)
	s.pop.Append(burst...)
	return events, len(burst)
}

// spawnBurst creates BurstCount transient bodies at at, each flying outward at
// a random angle and speed.
func (s *Simulator) spawnBurst(at r2.Vec) []*dynamo.Body {
	out := make([]*dynamo.Body, s.params.BurstCount)
	for i := range out {
		theta := dynamo.Uniform(s.rng, 0, 2*math.Pi)
		speed := dynamo.Uniform(s.rng, s.params.BurstSpeedMin, s.params.BurstSpeedMax)
		sin, cos := math.Sincos(theta)
		vel := r2.Scale(speed, r2.Vec{X: cos, Y: sin})
		out[i] = dynamo.NewTransient(at, vel, s.params.BurstMass, s.params.BurstLifetime)
	}
	return out
}
