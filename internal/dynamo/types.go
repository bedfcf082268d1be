package dynamo

import "gonum.org/v1/gonum/spatial/r2"

// Source is the pseudorandom stream consumed by the force pass and burst
// spawn. golang.org/x/exp/rand.*Rand satisfies it.
type Source interface {
	Float64() float64
}

// Uniform draws from [lo, hi).
func Uniform(src Source, lo, hi float64) float64 {
	return lo + (hi-lo)*src.Float64()
}

// UniformVec draws each component independently from [lo, hi).
func UniformVec(src Source, lo, hi r2.Vec) r2.Vec {
	return r2.Vec{X: Uniform(src, lo.X, hi.X), Y: Uniform(src, lo.Y, hi.Y)}
}

type Metric interface {
	Name() string
	Observe(p *Population, tick int)
	Value() float64
	Reset()
}

type Observer interface {
	OnTick(p *Population, tick int)
}

// MergeEvent describes one absorption.
type MergeEvent struct {
	Tick        int     `json:"tick"`
	Position    r2.Vec  `json:"position"`
	Absorbed    float64 `json:"absorbed"`
	PrimaryMass float64 `json:"primary_mass"`
}

// MergeObserver is notified of every absorption, in population order.
type MergeObserver interface {
	OnMerge(e MergeEvent)
}

// TickSample summarises the population at the end of one tick.
type TickSample struct {
	Tick          int     `json:"tick"`
	Bodies        int     `json:"bodies"`
	Primaries     int     `json:"primaries"`
	Dynamics      int     `json:"dynamics"`
	TotalMass     float64 `json:"total_mass"`
	KineticEnergy float64 `json:"kinetic_energy"`
	Merges        int     `json:"merges"`
	Spawned       int     `json:"spawned"`
	Expired       int     `json:"expired"`
}

type Result struct {
	Series     []TickSample
	Metrics    map[string]float64
	Merges     []MergeEvent
	Final      []BodyView
	TicksTaken int
	Errors     []error
}
