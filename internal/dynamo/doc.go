// Package dynamo provides the body model shared by every simulation stage.
//
// The package defines the data the per-tick pipeline operates on:
//
//   - [Body]: a primary (attractor) or dynamic (mobile) body
//   - [Population]: the single ordered collection owned by the simulator
//   - [Params]: every tunable constant of the force, collision and merge passes
//   - [Source]: the injected pseudorandom source
//   - [Metric], [Observer], [MergeObserver]: per-tick hooks
//
// Vectors are gonum [r2.Vec] values.
//
// # Thread Safety
//
// A Population is NOT thread-safe. It is owned by exactly one simulator and
// mutated only from inside a tick. Collaborators read it through
// [Population.Views], which returns independent copies.
//
// [r2.Vec]: https://pkg.go.dev/gonum.org/v1/gonum/spatial/r2#Vec
package dynamo
