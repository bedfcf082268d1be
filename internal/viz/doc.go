// Package viz renders a running simulation in the terminal.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [Model]: live view that ticks a [sim.Simulator] every 50 ms
//   - [Canvas]: Braille-based pixel canvas with per-cell colour
//   - [HeatColor]: filament colour by distance to the nearest primary
//   - Preset picker ([RunInteractive]) and three colour themes
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Reset to the seeded initial population
//	D     - Add a random dynamic body
//	P     - Add a primary body of mass slider*5
//	C     - Toggle dynamic-dynamic collisions
//	+/-   - Move the mass slider (1..100)
//	F     - Toggle heat-mapped filaments
//	T     - Cycle color themes
//	?     - Show help overlay
//
// Requests made from the keyboard are queued on the simulator and take
// effect at the start of the next tick.
package viz
