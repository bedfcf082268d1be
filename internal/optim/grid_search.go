package optim

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/gravitas/internal/config"
	"github.com/san-kum/gravitas/internal/dynamo"
	"github.com/san-kum/gravitas/internal/experiment"
)

// Trial is one evaluated grid point.
type Trial struct {
	Params map[string]float64
	Value  float64
	Err    error
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	maximize   bool
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Maximize makes Search keep the largest metric value instead of the smallest.
func (g *GridSearch) Maximize() *GridSearch {
	g.maximize = true
	return g
}

// Search evaluates every combination of the ranges in order and returns all
// trials plus the best one. Failed trials are kept with Err set and never win.
func (g *GridSearch) Search(
	ctx context.Context,
	buildExperiment func(params map[string]float64) (*experiment.Experiment, error),
	metricName string,
) ([]Trial, Trial, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, Trial{}, fmt.Errorf("%w: %d parameters but %d ranges", dynamo.ErrParameterBounds, len(g.paramNames), len(g.ranges))
	}

	var trials []Trial
	if err := g.searchRecursive(ctx, 0, make(map[string]float64), buildExperiment, metricName, &trials); err != nil {
		return trials, Trial{}, err
	}

	best := Trial{Value: math.Inf(1)}
	if g.maximize {
		best.Value = math.Inf(-1)
	}
	found := false
	for _, t := range trials {
		if t.Err != nil {
			continue
		}
		if (g.maximize && t.Value > best.Value) || (!g.maximize && t.Value < best.Value) {
			best, found = t, true
		}
	}
	if !found {
		return trials, Trial{}, fmt.Errorf("no successful trial for metric %s", metricName)
	}
	return trials, best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	buildExperiment func(map[string]float64) (*experiment.Experiment, error),
	metricName string,
	trials *[]Trial,
) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, err)
	}

	if depth == len(g.paramNames) {
		*trials = append(*trials, runTrial(ctx, current, buildExperiment, metricName))
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, buildExperiment, metricName, trials); err != nil {
			return err
		}
	}
	return nil
}

func runTrial(ctx context.Context, params map[string]float64, build func(map[string]float64) (*experiment.Experiment, error), metricName string) Trial {
	t := Trial{Params: params}

	exp, err := build(params)
	if err != nil {
		t.Err = err
		return t
	}

	result, err := exp.Run(ctx)
	if err != nil {
		t.Err = err
		return t
	}

	val, ok := result.Metrics[metricName]
	if !ok {
		t.Err = fmt.Errorf("metric %s not recorded", metricName)
		return t
	}
	t.Value = val
	return t
}

// setters map sweepable names onto a Config.
var setters = map[string]func(c *config.Config, v float64){
	"g":                   func(c *config.Config, v float64) { c.Physics.G = v },
	"softening":           func(c *config.Config, v float64) { c.Physics.Softening = v },
	"distance_exp":        func(c *config.Config, v float64) { c.Physics.DistanceExp = v },
	"damping":             func(c *config.Config, v float64) { c.Physics.Damping = v },
	"restitution":         func(c *config.Config, v float64) { c.Physics.Restitution = v },
	"proximity_threshold": func(c *config.Config, v float64) { c.Physics.ProximityThreshold = v },
	"merge_ticks":         func(c *config.Config, v float64) { c.Physics.MergeTicks = int(v) },
	"burst_count":         func(c *config.Config, v float64) { c.Physics.BurstCount = int(v) },
	"dynamics":            func(c *config.Config, v float64) { c.Bodies.Dynamics = int(v) },
}

// Apply sets the named parameters on cfg.
func Apply(cfg *config.Config, params map[string]float64) error {
	for name, v := range params {
		set, ok := setters[name]
		if !ok {
			return fmt.Errorf("%w: unknown sweep parameter %s (available: %v)", dynamo.ErrParameterBounds, name, Parameters())
		}
		set(cfg, v)
	}
	return nil
}

func Parameters() []string {
	names := make([]string, 0, len(setters))
	for name := range setters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}
