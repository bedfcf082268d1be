package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/gravitas/internal/dynamo"
	"github.com/san-kum/gravitas/internal/metrics"
)

// Registry maps metric names to constructors.
type Registry struct {
	metrics map[string]func(dynamo.Params) dynamo.Metric
}

func NewRegistry() *Registry {
	r := &Registry{
		metrics: make(map[string]func(dynamo.Params) dynamo.Metric),
	}

	r.metrics["kinetic_energy"] = func(dynamo.Params) dynamo.Metric { return metrics.NewKineticEnergy() }
	r.metrics["mass_drift"] = func(dynamo.Params) dynamo.Metric { return metrics.NewMassDrift() }
	r.metrics["primary_mass"] = func(dynamo.Params) dynamo.Metric { return metrics.NewPrimaryMass() }
	r.metrics["stability"] = func(p dynamo.Params) dynamo.Metric { return metrics.NewStability(p) }
	r.metrics["peak_bodies"] = func(dynamo.Params) dynamo.Metric { return metrics.NewPeakBodies() }
	r.metrics["mean_dynamics"] = func(dynamo.Params) dynamo.Metric { return metrics.NewMeanDynamics() }
	r.metrics["merges"] = func(dynamo.Params) dynamo.Metric { return metrics.NewMerges() }

	return r
}

func (r *Registry) GetMetric(name string, params dynamo.Params) (dynamo.Metric, error) {
	fn, ok := r.metrics[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s", name)
	}
	return fn(params), nil
}

func (r *Registry) ListMetrics() []string {
	names := make([]string, 0, len(r.metrics))
	for name := range r.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics builds one instance of every registered metric.
func (r *Registry) DefaultMetrics(params dynamo.Params) []dynamo.Metric {
	out := make([]dynamo.Metric, 0, len(r.metrics))
	for _, name := range r.ListMetrics() {
		out = append(out, r.metrics[name](params))
	}
	return out
}
