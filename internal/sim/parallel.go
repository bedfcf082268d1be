package sim

import (
	"context"
	"sync"

	"github.com/san-kum/gravitas/internal/dynamo"
)

// Ensemble runs independent replicas of one setup with consecutive seeds.
// Each replica owns its own Simulator; nothing is shared between goroutines.
type Ensemble struct {
	params    dynamo.Params
	setup     Setup
	numRuns   int
	seedStart int64
	metrics   func() []dynamo.Metric
}

// NewEnsemble prepares numRuns replicas. metrics, when non-nil, builds a
// fresh metric set for every replica.
func NewEnsemble(params dynamo.Params, setup Setup, numRuns int, seedStart int64, metrics func() []dynamo.Metric) *Ensemble {
	return &Ensemble{
		params:    params,
		setup:     setup,
		numRuns:   numRuns,
		seedStart: seedStart,
		metrics:   metrics,
	}
}

func (e *Ensemble) Run(ctx context.Context, ticks int) ([]*dynamo.Result, error) {
	results := make([]*dynamo.Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			setup := e.setup
			setup.Seed = e.seedStart + int64(idx)

			s, err := New(e.params, setup)
			if err != nil {
				errs[idx] = err
				return
			}
			if e.metrics != nil {
				for _, m := range e.metrics() {
					s.AddMetric(m)
				}
			}

			results[idx], errs[idx] = s.Run(ctx, ticks)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
