package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/gravitas/internal/config"
	"github.com/san-kum/gravitas/internal/dynamo"
	"github.com/san-kum/gravitas/internal/sim"
)

// Experiment is one configured run.
type Experiment struct {
	cfg       *config.Config
	simulator *sim.Simulator
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{cfg: cfg}
}

func (e *Experiment) Setup(metrics []dynamo.Metric) error {
	if err := e.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	s, err := sim.New(e.cfg.Params(), e.cfg.Setup())
	if err != nil {
		return err
	}
	for _, m := range metrics {
		s.AddMetric(m)
	}
	e.simulator = s
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*dynamo.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Run(ctx, e.cfg.Ticks)
}

func (e *Experiment) Config() *config.Config { return e.cfg }

// GetSimulator returns the underlying simulator for adding observers
func (e *Experiment) GetSimulator() *sim.Simulator {
	return e.simulator
}
