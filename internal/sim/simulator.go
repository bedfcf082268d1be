package sim

import (
	"context"
	"fmt"

	"github.com/san-kum/gravitas/internal/dynamo"
	"github.com/san-kum/gravitas/internal/integrators"
	"github.com/san-kum/gravitas/internal/physics"
	"golang.org/x/exp/rand"
)

// Simulator owns the population and runs the per-tick pipeline:
// forces, primary collisions, optional dynamic collisions, integration and
// the merge pass. Collaborator requests are queued and applied at the start
// of the next tick.
type Simulator struct {
	params     dynamo.Params
	setup      Setup
	rng        *rand.Rand
	pop        *dynamo.Population
	forces     *physics.ForceCalculator
	integrator *integrators.Euler

	dynamicCollisions bool
	pending           []request
	tick              int

	metrics        []dynamo.Metric
	observers      []dynamo.Observer
	mergeObservers []dynamo.MergeObserver
}

// TickReport summarises the structural changes of one tick.
type TickReport struct {
	Tick       int
	Collisions int
	Expired    int
	Spawned    int
	Merges     []dynamo.MergeEvent
}

func New(params dynamo.Params, setup Setup) (*Simulator, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if err := setup.Validate(); err != nil {
		return nil, err
	}

	s := &Simulator{
		params:         params,
		setup:          setup,
		metrics:        make([]dynamo.Metric, 0),
		observers:      make([]dynamo.Observer, 0),
		mergeObservers: make([]dynamo.MergeObserver, 0),
	}
	s.Reset()
	return s, nil
}

// Reset discards the population and pending requests and rebuilds the
// initial bodies from the setup seed.
func (s *Simulator) Reset() {
	s.rng = rand.New(rand.NewSource(uint64(s.setup.Seed)))
	s.forces = physics.NewForceCalculator(s.params, s.rng)
	s.integrator = integrators.NewEuler(s.params)
	s.pop = s.setup.populate(s.rng)
	s.dynamicCollisions = s.setup.DynamicCollisions
	s.pending = nil
	s.tick = 0
}

// AddMetric registers m; metrics that also observe merges receive them.
func (s *Simulator) AddMetric(m dynamo.Metric) {
	s.metrics = append(s.metrics, m)
	if mo, ok := m.(dynamo.MergeObserver); ok {
		s.mergeObservers = append(s.mergeObservers, mo)
	}
}

func (s *Simulator) AddObserver(o dynamo.Observer)           { s.observers = append(s.observers, o) }
func (s *Simulator) AddMergeObserver(o dynamo.MergeObserver) { s.mergeObservers = append(s.mergeObservers, o) }

func (s *Simulator) Params() dynamo.Params          { return s.params }
func (s *Simulator) Setup() Setup                   { return s.setup }
func (s *Simulator) TickCount() int                 { return s.tick }
func (s *Simulator) Population() *dynamo.Population { return s.pop }
func (s *Simulator) Views() []dynamo.BodyView       { return s.pop.Views() }

// Tick drains queued requests and runs one pass of the pipeline.
func (s *Simulator) Tick() TickReport {
	s.drain()

	rep := TickReport{Tick: s.tick + 1}

	s.forces.ApplyForces(s.pop)
	rep.Collisions = s.forces.ResolvePrimaryCollisions(s.pop)
	if s.dynamicCollisions {
		rep.Collisions += s.forces.ResolveDynamicCollisions(s.pop)
	}
	rep.Expired = s.integrator.UpdatePositions(s.pop)
	rep.Merges, rep.Spawned = s.mergePass(rep.Tick)

	s.tick = rep.Tick

	for _, e := range rep.Merges {
		for _, o := range s.mergeObservers {
			o.OnMerge(e)
		}
	}
	return rep
}

// Run advances the simulation ticks times, feeding metrics and observers after
// every tick.
func (s *Simulator) Run(ctx context.Context, ticks int) (*dynamo.Result, error) {
	if ticks <= 0 {
		return nil, fmt.Errorf("%w: ticks must be positive, got %d", dynamo.ErrParameterBounds, ticks)
	}

	result := &dynamo.Result{
		Series:  make([]dynamo.TickSample, 0, ticks),
		Metrics: make(map[string]float64),
		Merges:  make([]dynamo.MergeEvent, 0),
		Errors:  make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	for i := 0; i < ticks; i++ {
		select {
		case <-ctx.Done():
			result.Final = s.pop.Views()
			return result, fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, ctx.Err())
		default:
		}

		rep := s.Tick()
		result.TicksTaken++
		result.Merges = append(result.Merges, rep.Merges...)
		result.Series = append(result.Series, s.sample(rep))

		for _, m := range s.metrics {
			m.Observe(s.pop, rep.Tick)
		}
		for _, o := range s.observers {
			o.OnTick(s.pop, rep.Tick)
		}

		if s.setup.ValidateState && !s.pop.IsValid() {
			result.Errors = append(result.Errors, dynamo.SimError{
				Tick:    rep.Tick,
				Message: "invalid state (NaN/Inf)",
				Wrapped: dynamo.ErrInvalidState,
			})
			break
		}
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	result.Final = s.pop.Views()

	return result, nil
}

// RunWithCallback ticks until ticks is reached, ctx is done or callback
// returns false.
func (s *Simulator) RunWithCallback(ctx context.Context, ticks int, callback func(*dynamo.Population, TickReport) bool) error {
	for i := 0; i < ticks; i++ {
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, ctx.Err())
		default:
		}

		rep := s.Tick()
		if !callback(s.pop, rep) {
			return nil
		}

		if s.setup.ValidateState && !s.pop.IsValid() {
			return dynamo.SimError{Tick: rep.Tick, Message: "invalid state (NaN/Inf)", Wrapped: dynamo.ErrInvalidState}
		}
	}
	return nil
}

func (s *Simulator) sample(rep TickReport) dynamo.TickSample {
	return dynamo.TickSample{
		Tick:          rep.Tick,
		Bodies:        s.pop.Len(),
		Primaries:     s.pop.Count(dynamo.KindPrimary),
		Dynamics:      s.pop.Count(dynamo.KindDynamic),
		TotalMass:     s.pop.TotalMass(),
		KineticEnergy: s.pop.KineticEnergy(),
		Merges:        len(rep.Merges),
		Spawned:       rep.Spawned,
		Expired:       rep.Expired,
	}
}
