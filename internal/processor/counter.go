package processor

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/dynobject/pkg/dynobject"
	"github.com/mesh-intelligence/dynobject/pkg/types"
)

// Keys used by the counter scenario.
const (
	KeyCounter1 = "counter1"
	KeyCounter2 = "counter2"
	KeyLimit    = "limit"
)

// Processor names used by the counter scenario.
const (
	NameCountUp   = "count-up"
	NameCountDown = "count-down"
)

// Counters is a copy of the scenario's shared values.
type Counters struct {
	Counter1 uint32 `json:"counter1"`
	Counter2 uint32 `json:"counter2"`
	Limit    uint32 `json:"limit"`
}

// Result reports how many steps a processor ran.
type Result struct {
	Processor string `json:"processor"`
	Steps     int    `json:"steps"`
}

// Scenario is the two-processor counter example: count-up increments
// counter1 until it passes limit, then count-down adds step to counter2
// while decrementing counter1 to zero.
type Scenario struct {
	Shared     *dynobject.Object[string]
	Processors []*Processor

	maxSteps int
	log      zerolog.Logger
}

// NewCounterScenario seeds a fresh shared object from cfg and builds both
// processors.
func NewCounterScenario(cfg types.ProcessorConfig, log zerolog.Logger, opts ...dynobject.Option) (*Scenario, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	shared := dynobject.New[string](opts...)
	if err := Setup(shared, cfg); err != nil {
		shared.Release()
		return nil, err
	}

	sc := &Scenario{
		Shared:   shared,
		maxSteps: cfg.MaxSteps,
		log:      log,
	}
	sc.Processors = []*Processor{
		New(NameCountUp, shared, CountUp, log),
		New(NameCountDown, shared, CountDown(cfg.Step), log),
	}
	return sc, nil
}

// Setup creates the scenario keys in obj.
func Setup(obj *dynobject.Object[string], cfg types.ProcessorConfig) error {
	return obj.With(func(s *dynobject.Store[string]) error {
		if _, err := dynobject.Create(s, KeyCounter1, cfg.Counter1); err != nil {
			return fmt.Errorf("create %s: %w", KeyCounter1, err)
		}
		if _, err := dynobject.Create(s, KeyCounter2, cfg.Counter2); err != nil {
			return fmt.Errorf("create %s: %w", KeyCounter2, err)
		}
		if _, err := dynobject.Create(s, KeyLimit, cfg.Limit); err != nil {
			return fmt.Errorf("create %s: %w", KeyLimit, err)
		}
		return nil
	})
}

// CountUp increments counter1 and continues while it does not exceed limit.
// It stops without incrementing once counter1 is at its maximum.
func CountUp(shared *dynobject.Object[string]) (bool, error) {
	g := shared.Acquire()
	defer g.Release()
	s := g.Store()

	c1, err := ref[uint32](s, KeyCounter1)
	if err != nil {
		return false, err
	}
	limit, err := ref[uint32](s, KeyLimit)
	if err != nil {
		return false, err
	}
	if *c1 == math.MaxUint32 {
		return false, nil
	}
	*c1++
	return *limit >= *c1, nil
}

// CountDown returns a runner adding step to counter2 and decrementing
// counter1, continuing while counter1 stays above zero.
func CountDown(step uint32) Runner {
	return func(shared *dynobject.Object[string]) (bool, error) {
		g := shared.Acquire()
		defer g.Release()
		s := g.Store()

		c2, err := ref[uint32](s, KeyCounter2)
		if err != nil {
			return false, err
		}
		c1, err := ref[uint32](s, KeyCounter1)
		if err != nil {
			return false, err
		}
		*c2 += step
		if *c1 == 0 {
			return false, nil
		}
		*c1--
		return *c1 > 0, nil
	}
}

// Run runs each processor to its end, in order.
func (sc *Scenario) Run(hook StepHook) ([]Result, error) {
	if len(sc.Processors) == 0 {
		return nil, types.ErrNoProcessors
	}
	results := make([]Result, 0, len(sc.Processors))
	for _, p := range sc.Processors {
		steps, err := p.RunToEnd(sc.maxSteps, hook)
		results = append(results, Result{Processor: p.Name, Steps: steps})
		if err != nil {
			return results, err
		}
		sc.log.Info().Str("processor", p.Name).Int("steps", steps).Msg("processor finished")
	}
	return results, nil
}

// Counters reads the shared values.
func (sc *Scenario) Counters() (Counters, error) {
	return ReadCounters(sc.Shared)
}

// Close releases every handle held by the scenario.
func (sc *Scenario) Close() {
	for _, p := range sc.Processors {
		p.Close()
	}
	sc.Processors = nil
	sc.Shared.Release()
}

// ReadCounters copies the counter values out of obj.
func ReadCounters(obj *dynobject.Object[string]) (Counters, error) {
	var out Counters
	err := obj.With(func(s *dynobject.Store[string]) error {
		return readCounters(s, &out)
	})
	return out, err
}

// CountersFromStore reads the counters through a borrowed store. It
// reconstructs the owning handle from the store's uplink so the caller
// need only pass the store.
func CountersFromStore(s *dynobject.Store[string]) (Counters, *dynobject.Object[string], error) {
	var out Counters
	obj, err := dynobject.FromStore(s)
	if err != nil {
		return out, nil, err
	}
	if err := readCounters(s, &out); err != nil {
		obj.Release()
		return out, nil, err
	}
	return out, obj, nil
}

func readCounters(s *dynobject.Store[string], out *Counters) error {
	for key, dst := range map[string]*uint32{
		KeyCounter1: &out.Counter1,
		KeyCounter2: &out.Counter2,
		KeyLimit:    &out.Limit,
	} {
		v, err := ref[uint32](s, key)
		if err != nil {
			return err
		}
		*dst = *v
	}
	return nil
}
