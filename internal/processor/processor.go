// Package processor drives callback-style processing steps that share one
// dynamic object. Each Processor holds its own clone of the shared handle
// and acquires the store only for the duration of a step.
package processor

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/dynobject/pkg/dynobject"
	"github.com/mesh-intelligence/dynobject/pkg/types"
)

// Runner performs one step against the shared object and reports whether
// the processor wants to run again.
type Runner func(shared *dynobject.Object[string]) (bool, error)

// StepHook is called after every successful step.
type StepHook func(name string, step int, more bool)

// Processor pairs a runner with its handle on the shared object.
type Processor struct {
	Name   string
	Shared *dynobject.Object[string]
	Runner Runner

	log zerolog.Logger
}

// New returns a processor owning a clone of shared. Call Close to drop it.
func New(name string, shared *dynobject.Object[string], runner Runner, log zerolog.Logger) *Processor {
	return &Processor{
		Name:   name,
		Shared: shared.Clone(),
		Runner: runner,
		log:    log.With().Str("processor", name).Logger(),
	}
}

// Run executes one step.
func (p *Processor) Run() (bool, error) {
	if p.Runner == nil {
		return false, fmt.Errorf("%s: %w", p.Name, types.ErrRunnerMissing)
	}
	return p.Runner(p.Shared)
}

// RunToEnd runs steps until the runner reports false. It fails with
// types.ErrStepLimit after maxSteps steps that all asked for more.
func (p *Processor) RunToEnd(maxSteps int, hook StepHook) (int, error) {
	for step := 1; step <= maxSteps; step++ {
		more, err := p.Run()
		if err != nil {
			return step, fmt.Errorf("%s step %d: %w", p.Name, step, err)
		}
		p.log.Debug().Int("step", step).Bool("more", more).Msg("running")
		if hook != nil {
			hook(p.Name, step, more)
		}
		if !more {
			return step, nil
		}
	}
	return maxSteps, fmt.Errorf("%s: %w (%d)", p.Name, types.ErrStepLimit, maxSteps)
}

// Close releases the processor's handle.
func (p *Processor) Close() {
	p.Shared.Release()
}

// ref returns a pointer to the value of type T under key, reporting a
// missing key or a type mismatch as an error.
func ref[T any](s *dynobject.Store[string], key string) (*T, error) {
	prop := s.Index(key)
	if prop.IsUndefined() {
		return nil, fmt.Errorf("%s: %w", key, types.ErrKeyNotFound)
	}
	v, ok := dynobject.Write[T](prop)
	if !ok {
		return nil, fmt.Errorf("%s is %s: %w", key, prop.Type(), types.ErrTypeMismatch)
	}
	return v, nil
}
