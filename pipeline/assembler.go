package pipeline

import (
	"fmt"

	"github.com/c360/thermoflow/errors"
	"github.com/c360/thermoflow/stage"
)

// EmitterFunc supplies the monitor emitter for the stage at the given chain
// index. Returning nil leaves that stage unmonitored. A nil EmitterFunc
// leaves the whole chain unmonitored.
type EmitterFunc func(index int) stage.Emitter

// Chain is an assembled linear pipeline. It produces values from its last
// stage and retains the ordered stage list; indices are stable and equal to
// the position in the spec list.
type Chain struct {
	head   stage.Producer
	stages []stage.Stage
}

// Assemble folds the ordered specs over the source, wrapping the accumulated
// producer with each stage in turn. Stages are never reordered or skipped.
// An invalid spec aborts assembly with a configuration error.
func Assemble(source stage.Producer, specs []stage.Spec, emitterFor EmitterFunc) (*Chain, error) {
	if source == nil {
		return nil, errors.WrapInvalid(errors.ErrMissingConfig, "Chain", "Assemble", "source is required")
	}

	chain := &Chain{
		head:   source,
		stages: make([]stage.Stage, 0, len(specs)),
	}

	for i, spec := range specs {
		var emitter stage.Emitter
		if emitterFor != nil {
			emitter = emitterFor(i)
		}

		st, err := spec.Build(chain.head, emitter)
		if err != nil {
			return nil, errors.Wrap(err, "Chain", "Assemble",
				fmt.Sprintf("stage %d (%s) construction", i, spec.Kind))
		}

		chain.stages = append(chain.stages, st)
		chain.head = st
	}

	return chain, nil
}

// Next pulls one value through the whole chain.
func (c *Chain) Next() (float64, bool) {
	return c.head.Next()
}

// Len returns the number of stages in the chain.
func (c *Chain) Len() int {
	return len(c.stages)
}

// Stages returns the ordered stage list. The slice must not be mutated.
func (c *Chain) Stages() []stage.Stage {
	return c.stages
}
