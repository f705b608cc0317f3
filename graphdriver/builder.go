package graphdriver

import (
	"context"
	"errors"
	"fmt"

	"github.com/tradingagents/tradingagents-go/state"
)

// StepFunc is one step of the topology: given a read-only snapshot it
// returns a patch to merge. It is deliberately the same shape as
// noderuntime.NodeFunc, so a single analyst node, an entire dispatch fan-out,
// or an entire debate controller loop can all be wired in as one step —
// each already converts its own internal failures into a patch before it
// ever reaches the driver.
type StepFunc func(ctx context.Context, snap state.Snapshot) (state.Patch, error)

// Condition decides whether a step should run against the current snapshot.
// A nil Condition always runs.
type Condition func(snap state.Snapshot) bool

// step is one registered unit of the topology.
type step struct {
	name      string
	condition Condition
	fn        StepFunc
	selfLoop  bool
}

// Builder constructs a validated Graph using a fluent API, for a fixed,
// sequential topology rather than an arbitrary DAG.
type Builder struct {
	steps       []step
	names       map[string]bool
	buildErrors []error
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{names: make(map[string]bool)}
}

// AddStep appends an unconditional step to the topology.
func (b *Builder) AddStep(name string, fn StepFunc) *Builder {
	return b.AddConditionalStep(name, fn, nil)
}

// AddConditionalStep appends a step that only runs when condition(snapshot)
// is true (or condition is nil). A skipped step consumes no recursion
// budget — it was never invoked.
func (b *Builder) AddConditionalStep(name string, fn StepFunc, condition Condition) *Builder {
	if name == "" {
		b.buildErrors = append(b.buildErrors, fmt.Errorf("step name must not be empty"))
		return b
	}
	if fn == nil {
		b.buildErrors = append(b.buildErrors, fmt.Errorf("step %q: fn must not be nil", name))
		return b
	}
	if b.names[name] {
		b.buildErrors = append(b.buildErrors, fmt.Errorf("duplicate step name %q", name))
		return b
	}

	b.names[name] = true
	b.steps = append(b.steps, step{name: name, condition: condition, fn: fn})
	return b
}

// AddSelfLoopStep appends a step that re-invokes fn against the snapshot
// produced by its own previous invocation for as long as repeat(snapshot) is
// true, rather than advancing to the next step in the topology. This is the
// one permitted cycle in an otherwise acyclic topology: a conditional
// self-edge with an explicit, externally-enforced iteration ceiling, used to
// express something like a trader/research-manager re-evaluation loop
// without requiring the builder to support arbitrary back-edges. Every
// iteration — not just the step as a whole — is charged against the run's
// recursion limit, so a pathologically-true repeat condition is still
// bounded.
func (b *Builder) AddSelfLoopStep(name string, fn StepFunc, repeat Condition) *Builder {
	if name == "" {
		b.buildErrors = append(b.buildErrors, fmt.Errorf("step name must not be empty"))
		return b
	}
	if fn == nil {
		b.buildErrors = append(b.buildErrors, fmt.Errorf("step %q: fn must not be nil", name))
		return b
	}
	if repeat == nil {
		b.buildErrors = append(b.buildErrors, fmt.Errorf("step %q: self-loop requires a repeat condition", name))
		return b
	}
	if b.names[name] {
		b.buildErrors = append(b.buildErrors, fmt.Errorf("duplicate step name %q", name))
		return b
	}

	b.names[name] = true
	b.steps = append(b.steps, step{name: name, condition: repeat, fn: fn, selfLoop: true})
	return b
}

// Build validates the accumulated steps and returns an executable Graph.
func (b *Builder) Build() (*Graph, error) {
	if len(b.buildErrors) > 0 {
		return nil, fmt.Errorf("graphdriver build errors: %w", errors.Join(b.buildErrors...))
	}
	if len(b.steps) == 0 {
		return nil, fmt.Errorf("graphdriver: topology must contain at least one step")
	}
	return &Graph{steps: b.steps}, nil
}
