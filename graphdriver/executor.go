package graphdriver

import (
	"context"
	"time"

	"github.com/tradingagents/tradingagents-go/providers/observability"
	"github.com/tradingagents/tradingagents-go/state"
)

// Graph is a validated, executable topology produced by Builder.Build.
type Graph struct {
	steps []step
}

// Diagnostics reports what happened during a run, independent of the final
// decision content — used both for DecisionReport.metrics and for deciding
// whether the run was aborted rather than completed normally.
type Diagnostics struct {
	NodeCount   int
	WallClock   time.Duration
	Aborted     bool
	AbortReason error
}

// Execute runs the topology to completion against store, honoring
// recursionLimit (node invocations per run) and budget (wall-clock). It
// never returns a Go error: every abort condition — recursion ceiling,
// budget exhaustion, or a contract violation from a step — is recorded in
// Diagnostics and reflected in the final snapshot via a synthetic
// final_decision=ERROR patch, because a run always returns a decision.
func (g *Graph) Execute(ctx context.Context, store *state.Store, recursionLimit int, budget time.Duration, observer observability.Provider) (state.Snapshot, Diagnostics) {
	start := time.Now()
	diag := Diagnostics{}

	runCtx := ctx
	var cancel context.CancelFunc
	if budget > 0 {
		runCtx, cancel = context.WithTimeout(ctx, budget)
		defer cancel()
	}

	var span observability.Span
	if observer != nil {
		runCtx, span = observer.StartSpan(runCtx, "graphdriver.execute", observability.Int("graphdriver.step_count", len(g.steps)))
		defer span.End()
	}

	for _, s := range g.steps {
		snap := store.Snapshot()

		if snap.String("final_decision") == state.DecisionErr {
			// A prior step already short-circuited the run (e.g. a quorum
			// failure); remaining steps are skipped, not invoked.
			continue
		}

		select {
		case <-runCtx.Done():
			diag.Aborted = true
			diag.AbortReason = ErrBudgetExhausted
			abortWithError(store, ErrBudgetExhausted.Error())
			diag.WallClock = time.Since(start)
			return store.Snapshot(), diag
		default:
		}

		if !s.selfLoop && s.condition != nil && !s.condition(snap) {
			continue
		}

		if s.selfLoop {
			aborted, reason := g.runSelfLoop(runCtx, store, s, recursionLimit, &diag)
			if aborted {
				diag.Aborted = true
				diag.AbortReason = reason
				abortWithError(store, reason.Error())
				diag.WallClock = time.Since(start)
				return store.Snapshot(), diag
			}
			continue
		}

		if recursionLimit > 0 && diag.NodeCount+1 > recursionLimit {
			diag.Aborted = true
			diag.AbortReason = ErrRecursionLimitExceeded
			abortWithError(store, "recursion limit exceeded")
			diag.WallClock = time.Since(start)
			return store.Snapshot(), diag
		}
		diag.NodeCount++

		patch, err := s.fn(runCtx, snap)
		if err != nil {
			diag.Aborted = true
			diag.AbortReason = err
			abortWithError(store, err.Error())
			diag.WallClock = time.Since(start)
			return store.Snapshot(), diag
		}

		if _, err := store.ApplyPatch(patch); err != nil {
			diag.Aborted = true
			diag.AbortReason = err
			abortWithError(store, err.Error())
			diag.WallClock = time.Since(start)
			return store.Snapshot(), diag
		}
	}

	// The loop checks the budget before each step starts; this check covers
	// the merge point of the final step.
	if runCtx.Err() != nil && store.Snapshot().String("final_decision") != state.DecisionErr {
		diag.Aborted = true
		diag.AbortReason = ErrBudgetExhausted
		abortWithError(store, ErrBudgetExhausted.Error())
	}

	diag.WallClock = time.Since(start)
	return store.Snapshot(), diag
}

// runSelfLoop drives one self-loop step to completion: it keeps invoking
// s.fn and merging its patch for as long as s.condition (the repeat
// condition) holds against the latest snapshot, charging every iteration
// against recursionLimit so a pathological repeat condition that never goes
// false is still caught rather than spinning forever.
func (g *Graph) runSelfLoop(ctx context.Context, store *state.Store, s step, recursionLimit int, diag *Diagnostics) (aborted bool, reason error) {
	for {
		snap := store.Snapshot()
		if !s.condition(snap) {
			return false, nil
		}

		select {
		case <-ctx.Done():
			return true, ErrBudgetExhausted
		default:
		}

		if recursionLimit > 0 && diag.NodeCount+1 > recursionLimit {
			return true, ErrRecursionLimitExceeded
		}
		diag.NodeCount++

		patch, err := s.fn(ctx, snap)
		if err != nil {
			return true, err
		}
		if _, err := store.ApplyPatch(patch); err != nil {
			return true, err
		}
	}
}

// abortWithError forces the run to a terminal ERROR decision. It bypasses
// the normal merge-conflict checks (final_decision and final_rationale are
// both plain last-writer-wins scalars with no other concurrent writer at
// this point) so an abort is never itself blocked by the very state store it
// is trying to finalize.
func abortWithError(store *state.Store, reason string) {
	_, _ = store.ApplyPatch(state.Patch{
		"final_decision":  state.DecisionErr,
		"final_rationale": reason,
	})
}
