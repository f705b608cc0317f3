package dispatch

import (
	"context"
	"fmt"
	"sync"

	"github.com/tradingagents/tradingagents-go/noderuntime"
	"github.com/tradingagents/tradingagents-go/providers/observability"
	"github.com/tradingagents/tradingagents-go/state"
)

// NamedNode is one analyst task: its node-runtime contract and the function
// that implements it.
type NamedNode struct {
	Name string
	Spec noderuntime.Spec
	Fn   noderuntime.NodeFunc
}

// AggregatedResult is what Dispatch returns once every analyst has reached a
// terminal state.
type AggregatedResult struct {
	// Patch is the set-union of every analyst's patch. Per-analyst keys are
	// disjoint by construction, so merging them is a plain map union — no
	// merge conflicts are possible here.
	Patch state.Patch

	// FailedNodes lists the analysts that did not succeed (failed or
	// timed out), in the order their results arrived.
	FailedNodes []string

	// QuorumFailed is true when more than floor(N/2) analysts failed.
	QuorumFailed bool
}

type nodeOutcome struct {
	name      string
	patch     state.Patch
	failed    bool
	invokeErr error
}

// Dispatch runs every node in nodes concurrently against the same snapshot,
// using rt to enforce each node's timeout/contract individually, and joins
// the results once all have terminated.
//
// If ctx is cancelled mid-fan-out (e.g. the graph driver's wall-clock budget
// expiring), in-flight nodes observe the cancellation inside their own
// noderuntime.Invoke call and return a timeout patch almost immediately —
// Dispatch still waits for all of them, but that wait is bounded by however
// quickly each node's own context check fires, not by the original timeout.
//
// Dispatch returns a non-nil error when nodes is empty (wrapping
// ErrQuorumFailure) and for a contract violation from one of the nodes — a
// programming error that aborts the run, not an analyst failure.
func Dispatch(ctx context.Context, rt *noderuntime.Runtime, nodes []NamedNode, snap state.Snapshot, observer observability.Provider) (AggregatedResult, error) {
	if len(nodes) == 0 {
		return AggregatedResult{}, fmt.Errorf("%w: no analysts selected", ErrQuorumFailure)
	}

	var span observability.Span
	if observer != nil {
		ctx, span = observer.StartSpan(ctx, "dispatch.fanout", observability.Int("dispatch.analyst_count", len(nodes)))
		defer span.End()
	}

	outcomes := make(chan nodeOutcome, len(nodes))

	var wg sync.WaitGroup
	for _, n := range nodes {
		wg.Add(1)
		go func(n NamedNode) {
			defer wg.Done()

			patch, err := rt.Invoke(ctx, n.Spec, n.Fn, snap)
			if err != nil {
				outcomes <- nodeOutcome{name: n.Name, invokeErr: err}
				return
			}

			failed := statusFailed(patch, n.Spec.StatusField)
			outcomes <- nodeOutcome{name: n.Name, patch: patch, failed: failed}
		}(n)
	}

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	merged := state.Patch{}
	var failedNodes []string

	for outcome := range outcomes {
		if outcome.invokeErr != nil {
			return AggregatedResult{}, outcome.invokeErr
		}

		for key, value := range outcome.patch {
			merged[key] = value
		}

		if outcome.failed {
			failedNodes = append(failedNodes, outcome.name)
		}
	}

	quorumFailed := len(failedNodes) > len(nodes)/2

	if span != nil {
		span.SetAttributes(
			observability.Int("dispatch.failed_count", len(failedNodes)),
			observability.Bool("dispatch.quorum_failed", quorumFailed),
		)
	}

	return AggregatedResult{
		Patch:        merged,
		FailedNodes:  failedNodes,
		QuorumFailed: quorumFailed,
	}, nil
}

// statusFailed reports whether the node's status field indicates failure or
// timeout. A node with no configured StatusField is assumed to have
// succeeded — quorum only tracks nodes that report their own status.
func statusFailed(patch state.Patch, statusField string) bool {
	if statusField == "" {
		return false
	}
	status, _ := patch[statusField].(string)
	return status == state.StatusFailed || status == state.StatusTimeout
}
