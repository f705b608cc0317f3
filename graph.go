package tradingagents

import (
	"context"

	"github.com/tradingagents/tradingagents-go/config"
	"github.com/tradingagents/tradingagents-go/debate"
	"github.com/tradingagents/tradingagents-go/dispatch"
	"github.com/tradingagents/tradingagents-go/graphdriver"
	"github.com/tradingagents/tradingagents-go/noderuntime"
	"github.com/tradingagents/tradingagents-go/state"
)

// buildGraph assembles the fixed topology — dispatcher, aggregator, research
// debate, trader, risk debate, final decision — as one graphdriver.Graph.
// dispatch.Dispatch and debate.Run are each wired in as a single step: from
// the driver's perspective an entire analyst fan-out or an entire bounded
// debate loop is one node invocation, since each already converts its own
// internal failures into a patch before the driver ever sees it.
func buildGraph(cfg config.Config, analysts []string, deps Dependencies, tokens *tokenCounter) (*graphdriver.Graph, error) {
	rt := noderuntime.New(deps.Observer, cfg.NodeTimeout())

	nodes := analystNodes(cfg, analysts, deps, tokens)
	researchSpec := researchDebateSpec(cfg, deps, tokens)
	riskSpec := riskDebateSpec(cfg, deps, tokens)

	return graphdriver.NewBuilder().
		AddStep("dispatcher_aggregator", func(ctx context.Context, snap state.Snapshot) (state.Patch, error) {
			result, err := dispatch.Dispatch(ctx, rt, nodes, snap, deps.Observer)
			if err != nil {
				return nil, err
			}
			if result.QuorumFailed {
				patch := state.Patch{}
				for k, v := range result.Patch {
					patch[k] = v
				}
				patch["final_decision"] = state.DecisionErr
				patch["final_rationale"] = "quorum failure: too many analysts failed"
				return patch, nil
			}
			return result.Patch, nil
		}).
		AddConditionalStep("research_debate", func(ctx context.Context, snap state.Snapshot) (state.Patch, error) {
			return debate.Run(ctx, rt, researchSpec, snap, deps.Observer)
		}, atLeastTwoReportsNonEmpty(analysts)).
		AddStep("trader", wrapNode(rt, noderuntime.Spec{
			Name:     "trader",
			WriteSet: []string{"investment_plan", "trader_plan"},
		}, traderFn(cfg, deps, tokens))).
		AddStep("risk_debate", func(ctx context.Context, snap state.Snapshot) (state.Patch, error) {
			return debate.Run(ctx, rt, riskSpec, snap, deps.Observer)
		}).
		AddStep("final_decision", wrapNode(rt, noderuntime.Spec{
			Name:     "final_decision",
			WriteSet: []string{"final_decision", "final_rationale"},
		}, finalDecisionFn())).
		Build()
}

// wrapNode adapts a single noderuntime.NodeFunc into a graphdriver.StepFunc
// by running it through the node runtime directly, for the handful of
// one-off steps (trader, final decision) that are not a fan-out or a debate.
func wrapNode(rt *noderuntime.Runtime, spec noderuntime.Spec, fn noderuntime.NodeFunc) graphdriver.StepFunc {
	return func(ctx context.Context, snap state.Snapshot) (state.Patch, error) {
		return rt.Invoke(ctx, spec, fn, snap)
	}
}

// atLeastTwoReportsNonEmpty returns a Condition that skips the research
// debate when fewer than two of the selected analysts' reports came back
// with content — there is not enough material for bull/bear to meaningfully
// disagree about.
func atLeastTwoReportsNonEmpty(analysts []string) graphdriver.Condition {
	return func(snap state.Snapshot) bool {
		nonEmpty := 0
		for _, analyst := range analysts {
			if snap.String(state.ReportField(analyst)) != "" {
				nonEmpty++
			}
		}
		return nonEmpty >= 2
	}
}
