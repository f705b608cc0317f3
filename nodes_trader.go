package tradingagents

import (
	"context"
	"fmt"
	"strings"

	"github.com/tradingagents/tradingagents-go/config"
	"github.com/tradingagents/tradingagents-go/noderuntime"
	"github.com/tradingagents/tradingagents-go/state"
)

// traderFn turns the research debate's synthesis into a concrete plan: it
// copies the research manager's decision into investment_plan, then asks the
// deep model to translate that into a position-sizing trader_plan, which the
// risk debate reasons about next.
func traderFn(cfg config.Config, deps Dependencies, tokens *tokenCounter) noderuntime.NodeFunc {
	return func(ctx context.Context, snap state.Snapshot) (state.Patch, error) {
		investmentPlan := snap.String("research_debate_judge_decision")

		prompt := fmt.Sprintf(
			"investment plan from the research manager:\n%s\n\nmarket report:\n%s",
			investmentPlan, snap.String(state.ReportField(state.AnalystMarket)),
		)

		traderPlan, err := complete(ctx, deps, endpointConfig(cfg, "llm:trader"), tokens,
			"llm:trader", cfg.LLM.DeepModel,
			"Trader: translate the investment plan and market report into a concrete position plan (size, entry, stop).",
			prompt,
		)
		if err != nil {
			return nil, err
		}

		return state.Patch{
			"investment_plan": investmentPlan,
			"trader_plan":     traderPlan,
		}, nil
	}
}

// finalDecisionFn maps the risk debate's synthesis into the stable
// final_decision enum, defaulting to HOLD when no BUY/SELL signal is
// unambiguous in the judge's text — a conservative default rather than a
// programming error, since the judge's text is free-form LLM output.
func finalDecisionFn() noderuntime.NodeFunc {
	return func(ctx context.Context, snap state.Snapshot) (state.Patch, error) {
		rationale := snap.String("risk_debate_judge_decision")

		return state.Patch{
			"final_decision":  classifyDecision(rationale),
			"final_rationale": rationale,
		}, nil
	}
}

// classifyDecision maps the risk manager's free text to a decision: SELL if
// the text mentions SELL anywhere, otherwise BUY if it mentions BUY,
// otherwise HOLD.
func classifyDecision(text string) string {
	upper := strings.ToUpper(text)
	switch {
	case strings.Contains(upper, "SELL"):
		return state.DecisionSell
	case strings.Contains(upper, "BUY"):
		return state.DecisionBuy
	default:
		return state.DecisionHold
	}
}
