package debate

import "github.com/tradingagents/tradingagents-go/noderuntime"

// NewRiskDebate builds the Spec for the risky/safe/neutral risk debate,
// judged by a risk manager.
func NewRiskDebate(riskyFn, safeFn, neutralFn, judgeFn noderuntime.NodeFunc, cfg Config) Spec {
	return Spec{
		HistoryField:       "risk_debate_history",
		RoundCountField:    "risk_debate_round_count",
		QualityField:       "risk_debate_quality_score",
		ConsensusField:     "risk_debate_consensus",
		JudgeDecisionField: "risk_debate_judge_decision",
		Perspectives: []PerspectiveNode{
			perspective("risky", "risky_history", riskyFn),
			perspective("safe", "safe_history", safeFn),
			perspective("neutral", "neutral_history", neutralFn),
		},
		Judge:  judge("risk_manager", judgeFn),
		Config: cfg,
	}
}
