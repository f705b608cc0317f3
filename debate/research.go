package debate

import "github.com/tradingagents/tradingagents-go/noderuntime"

// NewResearchDebate builds the Spec for the bull-vs-bear research debate,
// judged by a research manager. bullFn and bearFn must write "bull_argument"
// and "bear_argument" respectively; judgeFn must write
// "research_manager_output". The node runtime writes each status field.
func NewResearchDebate(bullFn, bearFn, judgeFn noderuntime.NodeFunc, cfg Config) Spec {
	return Spec{
		HistoryField:       "research_debate_history",
		RoundCountField:    "research_debate_round_count",
		QualityField:       "research_debate_quality_score",
		ConsensusField:     "research_debate_consensus",
		JudgeDecisionField: "research_debate_judge_decision",
		Perspectives: []PerspectiveNode{
			perspective("bull", "bull_history", bullFn),
			perspective("bear", "bear_history", bearFn),
		},
		Judge:  judge("research_manager", judgeFn),
		Config: cfg,
	}
}

func perspective(name, historyField string, fn noderuntime.NodeFunc) PerspectiveNode {
	argumentField := name + "_argument"
	statusField := name + "_status"
	return PerspectiveNode{
		Name:          name,
		ArgumentField: argumentField,
		HistoryField:  historyField,
		Spec: noderuntime.Spec{
			Name:        name,
			WriteSet:    []string{argumentField, statusField},
			StatusField: statusField,
		},
		Fn: fn,
	}
}

func judge(name string, fn noderuntime.NodeFunc) JudgeNode {
	outputField := name + "_output"
	statusField := name + "_status"
	return JudgeNode{
		OutputField: outputField,
		Spec: noderuntime.Spec{
			Name:        name,
			WriteSet:    []string{outputField, statusField},
			StatusField: statusField,
		},
		Fn: fn,
	}
}
