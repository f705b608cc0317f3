package tradingagents

import (
	"context"
	"fmt"

	"github.com/tradingagents/tradingagents-go/compress"
	"github.com/tradingagents/tradingagents-go/config"
	"github.com/tradingagents/tradingagents-go/debate"
	"github.com/tradingagents/tradingagents-go/noderuntime"
	"github.com/tradingagents/tradingagents-go/state"
)

// researchDebateSpec assembles the bull/bear research debate, judged by a
// research manager, using the deep LLM model for every participant.
func researchDebateSpec(cfg config.Config, deps Dependencies, tokens *tokenCounter) debate.Spec {
	debateCfg := debate.ResearchDefaults()
	debateCfg.MaxRounds = cfg.Debate.MaxResearchRounds
	debateCfg.MinRounds = cfg.Debate.MinRounds
	debateCfg.ForceConsensusQuality = cfg.Debate.ForceConsensusQuality
	debateCfg.CircuitBreakerAttempts = cfg.Debate.CircuitBreakerAttempts

	bullFn := makePerspectiveFn(compress.PerspectiveBull, "bull_argument", cfg, deps, tokens,
		"Bull researcher: argue the case for buying, grounded in the shared analyst reports and the debate so far.")
	bearFn := makePerspectiveFn(compress.PerspectiveBear, "bear_argument", cfg, deps, tokens,
		"Bear researcher: argue the case against buying, grounded in the shared analyst reports and the debate so far.")
	judgeFn := makeJudgeFn(compress.PerspectiveBull, "research_debate_history", "research_manager_output", cfg, deps, tokens,
		"Research manager: weigh both arguments, decide whether consensus is reached, and end your reply with a JSON object {\"quality\": <0-10>}.")

	return debate.NewResearchDebate(bullFn, bearFn, judgeFn, debateCfg)
}

// riskDebateSpec assembles the risky/safe/neutral risk debate, judged by a
// risk manager, bounded by §6's debate.max_risk_rounds (default 1).
func riskDebateSpec(cfg config.Config, deps Dependencies, tokens *tokenCounter) debate.Spec {
	debateCfg := debate.RiskDefaults()
	debateCfg.MaxRounds = cfg.Debate.MaxRiskRounds
	debateCfg.MinRounds = cfg.Debate.MinRounds
	debateCfg.ForceConsensusQuality = cfg.Debate.ForceConsensusQuality
	debateCfg.CircuitBreakerAttempts = cfg.Debate.CircuitBreakerAttempts

	riskyFn := makePerspectiveFn(compress.PerspectiveRisky, "risky_argument", cfg, deps, tokens,
		"Risky analyst: argue for the more aggressive position on the proposed trade plan.")
	safeFn := makePerspectiveFn(compress.PerspectiveSafe, "safe_argument", cfg, deps, tokens,
		"Safe analyst: argue for the more conservative position on the proposed trade plan.")
	neutralFn := makePerspectiveFn(compress.PerspectiveNeutral, "neutral_argument", cfg, deps, tokens,
		"Neutral analyst: weigh both the risky and safe positions on the proposed trade plan.")
	judgeFn := makeJudgeFn(compress.PerspectiveRisky, "risk_debate_history", "risk_manager_output", cfg, deps, tokens,
		"Risk manager: decide the final risk posture and end your reply with a JSON object {\"quality\": <0-10>}.")

	return debate.NewRiskDebate(riskyFn, safeFn, neutralFn, judgeFn, debateCfg)
}

func makePerspectiveFn(perspective compress.Perspective, argumentField string, cfg config.Config, deps Dependencies, tokens *tokenCounter, systemPrompt string) noderuntime.NodeFunc {
	return func(ctx context.Context, snap state.Snapshot) (state.Patch, error) {
		view := compress.Compress(snap, perspective)
		prompt := fmt.Sprintf("shared context:\n%s\n\nyour focus:\n%s", view["shared"], view["focus"])

		argument, err := complete(ctx, deps, endpointConfig(cfg, "llm:"+string(perspective)), tokens,
			"llm:"+string(perspective), cfg.LLM.DeepModel, systemPrompt, prompt)
		if err != nil {
			return nil, err
		}

		return state.Patch{argumentField: argument}, nil
	}
}

func makeJudgeFn(perspective compress.Perspective, historyField, outputField string, cfg config.Config, deps Dependencies, tokens *tokenCounter, systemPrompt string) noderuntime.NodeFunc {
	return func(ctx context.Context, snap state.Snapshot) (state.Patch, error) {
		view := compress.Compress(snap, perspective)
		prompt := fmt.Sprintf("shared context:\n%s\n\nfull debate history:\n%s", view["shared"], snap.String(historyField))

		output, err := complete(ctx, deps, endpointConfig(cfg, "llm:"+outputField), tokens,
			"llm:"+outputField, cfg.LLM.DeepModel, systemPrompt, prompt)
		if err != nil {
			return nil, err
		}

		return state.Patch{outputField: output}, nil
	}
}
