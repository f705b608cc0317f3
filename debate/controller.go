package debate

import (
	"context"
	"sync"

	"github.com/tradingagents/tradingagents-go/noderuntime"
	"github.com/tradingagents/tradingagents-go/providers/observability"
	"github.com/tradingagents/tradingagents-go/state"
)

// PerspectiveNode is one side of the debate (bull, bear, risky, safe,
// neutral). Fn's patch must include ArgumentField holding that round's
// argument text; HistoryField is owned by the controller, not the node.
type PerspectiveNode struct {
	Name         string
	ArgumentField string
	HistoryField string
	Spec         noderuntime.Spec
	Fn           noderuntime.NodeFunc
}

// JudgeNode reads the accumulated debate history and either signals
// consensus or requests another round. Fn's patch must include OutputField
// holding the judge's raw text output.
type JudgeNode struct {
	OutputField string
	Spec        noderuntime.Spec
	Fn          noderuntime.NodeFunc
}

// Spec assembles one debate instance: its perspectives, judge, shared-field
// names, and termination Config.
type Spec struct {
	HistoryField       string
	RoundCountField    string
	QualityField       string
	ConsensusField     string
	JudgeDecisionField string

	Perspectives []PerspectiveNode
	Judge        JudgeNode
	Config       Config
}

// roundResult is one perspective's outcome within a round.
type roundResult struct {
	perspective PerspectiveNode
	argument    string
	failed      bool
}

// Run executes the debate's state machine (init -> round -> judge ->
// {round, terminal}) to completion and returns the single patch the graph
// driver merges at this node's merge point.
func Run(ctx context.Context, rt *noderuntime.Runtime, spec Spec, snap state.Snapshot, observer observability.Provider) (state.Patch, error) {
	cfg := spec.Config.applyDefaults()

	var span observability.Span
	if observer != nil {
		ctx, span = observer.StartSpan(ctx, "debate.run", observability.String("debate.history_field", spec.HistoryField))
		defer span.End()
	}

	history := snap.String(spec.HistoryField)
	perspectiveHistories := make(map[string]string, len(spec.Perspectives))
	for _, p := range spec.Perspectives {
		perspectiveHistories[p.Name] = snap.String(p.HistoryField)
	}

	var (
		roundCount               int
		attempts                 int
		consecutiveJudgeFailures int
		quality                  float64
		judgeDecision            string
		consensus                bool
	)

	for {
		attempts++
		if attempts > cfg.CircuitBreakerAttempts {
			consensus = true
			if judgeDecision == "" {
				judgeDecision = "hold (debate inconclusive)"
			}
			break
		}

		roundSnap := buildRoundSnapshot(snap, spec.HistoryField, history, perspectiveHistories)

		results := runRound(ctx, rt, spec.Perspectives, roundSnap)
		for _, r := range results {
			if r.failed {
				continue
			}
			perspectiveHistories[r.perspective.Name] = appendHistory(perspectiveHistories[r.perspective.Name], r.argument)
			history = appendHistory(history, r.perspective.Name+": "+r.argument)
		}
		roundCount++

		judgeSnap := buildRoundSnapshot(snap, spec.HistoryField, history, perspectiveHistories)
		output, judgeFailed := runJudge(ctx, rt, spec.Judge, judgeSnap)

		if judgeFailed {
			consecutiveJudgeFailures++
			if consecutiveJudgeFailures >= 2 {
				consensus = true
				judgeDecision = "hold (debate inconclusive)"
				break
			}
			if roundCount >= cfg.MaxRounds {
				consensus = true
				if judgeDecision == "" {
					judgeDecision = "hold (debate inconclusive)"
				}
				break
			}
			continue
		}
		consecutiveJudgeFailures = 0
		judgeDecision = output

		if score, ok := ExtractQuality(output); ok {
			quality = score
		}

		lexiconHit := ContainsConsensusPhrase(output, cfg.Lexicon)
		qualityConsensus := quality >= cfg.ForceConsensusQuality && roundCount >= cfg.MinRounds

		if lexiconHit || qualityConsensus {
			consensus = true
			break
		}

		if roundCount >= cfg.MaxRounds {
			consensus = true
			break
		}
	}

	patch := state.Patch{
		spec.HistoryField:       history,
		spec.RoundCountField:    roundCount,
		spec.QualityField:       quality,
		spec.ConsensusField:     consensus,
		spec.JudgeDecisionField: judgeDecision,
	}
	for _, p := range spec.Perspectives {
		patch[p.HistoryField] = perspectiveHistories[p.Name]
	}

	if span != nil {
		span.SetAttributes(
			observability.Int("debate.round_count", roundCount),
			observability.Bool("debate.consensus", consensus),
		)
	}

	return patch, nil
}

// buildRoundSnapshot returns a snapshot clone with the debate's in-progress
// history fields overlaid, so perspectives and the judge see the latest
// accumulated arguments without the controller touching the real store.
func buildRoundSnapshot(base state.Snapshot, historyField, history string, perspectiveHistories map[string]string) state.Snapshot {
	snap := base.Clone()
	snap[historyField] = history
	for field, value := range perspectiveHistories {
		snap[field] = value
	}
	return snap
}

// runRound invokes every perspective concurrently; completion order within a
// round carries no meaning, only the argument text each node produces.
func runRound(ctx context.Context, rt *noderuntime.Runtime, perspectives []PerspectiveNode, snap state.Snapshot) []roundResult {
	results := make(chan roundResult, len(perspectives))

	var wg sync.WaitGroup
	for _, p := range perspectives {
		wg.Add(1)
		go func(p PerspectiveNode) {
			defer wg.Done()

			patch, _ := rt.Invoke(ctx, p.Spec, p.Fn, snap)
			argument, _ := patch[p.ArgumentField].(string)
			failed := p.Spec.StatusField != "" && patch[p.Spec.StatusField] != state.StatusSuccess

			results <- roundResult{perspective: p, argument: argument, failed: failed}
		}(p)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	collected := make([]roundResult, 0, len(perspectives))
	for r := range results {
		collected = append(collected, r)
	}
	return collected
}

// runJudge invokes the judge node and extracts its raw output, reporting
// failed=true when the judge's own status indicates failure or timeout.
func runJudge(ctx context.Context, rt *noderuntime.Runtime, judge JudgeNode, snap state.Snapshot) (output string, failed bool) {
	patch, _ := rt.Invoke(ctx, judge.Spec, judge.Fn, snap)

	if judge.Spec.StatusField != "" {
		if status, _ := patch[judge.Spec.StatusField].(string); status == state.StatusFailed || status == state.StatusTimeout {
			return "", true
		}
	}

	output, _ = patch[judge.OutputField].(string)
	return output, false
}

// appendHistory concatenates incoming onto existing with a newline
// separator, mirroring the AppendString merge strategy used for debate
// history fields in the state schema.
func appendHistory(existing, incoming string) string {
	if existing == "" {
		return incoming
	}
	if incoming == "" {
		return existing
	}
	return existing + "\n" + incoming
}
