// Package tradingagents assembles the state store, node runtime, dispatcher,
// debate controller, and graph driver into the one exported entry point,
// run_analysis — here RunAnalysis — that drives a full market/news/social/
// fundamentals analysis to a BUY/HOLD/SELL/ERROR decision for one ticker and
// trade date.
package tradingagents

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tradingagents/tradingagents-go/config"
	"github.com/tradingagents/tradingagents-go/dataprovider"
	"github.com/tradingagents/tradingagents-go/providers/ai"
	"github.com/tradingagents/tradingagents-go/providers/observability"
	"github.com/tradingagents/tradingagents-go/state"
	"github.com/tradingagents/tradingagents-go/toolinvoker"
)

// Evidence carries the raw per-component text a DecisionReport is built
// from, so a caller can audit how the final decision was reached.
type Evidence struct {
	Market         string
	News           string
	Social         string
	Fundamentals   string
	ResearchDebate string
	RiskDebate     string
}

// Metrics reports what the run cost, independent of whether it succeeded.
type Metrics struct {
	WallClockS    float64
	NodeCount     int
	LLMTokenCount int
	FailedNodes   []string
}

// DecisionReport is the sole output of RunAnalysis. Field names and the
// Decision enum values are stable across callers.
type DecisionReport struct {
	Ticker    string
	TradeDate string
	Decision  string // BUY | HOLD | SELL | ERROR
	Rationale string
	Evidence  Evidence
	Metrics   Metrics
}

// Dependencies are the external collaborators RunAnalysis wires into the
// graph's node closures. LLM, Data, and Indicators are the three
// collaborator interfaces §6 of the design leaves to the caller; Observer
// and Invoker are optional (a nil Observer disables tracing, a nil Invoker
// gets a fresh default one per call).
type Dependencies struct {
	LLM        ai.Provider
	Data       dataprovider.Provider
	Indicators dataprovider.IndicatorEngine
	Invoker    *toolinvoker.Invoker
	Pool       *toolinvoker.Pool
	Observer   observability.Provider
}

// RunAnalysis drives one end-to-end run: ticker/trade_date are the
// immutable inputs, cfg is the single explicit configuration object (no
// process-wide config is ever consulted), and deps supplies the LLM/data/
// indicator collaborators. It always returns a non-nil *DecisionReport —
// every failure mode documented in the error-handling design degrades to
// decision=ERROR rather than a returned Go error.
func RunAnalysis(ctx context.Context, ticker, tradeDate string, cfg config.Config, deps Dependencies) *DecisionReport {
	start := time.Now()

	if deps.Invoker == nil {
		deps.Invoker = toolinvoker.New()
	}
	if deps.Pool == nil {
		deps.Pool = toolinvoker.NewPool(4)
	}

	// cfg.SelectedAnalysts is taken as-is: config.Load already defaults it to
	// the full analyst set when a YAML file leaves it unset, so an empty
	// slice reaching here means a caller deliberately selected zero analysts
	// and dispatch.Dispatch's quorum check must see that, not a silently
	// repaired default.
	analysts := cfg.SelectedAnalysts

	schema := state.NewAnalysisSchema(analysts)
	store := state.NewStore(schema)

	runID := uuid.NewString()
	_, _ = store.ApplyPatch(state.Patch{
		"ticker":     ticker,
		"trade_date": tradeDate,
		"run_id":     runID,
	})

	var span observability.Span
	if deps.Observer != nil {
		ctx, span = deps.Observer.StartSpan(ctx, "tradingagents.run_analysis",
			observability.String(observability.AttrTradingTicker, ticker),
			observability.String(observability.AttrTradingTradeDate, tradeDate),
			observability.String(observability.AttrTradingRunID, runID),
		)
		defer span.End()
	}

	tokens := &tokenCounter{}
	graph, err := buildGraph(cfg, analysts, deps, tokens)
	if err != nil {
		return &DecisionReport{
			Ticker:    ticker,
			TradeDate: tradeDate,
			Decision:  state.DecisionErr,
			Rationale: "failed to build graph topology: " + err.Error(),
			Metrics:   Metrics{WallClockS: time.Since(start).Seconds()},
		}
	}

	snap, diag := graph.Execute(ctx, store, cfg.Runtime.RecursionLimit, cfg.WallClockBudget(), deps.Observer)

	report := &DecisionReport{
		Ticker:    ticker,
		TradeDate: tradeDate,
		Decision:  snap.String("final_decision"),
		Rationale: snap.String("final_rationale"),
		Evidence: Evidence{
			Market:         snap.String(state.ReportField(state.AnalystMarket)),
			News:           snap.String(state.ReportField(state.AnalystNews)),
			Social:         snap.String(state.ReportField(state.AnalystSocial)),
			Fundamentals:   snap.String(state.ReportField(state.AnalystFundamentals)),
			ResearchDebate: snap.String("research_debate_history"),
			RiskDebate:     snap.String("risk_debate_history"),
		},
		Metrics: Metrics{
			WallClockS:    diag.WallClock.Seconds(),
			NodeCount:     diag.NodeCount,
			LLMTokenCount: tokens.total(),
			FailedNodes:   failedAnalysts(snap, analysts),
		},
	}

	if report.Decision == "" {
		report.Decision = state.DecisionErr
		if report.Rationale == "" {
			report.Rationale = "run ended without a final decision"
		}
	}

	return report
}

// failedAnalysts scans the final snapshot for any analyst whose status
// field reports failed or timeout.
func failedAnalysts(snap state.Snapshot, analysts []string) []string {
	var failed []string
	for _, a := range analysts {
		status := snap.String(state.StatusField(a))
		if status == state.StatusFailed || status == state.StatusTimeout {
			failed = append(failed, a)
		}
	}
	return failed
}
