package tradingagents

import (
	"context"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tradingagents/tradingagents-go/config"
	"github.com/tradingagents/tradingagents-go/dataprovider"
	"github.com/tradingagents/tradingagents-go/graphdriver"
	"github.com/tradingagents/tradingagents-go/providers/ai"
	"github.com/tradingagents/tradingagents-go/state"
)

// scriptedAI is a mock ai.Provider whose reply is chosen by matching a
// substring of the request's system prompt against respond, falling back to
// fallback when nothing matches. It records every request it saw so tests
// can assert on call ordering and content.
type scriptedAI struct {
	respond  map[string]string
	fallback string
	delay    time.Duration
	seen     atomic.Int64
}

func (s *scriptedAI) SendMessage(ctx context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
	s.seen.Add(1)

	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	content := s.fallback
	for substr, reply := range s.respond {
		if strings.Contains(req.SystemPrompt, substr) {
			content = reply
			break
		}
	}

	return &ai.ChatResponse{
		Content: content,
		Usage:   &ai.Usage{TotalTokens: 42},
	}, nil
}

func (s *scriptedAI) IsStopMessage(*ai.ChatResponse) bool     { return true }
func (s *scriptedAI) WithAPIKey(string) ai.Provider           { return s }
func (s *scriptedAI) WithBaseURL(string) ai.Provider          { return s }
func (s *scriptedAI) WithHttpClient(*http.Client) ai.Provider { return s }

// stubData is a minimal dataprovider.Provider for end-to-end tests: every
// fetch returns a canned value, and newsDelay optionally blocks FetchNews
// (respecting ctx) to exercise node timeouts.
type stubData struct {
	newsDelay time.Duration
}

func (d *stubData) FetchOHLCV(ctx context.Context, ticker string, window dataprovider.DateRange) (dataprovider.Table, error) {
	return dataprovider.Table{Ticker: ticker, Bars: []dataprovider.Bar{{Close: 190.5, Volume: 1_000_000}}}, nil
}

func (d *stubData) FetchNews(ctx context.Context, ticker string, window dataprovider.DateRange) ([]dataprovider.Article, error) {
	if d.newsDelay > 0 {
		select {
		case <-time.After(d.newsDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return []dataprovider.Article{{Title: "steady guidance", Source: "wire", Summary: "no surprises"}}, nil
}

func (d *stubData) FetchSocial(ctx context.Context, ticker string) ([]dataprovider.Post, error) {
	return []dataprovider.Post{{Author: "trader1", Platform: "x", Body: "bullish"}}, nil
}

func (d *stubData) FetchFundamentals(ctx context.Context, ticker string) (dataprovider.Fundamentals, error) {
	return dataprovider.Fundamentals{Ticker: ticker, PERatio: 28, EPS: 6.1}, nil
}

var _ dataprovider.Provider = (*stubData)(nil)
var _ ai.Provider = (*scriptedAI)(nil)

func testConfig() config.Config {
	cfg, _ := config.Load("")
	cfg.Runtime.NodeTimeoutS = 5
	cfg.Runtime.WallClockS = 30
	cfg.Tools.MaxRetries = 0
	return cfg
}

// Scenario 1 — nominal BUY: bull wins the research debate with quality 9,
// the trader recommends BUY, and the risk debators concur.
func TestRunAnalysisNominalBuy(t *testing.T) {
	llm := &scriptedAI{respond: map[string]string{
		"Research manager": `consensus reached, bull case wins {"quality": 9}`,
		"Trader":            "BUY 100 shares, stop at 180",
		"Risk manager":      "consensus reached: BUY, size confirmed",
	}, fallback: "steady outlook"}

	deps := Dependencies{LLM: llm, Data: &stubData{}}
	cfg := testConfig()

	report := RunAnalysis(context.Background(), "AAPL", "2024-01-15", cfg, deps)

	if report.Decision != state.DecisionBuy {
		t.Fatalf("Decision = %q, want BUY (rationale=%q)", report.Decision, report.Rationale)
	}
	if len(report.Metrics.FailedNodes) != 0 {
		t.Errorf("FailedNodes = %v, want none", report.Metrics.FailedNodes)
	}
}

// Scenario 2 — one analyst timeout: the news analyst's data fetch blocks far
// longer than node_timeout_s; the run still reaches a non-ERROR decision and
// reports news_analyst as failed with an empty report.
func TestRunAnalysisOneAnalystTimeout(t *testing.T) {
	llm := &scriptedAI{respond: map[string]string{
		"Research manager": `consensus reached {"quality": 8}`,
		"Risk manager":      "consensus reached: HOLD",
	}, fallback: "steady outlook"}

	deps := Dependencies{LLM: llm, Data: &stubData{newsDelay: 5 * time.Second}}
	cfg := testConfig()
	cfg.Runtime.NodeTimeoutS = 1

	report := RunAnalysis(context.Background(), "AAPL", "2024-01-15", cfg, deps)

	if report.Decision == state.DecisionErr {
		t.Fatalf("Decision = ERROR, want a side decision; rationale=%q", report.Rationale)
	}

	found := false
	for _, name := range report.Metrics.FailedNodes {
		if name == state.AnalystNews {
			found = true
		}
	}
	if !found {
		t.Errorf("FailedNodes = %v, want news_analyst listed", report.Metrics.FailedNodes)
	}
	if report.Evidence.News != "" {
		t.Errorf("Evidence.News = %q, want empty", report.Evidence.News)
	}
}

// Scenario 3 — debate stall: the judge never utters a consensus phrase and
// always reports quality 5 (below the force-consensus threshold), so the
// controller must fall back to its round/circuit-breaker ceiling and still
// produce an overall decision.
func TestRunAnalysisDebateStall(t *testing.T) {
	llm := &scriptedAI{respond: map[string]string{
		"Research manager": `no agreement yet {"quality": 5}`,
		"Risk manager":      "consensus reached: HOLD",
	}, fallback: "steady outlook"}

	deps := Dependencies{LLM: llm, Data: &stubData{}}
	cfg := testConfig()
	cfg.Debate.MaxResearchRounds = 3
	cfg.Debate.CircuitBreakerAttempts = 3

	report := RunAnalysis(context.Background(), "AAPL", "2024-01-15", cfg, deps)

	if report.Decision == "" {
		t.Fatalf("Decision is empty, want a forced terminal decision")
	}
}

// Scenario 4 — quorum failure: three of four analysts fail with permanent
// errors, so dispatch reports a quorum failure and the run must short-circuit
// to ERROR without ever invoking the risk debate.
func TestRunAnalysisQuorumFailure(t *testing.T) {
	llm := &scriptedAI{fallback: "steady outlook"}
	deps := Dependencies{LLM: llm, Data: &failingData{}}
	cfg := testConfig()

	report := RunAnalysis(context.Background(), "AAPL", "2024-01-15", cfg, deps)

	if report.Decision != state.DecisionErr {
		t.Fatalf("Decision = %q, want ERROR", report.Decision)
	}
	if !strings.Contains(strings.ToLower(report.Rationale), "quorum") {
		t.Errorf("Rationale = %q, want it to cite quorum", report.Rationale)
	}
	if report.Evidence.RiskDebate != "" {
		t.Errorf("Evidence.RiskDebate = %q, want empty: risk debate must not run after a quorum failure", report.Evidence.RiskDebate)
	}
}

// failingData fails every fetch except fundamentals with a permanent error,
// simulating three of four analysts failing outright.
type failingData struct{}

func (failingData) FetchOHLCV(ctx context.Context, ticker string, window dataprovider.DateRange) (dataprovider.Table, error) {
	return dataprovider.Table{}, &dataprovider.PermanentError{Op: "ohlcv", Err: errUnknownTicker}
}

func (failingData) FetchNews(ctx context.Context, ticker string, window dataprovider.DateRange) ([]dataprovider.Article, error) {
	return nil, &dataprovider.PermanentError{Op: "news", Err: errUnknownTicker}
}

func (failingData) FetchSocial(ctx context.Context, ticker string) ([]dataprovider.Post, error) {
	return nil, &dataprovider.PermanentError{Op: "social", Err: errUnknownTicker}
}

func (failingData) FetchFundamentals(ctx context.Context, ticker string) (dataprovider.Fundamentals, error) {
	return dataprovider.Fundamentals{Ticker: ticker}, nil
}

var errUnknownTicker = &stubError{"unknown ticker"}

type stubError struct{ msg string }

func (e *stubError) Error() string { return e.msg }

var _ dataprovider.Provider = failingData{}

// Scenario 5 — budget exhaustion: wall_clock_s is tiny and the mock LLM is
// slow, so the run must still return within a small grace window, with
// either a side decision or ERROR, never hanging past the budget.
func TestRunAnalysisBudgetExhaustion(t *testing.T) {
	llm := &scriptedAI{fallback: "steady outlook", delay: 2 * time.Second}
	deps := Dependencies{LLM: llm, Data: &stubData{}}
	cfg := testConfig()
	cfg.Runtime.WallClockS = 1
	cfg.Runtime.NodeTimeoutS = 1

	start := time.Now()
	report := RunAnalysis(context.Background(), "AAPL", "2024-01-15", cfg, deps)
	elapsed := time.Since(start)

	if elapsed > 5*time.Second {
		t.Fatalf("RunAnalysis took %s, want it bounded near the wall-clock budget", elapsed)
	}
	if report.Decision != state.DecisionBuy && report.Decision != state.DecisionHold &&
		report.Decision != state.DecisionSell && report.Decision != state.DecisionErr {
		t.Fatalf("Decision = %q, want a valid enum value", report.Decision)
	}
}

// Scenario 6 — recursion ceiling: a pathological conditional self-edge that
// never satisfies its own repeat condition's negation must still abort at
// recursion_limit rather than loop forever. The fixed tradingagents topology
// has no such cycle by construction (debate rounds are bounded in-node, not
// expressed as a graph self-edge — see DESIGN.md), so this exercises the
// graph driver directly, the same property graphdriver's own tests check.
func TestGraphDriverRecursionCeilingAbortsRun(t *testing.T) {
	schema := state.NewAnalysisSchema(state.DefaultAnalysts)
	store := state.NewStore(schema)

	graph, err := graphdriver.NewBuilder().
		AddSelfLoopStep("research_trader_cycle", func(ctx context.Context, snap state.Snapshot) (state.Patch, error) {
			return state.Patch{"trader_plan": "still negotiating"}, nil
		}, func(state.Snapshot) bool { return true }).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	snap, diag := graph.Execute(context.Background(), store, 5, 10*time.Second, nil)

	if !diag.Aborted {
		t.Fatalf("Aborted = false, want true at the recursion ceiling")
	}
	if snap.String("final_decision") != state.DecisionErr {
		t.Errorf("final_decision = %q, want ERROR", snap.String("final_decision"))
	}
	if diag.NodeCount != 5 {
		t.Errorf("NodeCount = %d, want exactly the recursion limit (5)", diag.NodeCount)
	}
}

// Boundary — zero selected analysts: the run must fail with ERROR citing an
// empty analyst set rather than silently falling back to a default set.
func TestRunAnalysisZeroAnalystsIsError(t *testing.T) {
	llm := &scriptedAI{fallback: "steady outlook"}
	deps := Dependencies{LLM: llm, Data: &stubData{}}
	cfg := testConfig()
	cfg.SelectedAnalysts = []string{}

	report := RunAnalysis(context.Background(), "AAPL", "2024-01-15", cfg, deps)

	if report.Decision != state.DecisionErr {
		t.Fatalf("Decision = %q, want ERROR", report.Decision)
	}
	if !strings.Contains(strings.ToLower(report.Rationale), "analyst") {
		t.Errorf("Rationale = %q, want it to cite the empty analyst set", report.Rationale)
	}
}
