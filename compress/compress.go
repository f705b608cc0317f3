package compress

import (
	"strings"

	"github.com/tradingagents/tradingagents-go/providers/observability"
	"github.com/tradingagents/tradingagents-go/state"
)

// Perspective identifies which debator or researcher a View is built for.
type Perspective string

const (
	PerspectiveBull    Perspective = "bull"
	PerspectiveBear    Perspective = "bear"
	PerspectiveRisky   Perspective = "risky"
	PerspectiveSafe    Perspective = "safe"
	PerspectiveNeutral Perspective = "neutral"
)

// budgets holds the guidance byte limits applied per perspective. These are
// sizing knobs, not a runtime-enforced ceiling.
var budgets = struct {
	NewsArticleLimit      int
	ReportSummaryBytes    int
	SharedContextBytes    int
	PerspectiveSliceBytes int
}{
	NewsArticleLimit:      15,
	ReportSummaryBytes:    1024,
	SharedContextBytes:    8192,
	PerspectiveSliceBytes: 2048,
}

// Budget exposes the compression sizing guidance documented in §4.6.
var Budget = budgets

// View is a compressed, perspective-filtered snapshot handed to one node.
type View map[string]string

// reportFields lists the analyst report fields a View's shared summary is
// built from.
var reportFields = []string{
	state.ReportField(state.AnalystMarket),
	state.ReportField(state.AnalystNews),
	state.ReportField(state.AnalystSocial),
	state.ReportField(state.AnalystFundamentals),
}

// Compress produces a perspective-filtered View of snap. It never modifies
// snap; every field read from it is copied into new strings.
func Compress(snap state.Snapshot, perspective Perspective) View {
	// An already-compressed view carries "shared" and no report fields;
	// it is returned as a copy, so compressing it again changes nothing.
	if _, compressed := snap["shared"]; compressed && sharedSummary(snap) == "" {
		again := View{"shared": snap.String("shared")}
		if _, ok := snap["focus"]; ok {
			again["focus"] = snap.String("focus")
		}
		return again
	}

	view := View{
		"shared": sharedSummary(snap),
	}

	switch perspective {
	case PerspectiveBull:
		view["focus"] = filterSentences(snap, isPositiveSignal, budgets.PerspectiveSliceBytes)
	case PerspectiveBear:
		view["focus"] = filterSentences(snap, isNegativeSignal, budgets.PerspectiveSliceBytes)
	case PerspectiveRisky, PerspectiveSafe, PerspectiveNeutral:
		view["focus"] = riskRelevantSlice(snap, perspective, budgets.PerspectiveSliceBytes)
	}

	return view
}

// sharedSummary concatenates a truncated per-report summary across all
// analyst reports, bounded to SharedContextBytes overall.
func sharedSummary(snap state.Snapshot) string {
	var parts []string
	for _, field := range reportFields {
		report := snap.String(field)
		if report == "" {
			continue
		}
		parts = append(parts, observability.TruncateString(report, budgets.ReportSummaryBytes))
	}
	return observability.TruncateString(strings.Join(parts, "\n\n"), budgets.SharedContextBytes)
}

// positiveMarkers and negativeMarkers are the coarse keyword heuristics used
// to bias a researcher's perspective slice. They are not a sentiment model —
// just enough signal to demonstrate perspective filtering without involving
// the LLM client this package has no access to.
var (
	positiveMarkers = []string{"beat", "growth", "upgrade", "strong", "bullish", "outperform", "record"}
	negativeMarkers = []string{"miss", "decline", "downgrade", "weak", "bearish", "underperform", "risk", "lawsuit"}
)

func isPositiveSignal(sentence string) bool { return containsAny(sentence, positiveMarkers) }
func isNegativeSignal(sentence string) bool { return containsAny(sentence, negativeMarkers) }

func containsAny(sentence string, markers []string) bool {
	lower := strings.ToLower(sentence)
	for _, marker := range markers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// filterSentences splits every analyst report into sentences and keeps only
// those matching keep, truncated to budgetBytes.
func filterSentences(snap state.Snapshot, keep func(string) bool, budgetBytes int) string {
	var kept []string
	for _, field := range reportFields {
		for _, sentence := range splitSentences(snap.String(field)) {
			if keep(sentence) {
				kept = append(kept, strings.TrimSpace(sentence))
			}
		}
	}
	return observability.TruncateString(strings.Join(kept, " "), budgetBytes)
}

// riskRelevantSlice extracts the fields relevant to one risk perspective:
// that perspective's own prior argument history plus the shared trader plan,
// since risk debators reason about the proposed plan rather than raw reports.
func riskRelevantSlice(snap state.Snapshot, perspective Perspective, budgetBytes int) string {
	historyField := string(perspective) + "_history"
	parts := []string{
		snap.String("trader_plan"),
		snap.String(historyField),
	}
	return observability.TruncateString(strings.Join(parts, "\n"), budgetBytes)
}

// splitSentences does a simple period-delimited split — good enough for
// keyword-based filtering without needing an NLP dependency.
func splitSentences(text string) []string {
	if text == "" {
		return nil
	}
	raw := strings.Split(text, ".")
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

// TopNArticles returns the first n entries of articles unchanged — a
// news-heavy stage keeps the input ranking rather than re-ranking.
func TopNArticles(articles []string, n int) []string {
	if n <= 0 || n > len(articles) {
		n = len(articles)
	}
	out := make([]string, n)
	copy(out, articles[:n])
	return out
}
