package tradingagents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tradingagents/tradingagents-go/compress"
	"github.com/tradingagents/tradingagents-go/config"
	"github.com/tradingagents/tradingagents-go/dataprovider"
	"github.com/tradingagents/tradingagents-go/dispatch"
	"github.com/tradingagents/tradingagents-go/noderuntime"
	"github.com/tradingagents/tradingagents-go/state"
	"github.com/tradingagents/tradingagents-go/toolinvoker"
)

// analystNodes builds one dispatch.NamedNode per selected analyst, each
// gathering its own data dimension and summarizing it into a report via the
// quick LLM model — analyst reports are a fast first pass, not the deep
// debate-stage reasoning.
func analystNodes(cfg config.Config, analysts []string, deps Dependencies, tokens *tokenCounter) []dispatch.NamedNode {
	nodes := make([]dispatch.NamedNode, 0, len(analysts))
	for _, analyst := range analysts {
		nodes = append(nodes, dispatch.NamedNode{
			Name: analyst,
			Spec: noderuntime.Spec{
				Name:        analyst,
				WriteSet:    []string{state.ReportField(analyst), state.ToolCallsField(analyst), state.StatusField(analyst)},
				Timeout:     cfg.NodeTimeout(),
				StatusField: state.StatusField(analyst),
			},
			Fn: makeAnalystFn(analyst, cfg, deps, tokens),
		})
	}
	return nodes
}

func makeAnalystFn(analyst string, cfg config.Config, deps Dependencies, tokens *tokenCounter) noderuntime.NodeFunc {
	return func(ctx context.Context, snap state.Snapshot) (state.Patch, error) {
		ticker := snap.String("ticker")
		window := dataprovider.DateRange{Start: time.Now().AddDate(0, -1, 0), End: time.Now()}

		raw, toolCalls, err := fetchAnalystData(ctx, analyst, ticker, window, cfg, deps)
		if err != nil {
			return nil, err
		}

		report, err := complete(ctx, deps, endpointConfig(cfg, "llm:"+analyst), tokens,
			"llm:"+analyst, cfg.LLM.QuickModel,
			analyst+" analyst: summarize the following data into a concise trading-relevant report.",
			raw,
		)
		if err != nil {
			return nil, err
		}

		return state.Patch{
			state.ReportField(analyst):    report,
			state.ToolCallsField(analyst): toolCalls,
		}, nil
	}
}

// fetchAnalystData pulls the raw data for one analyst dimension through the
// data-provider collaborator, wrapped by the tool invoker for retry/cache/
// circuit-breaking, and serializes it into a plain-text blob the LLM call
// summarizes. Returns the number of underlying provider calls made.
func fetchAnalystData(ctx context.Context, analyst, ticker string, window dataprovider.DateRange, cfg config.Config, deps Dependencies) (string, int, error) {
	if deps.Data == nil {
		return "", 0, fmt.Errorf("tradingagents: no data provider configured for analyst %q", analyst)
	}

	cfgEndpoint := endpointConfig(cfg, "data:"+analyst)

	switch analyst {
	case state.AnalystMarket:
		table, err := toolinvoker.Invoke(ctx, deps.Invoker, "data:market", ticker, cfgEndpoint, func(ctx context.Context) (dataprovider.Table, error) {
			return deps.Data.FetchOHLCV(ctx, ticker, window)
		})
		if err != nil {
			return "", 0, err
		}

		calls := 1
		if deps.Indicators != nil {
			indicators, err := toolinvoker.RunOffloaded(ctx, deps.Pool, func() (dataprovider.Indicators, error) {
				return deps.Indicators.Compute(table, []string{"rsi_14", "macd", "sma_50"})
			})
			if err == nil {
				calls++
				return formatMarket(table, indicators), calls, nil
			}
		}
		return formatMarket(table, nil), calls, nil

	case state.AnalystNews:
		articles, err := toolinvoker.Invoke(ctx, deps.Invoker, "data:news", ticker, cfgEndpoint, func(ctx context.Context) ([]dataprovider.Article, error) {
			return deps.Data.FetchNews(ctx, ticker, window)
		})
		if err != nil {
			return "", 0, err
		}
		return formatArticles(articles), 1, nil

	case state.AnalystSocial:
		posts, err := toolinvoker.Invoke(ctx, deps.Invoker, "data:social", ticker, cfgEndpoint, func(ctx context.Context) ([]dataprovider.Post, error) {
			return deps.Data.FetchSocial(ctx, ticker)
		})
		if err != nil {
			return "", 0, err
		}
		return formatPosts(posts), 1, nil

	case state.AnalystFundamentals:
		fundamentals, err := toolinvoker.Invoke(ctx, deps.Invoker, "data:fundamentals", ticker, cfgEndpoint, func(ctx context.Context) (dataprovider.Fundamentals, error) {
			return deps.Data.FetchFundamentals(ctx, ticker)
		})
		if err != nil {
			return "", 0, err
		}
		return formatFundamentals(fundamentals), 1, nil

	default:
		return "", 0, fmt.Errorf("tradingagents: unknown analyst %q", analyst)
	}
}

func formatMarket(table dataprovider.Table, indicators dataprovider.Indicators) string {
	var b strings.Builder
	fmt.Fprintf(&b, "OHLCV bars for %s: %d\n", table.Ticker, len(table.Bars))
	if len(table.Bars) > 0 {
		last := table.Bars[len(table.Bars)-1]
		fmt.Fprintf(&b, "latest close: %.2f volume: %d\n", last.Close, last.Volume)
	}
	for name, series := range indicators {
		if len(series) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s latest: %.4f\n", name, series[len(series)-1])
	}
	return b.String()
}

func formatArticles(articles []dataprovider.Article) string {
	var b strings.Builder
	for _, a := range compress.TopNArticles(articleTitles(articles), articleBudget) {
		b.WriteString(a)
		b.WriteString("\n")
	}
	return b.String()
}

const articleBudget = 15

func articleTitles(articles []dataprovider.Article) []string {
	titles := make([]string, len(articles))
	for i, a := range articles {
		titles[i] = fmt.Sprintf("[%s] %s: %s", a.Source, a.Title, a.Summary)
	}
	return titles
}

func formatPosts(posts []dataprovider.Post) string {
	var b strings.Builder
	for _, p := range posts {
		fmt.Fprintf(&b, "%s (%s): %s\n", p.Author, p.Platform, p.Body)
	}
	return b.String()
}

func formatFundamentals(f dataprovider.Fundamentals) string {
	return fmt.Sprintf("PE=%.2f EPS=%.2f MarketCap=%.0f RevenueTTM=%.0f FCF=%.0f",
		f.PERatio, f.EPS, f.MarketCap, f.RevenueTTM, f.FreeCashFlow)
}
