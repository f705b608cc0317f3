package tradingagents

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/tradingagents/tradingagents-go/providers/ai"
	"github.com/tradingagents/tradingagents-go/toolinvoker"
)

// tokenCounter accumulates LLM token usage across every node invocation in a
// run, so Metrics.LLMTokenCount reflects the whole graph, not one call.
type tokenCounter struct {
	total_ int64
}

func (c *tokenCounter) add(n int) {
	if n <= 0 {
		return
	}
	atomic.AddInt64(&c.total_, int64(n))
}

func (c *tokenCounter) total() int {
	return int(atomic.LoadInt64(&c.total_))
}

// complete sends a single-turn chat request through the configured LLM
// provider, wrapped by the tool invoker's retry/circuit-breaker policy, and
// returns the response's text content. Prompt wording is deliberately thin:
// this module's job is wiring the collaborator, not authoring its prompts.
func complete(ctx context.Context, deps Dependencies, invokerCfg toolinvoker.EndpointConfig, tokens *tokenCounter, endpoint, model, systemPrompt, userPrompt string) (string, error) {
	if deps.LLM == nil {
		return "", fmt.Errorf("tradingagents: no LLM provider configured")
	}

	request := ai.ChatRequest{
		Model:        model,
		SystemPrompt: systemPrompt,
		Messages: []ai.Message{
			{Role: ai.RoleUser, Content: userPrompt},
		},
	}

	response, err := toolinvoker.Invoke(ctx, deps.Invoker, endpoint, request, invokerCfg, func(ctx context.Context) (*ai.ChatResponse, error) {
		return deps.LLM.SendMessage(ctx, request)
	})
	if err != nil {
		return "", err
	}

	if response.Usage != nil {
		tokens.add(response.Usage.TotalTokens)
	}

	return response.Content, nil
}
