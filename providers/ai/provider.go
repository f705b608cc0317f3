package ai

import (
	"context"
	"net/http"
)

// Provider is the generic interface that all LLM providers must implement
type Provider interface {
	// SendSingleMessage sends a chat request and returns the response
	SendMessage(ctx context.Context, request ChatRequest) (*ChatResponse, error)

	IsStopMessage(message *ChatResponse) bool

	// WithAPIKey sets the API key used for authenticating requests.
	WithAPIKey(apiKey string) Provider

	// WithBaseURL overrides the default base URL for API requests.
	WithBaseURL(baseURL string) Provider

	// WithHttpClient sets the HTTP client used for outbound requests.
	WithHttpClient(httpClient *http.Client) Provider
}

// StreamProvider is implemented by providers that support server-sent-event
// streaming in addition to the synchronous Provider.SendMessage call.
// Not every Provider implements it; callers type-assert before using it and
// fall back to a synchronous call wrapped in a single-event stream otherwise.
type StreamProvider interface {
	Provider

	// StreamMessage sends a chat request and returns a ChatStream that yields
	// incremental StreamEvent values as the provider emits them.
	StreamMessage(ctx context.Context, request ChatRequest) (*ChatStream, error)
}
