package tradingagents

import (
	"errors"
	"time"

	"github.com/tradingagents/tradingagents-go/config"
	"github.com/tradingagents/tradingagents-go/dataprovider"
	"github.com/tradingagents/tradingagents-go/toolinvoker"
)

// endpointConfig translates cfg.Tools into the toolinvoker.EndpointConfig
// every wrapped collaborator call (LLM or data-fetch) shares, with an
// optional per-endpoint cache TTL override from cfg.Tools.CacheTTLS.
func endpointConfig(cfg config.Config, endpoint string) toolinvoker.EndpointConfig {
	ttl := time.Duration(0)
	if seconds, ok := cfg.Tools.CacheTTLS[endpoint]; ok {
		ttl = time.Duration(seconds) * time.Second
	}

	return toolinvoker.EndpointConfig{
		Retry: toolinvoker.RetryConfig{
			MaxAttempts: cfg.Tools.MaxRetries,
			BaseDelay:   time.Second,
			Factor:      2,
			Retryable:   isRetryable,
		},
		BreakerThreshold:  cfg.Tools.CircuitBreakerThreshold,
		BreakerResetAfter: time.Duration(cfg.Tools.CircuitBreakerResetS) * time.Second,
		CacheTTL:          ttl,
	}
}

// isRetryable reports whether a data-provider error should trigger a retry:
// a *dataprovider.PermanentError (bad ticker, auth failure) never should,
// while a *dataprovider.TransientError, an LLM-provider error, or anything
// untyped is assumed recoverable.
func isRetryable(err error) bool {
	var permanent *dataprovider.PermanentError
	return !errors.As(err, &permanent)
}
