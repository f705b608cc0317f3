package dataprovider

import "context"

// Provider fetches the four data dimensions an analyst needs. Every method
// is non-blocking with respect to the caller's goroutine (it may perform
// network I/O, but must respect ctx cancellation) and must report recoverable
// conditions as a *TransientError or *PermanentError rather than a bare error,
// so the Tool Invoker can decide whether to retry.
type Provider interface {
	FetchOHLCV(ctx context.Context, ticker string, window DateRange) (Table, error)
	FetchNews(ctx context.Context, ticker string, window DateRange) ([]Article, error)
	FetchSocial(ctx context.Context, ticker string) ([]Post, error)
	FetchFundamentals(ctx context.Context, ticker string) (Fundamentals, error)
}

// IndicatorEngine computes technical indicators from an OHLCV table. Compute
// may be CPU-bound (numeric library call); callers must invoke it through
// toolinvoker.RunOffloaded rather than call it directly from a node.
type IndicatorEngine interface {
	Compute(ohlcv Table, indicatorSet []string) (Indicators, error)
}
