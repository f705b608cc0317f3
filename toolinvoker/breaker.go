package toolinvoker

import (
	"sync"
	"time"
)

// breakerState is the circuit breaker's current phase.
type breakerState int

const (
	breakerClosed breakerState = iota
	breakerOpen
	breakerHalfOpen
)

// Breaker is a per-endpoint circuit breaker: it opens after a run of
// consecutive failures, rejecting calls outright until a reset timeout
// elapses, then allows exactly one trial call through (half-open) before
// deciding whether to close again or re-open.
//
// No circuit-breaker library was available anywhere in the retrieved
// reference material for this module, so this is a small hand-rolled state
// machine rather than a wrapped third-party implementation — see DESIGN.md.
type Breaker struct {
	mu sync.Mutex

	state       breakerState
	failures    int
	threshold   int
	resetAfter  time.Duration
	openedAt    time.Time
	halfOpenTry bool
}

// NewBreaker constructs a Breaker that opens after threshold consecutive
// failures and half-opens resetAfter later.
func NewBreaker(threshold int, resetAfter time.Duration) *Breaker {
	if threshold <= 0 {
		threshold = 5
	}
	if resetAfter <= 0 {
		resetAfter = 60 * time.Second
	}
	return &Breaker{threshold: threshold, resetAfter: resetAfter}
}

// Allow reports whether a call should proceed. When the breaker is open but
// the reset timeout has elapsed, it transitions to half-open and allows
// exactly one trial call through.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case breakerClosed:
		return true

	case breakerOpen:
		if time.Since(b.openedAt) < b.resetAfter {
			return false
		}
		b.state = breakerHalfOpen
		b.halfOpenTry = true
		return true

	case breakerHalfOpen:
		if b.halfOpenTry {
			b.halfOpenTry = false
			return true
		}
		return false

	default:
		return true
	}
}

// RecordSuccess closes the breaker and resets the failure count.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.state = breakerClosed
	b.failures = 0
}

// RecordFailure increments the failure count, opening the breaker once
// threshold consecutive failures have accumulated, or immediately re-opening
// it if the failing call was the half-open trial.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == breakerHalfOpen {
		b.open()
		return
	}

	b.failures++
	if b.failures >= b.threshold {
		b.open()
	}
}

func (b *Breaker) open() {
	b.state = breakerOpen
	b.openedAt = time.Now()
	b.failures = 0
}
