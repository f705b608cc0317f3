package noderuntime

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/tradingagents/tradingagents-go/providers/observability"
	"github.com/tradingagents/tradingagents-go/state"
)

// NodeFunc is the shape every node conforms to: a pure-ish function from a
// read-only snapshot to a patch. It may be slow (LLM call, data fetch) and
// it may fail; neither is handled by the node itself.
type NodeFunc func(ctx context.Context, snap state.Snapshot) (state.Patch, error)

// Spec declares the contract a node must honor: its name (used for span
// naming and, when StatusField/ErrorField are set, for status reporting),
// the set of state keys it is allowed to write, and its timeout.
type Spec struct {
	Name string

	// WriteSet is the subset of state.Patch keys this node may write,
	// declared once at graph-build time. A patch key outside this set is a
	// contract violation.
	WriteSet []string

	// Timeout overrides DefaultTimeout for this node. Zero means use the
	// Runtime's configured default.
	Timeout time.Duration

	// StatusField and ErrorField, when non-empty, are the patch keys the
	// runtime writes itself to report success/failure/timeout and, on
	// failure, the error text. They must also appear in WriteSet.
	StatusField string
	ErrorField  string
}

// Runtime invokes NodeFuncs under the four guarantees documented in the
// package doc: timeout, exception capture, telemetry span, and contract
// validation.
type Runtime struct {
	observer       observability.Provider
	defaultTimeout time.Duration
}

// New constructs a Runtime. observer may be nil, in which case spans and
// metrics are skipped. defaultTimeout, if zero, falls back to DefaultTimeout.
func New(observer observability.Provider, defaultTimeout time.Duration) *Runtime {
	if defaultTimeout == 0 {
		defaultTimeout = DefaultTimeout
	}
	return &Runtime{observer: observer, defaultTimeout: defaultTimeout}
}

// result carries what came back from running fn in its own goroutine, so the
// timeout select can race it against the deadline without the goroutine
// itself ever touching the caller's stack after a timeout fires.
type result struct {
	patch state.Patch
	err   error
}

// Invoke runs fn under spec's timeout, turning any failure (panic, error, or
// deadline) into a status/error patch rather than propagating it. The only
// error Invoke itself returns is ErrContractViolation, which aborts the run.
func (r *Runtime) Invoke(ctx context.Context, spec Spec, fn NodeFunc, snap state.Snapshot) (state.Patch, error) {
	timeout := spec.Timeout
	if timeout == 0 {
		timeout = r.defaultTimeout
	}

	nodeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var span observability.Span
	if r.observer != nil {
		nodeCtx, span = r.observer.StartSpan(nodeCtx, "node.execute",
			observability.String("node.name", spec.Name),
			observability.Duration("node.timeout", timeout),
		)
	}

	start := time.Now()
	done := make(chan result, 1)

	go func() {
		defer func() {
			if recovered := recover(); recovered != nil {
				done <- result{err: fmt.Errorf("node %q panicked: %v", spec.Name, recovered)}
			}
		}()

		patch, err := fn(nodeCtx, snap)
		done <- result{patch: patch, err: err}
	}()

	var (
		patch   state.Patch
		status  string
		errText string
	)

	select {
	case <-nodeCtx.Done():
		// Reported as a timeout whether the per-node deadline fired or an
		// ancestor context (e.g. the graph's wall-clock budget) was
		// cancelled — the node ran out of time either way.
		status = state.StatusTimeout
		errText = nodeCtx.Err().Error()

	case res := <-done:
		duration := time.Since(start)
		if res.err != nil {
			status = state.StatusFailed
			errText = res.err.Error()
		} else {
			patch = res.patch
			status = state.StatusSuccess
		}

		if span != nil {
			span.SetAttributes(observability.Duration("node.duration", duration))
		}
	}

	patch = applyRuntimeFields(patch, spec, status, errText)

	if err := validateWriteSet(spec, patch); err != nil {
		if span != nil {
			span.RecordError(err)
			span.SetStatus(observability.StatusError, err.Error())
			span.End()
		}
		return nil, err
	}

	if span != nil {
		if status == state.StatusFailed || status == state.StatusTimeout {
			span.SetStatus(observability.StatusError, errText)
		} else {
			span.SetStatus(observability.StatusOK, "")
		}
		span.SetAttributes(observability.String("node.status", status))
		span.End()
	}

	return patch, nil
}

// applyRuntimeFields overlays the runtime-owned status/error keys onto the
// node's patch. A nil patch (the failure/timeout paths) becomes a fresh map
// so the status fields always land somewhere.
func applyRuntimeFields(patch state.Patch, spec Spec, status, errText string) state.Patch {
	if patch == nil {
		patch = state.Patch{}
	}

	if spec.StatusField != "" {
		patch[spec.StatusField] = status
	}
	if spec.ErrorField != "" && errText != "" {
		patch[spec.ErrorField] = errText
	}

	return patch
}

// validateWriteSet rejects a patch containing any key outside spec.WriteSet.
func validateWriteSet(spec Spec, patch state.Patch) error {
	if spec.WriteSet == nil {
		return nil
	}

	for key := range patch {
		if !slices.Contains(spec.WriteSet, key) {
			return fmt.Errorf("%w: node %q wrote %q", ErrContractViolation, spec.Name, key)
		}
	}
	return nil
}
