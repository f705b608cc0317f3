package dispatch

import "errors"

// ErrQuorumFailure marks a dispatch that cannot reach quorum. When more than
// floor(N/2) dispatched analysts fail, Dispatch does not return it: that
// case is reported as data, via AggregatedResult.QuorumFailed. Dispatch does
// return it, wrapped, when called with no analysts at all. It is exported as a
// sentinel so callers building a rationale string have a stable value to
// compare or wrap against.
var ErrQuorumFailure = errors.New("dispatch: too many analyst failures to reach quorum")
