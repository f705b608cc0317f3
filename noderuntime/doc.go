// Package noderuntime wraps a single node invocation — a function from a
// read-only state.Snapshot to a state.Patch — with the four guarantees every
// node gets for free: a per-node timeout, exception capture, a telemetry
// span, and write-set contract validation.
//
// A node failure, of any kind (panic, error, or timeout), is never returned
// to the caller as a Go error. It is converted into a status/error patch
// instead, so the graph driver always sees a valid patch and decides for
// itself, via conditional edges, whether the failure is fatal. The one
// exception is a contract violation — a node writing outside its declared
// write-set — which is a programming error and is returned as an error so
// the run aborts.
package noderuntime
