// Package dispatch fans a set of independent analyst nodes out to run
// concurrently and joins their results with partial-failure semantics.
//
// Dispatch waits for every dispatched node to reach a terminal state
// (success, failure, or timeout) before returning — there is no partial
// aggregation. Analyst outputs are written under per-analyst keys (see
// package state), so the join is commutative in completion order: however
// the goroutines finish, the merged patch is the same.
//
// Up to floor(N/2) analyst failures are tolerated; beyond that the
// aggregator reports a quorum failure and the caller is expected to route
// to a terminal "decision=ERROR" node rather than continue the pipeline.
package dispatch
