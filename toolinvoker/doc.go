// Package toolinvoker wraps every outbound call a node makes to a data
// provider or the LLM client with retry, a circuit breaker, fallback
// chaining, and result caching — the same concerns
// core/client/middleware applies to the LLM client's send path, generalized
// here to any typed call so data-provider fetches get the same treatment.
//
// RunOffloaded pushes a CPU-bound call (e.g. indicator computation) onto a
// bounded worker pool instead of the caller's goroutine, satisfying the
// async-safety requirement that no provider may block the scheduling loop.
package toolinvoker
