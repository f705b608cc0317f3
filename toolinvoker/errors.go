package toolinvoker

import "errors"

// ErrRetryExhausted mirrors core/client/middleware.ErrRetryExhausted for the
// data-provider call path: every retry attempt failed.
var ErrRetryExhausted = errors.New("toolinvoker: all retry attempts exhausted")

// ErrCircuitOpen is returned when a call is rejected because the endpoint's
// circuit breaker is open.
var ErrCircuitOpen = errors.New("toolinvoker: circuit breaker open for endpoint")
