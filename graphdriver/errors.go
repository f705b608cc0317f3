package graphdriver

import "errors"

// ErrRecursionLimitExceeded is the abort reason recorded when a run would
// invoke more nodes than its configured recursion limit allows — the
// backstop against cyclic conditional edges.
var ErrRecursionLimitExceeded = errors.New("graphdriver: recursion limit exceeded")

// ErrBudgetExhausted is the abort reason recorded when the global
// wall-clock budget expires before the topology finishes.
var ErrBudgetExhausted = errors.New("graphdriver: wall-clock budget exhausted")
