// Package graphdriver assembles and runs the fixed analysis topology:
// dispatch(analysts) -> aggregate -> research debate -> trader -> risk
// debate -> final decision. It offers a fluent Builder/Graph construction
// API for a domain-specific, sequential topology with two run-wide
// resource governors: a global recursion
// limit (node invocations per run) and a global wall-clock budget enforced
// at every merge point.
//
// Steps may be conditional — a predicate evaluated against the current
// snapshot decides whether to run or skip them, the mechanism used both for
// "skip the research debate when fewer than two analyst reports came back"
// and for short-circuiting the remainder of the pipeline once a quorum
// failure has already set final_decision.
package graphdriver
