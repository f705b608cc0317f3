// Package debate runs a bounded adversarial debate between two or three
// perspective nodes and a judge node, with convergence detection, quality
// scoring, and a circuit breaker that guarantees termination independent of
// any model's behavior.
//
// One generic controller, the Run function, backs two instantiations: a research debate
// (bull vs bear, judged by a research manager) and a risk debate
// (risky/safe/neutral, judged by a risk manager). From the graph driver's
// point of view each instantiation is a single node — Run loops internally
// through rounds and returns one final patch.
package debate
