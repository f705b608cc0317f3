// Package compress produces perspective-specific, token-budgeted views of
// the shared analysis state before it is handed to a researcher, debator, or
// other downstream consumer.
//
// Compression is lossy but pure: Compress never mutates the snapshot it is
// given, and compressing an already-compressed view a second time for the
// same perspective yields the same result (idempotent). The budget
// constants in Budget are advisory — nothing in this package or the graph
// driver enforces them as hard limits; they size the truncation applied here.
package compress
