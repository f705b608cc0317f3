// Package state implements the shared state store threaded through a graph
// run: a typed, append-mostly key-value mapping with a merge strategy
// declared per field at graph-construction time.
//
// A Schema is built once, before any node executes, via Declare. A Store
// holds the current merged values and exposes Snapshot (an immutable,
// read-only view handed to nodes) and ApplyPatch (which merges one or more
// node-produced patches back in, according to each field's declared merge
// strategy). apply_patch is pure: it never mutates the snapshot it was
// given, it returns a new one.
//
// Field declarations and merge-strategy enforcement mean that
// concurrent writers to the same scalar field are rejected instead of
// silently clobbering one another.
package state
