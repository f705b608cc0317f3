package state

import "errors"

// ErrConflictingUpdate is returned by ApplyPatch when two patches in the same
// merge batch write the same last-writer-wins scalar field. This is treated
// as a programming error (a node violating its declared write-set), not a
// transient failure — the run aborts rather than silently picking a winner.
var ErrConflictingUpdate = errors.New("state: conflicting update to scalar field")

// ErrUndeclaredField is returned when a patch writes a key that was never
// registered via Declare.
var ErrUndeclaredField = errors.New("state: write to undeclared field")

// ErrFieldTypeMismatch is returned when a patch value's Go type does not
// match the field's declared FieldType.
var ErrFieldTypeMismatch = errors.New("state: patch value does not match declared field type")
