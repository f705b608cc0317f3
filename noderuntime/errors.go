package noderuntime

import (
	"errors"
	"time"
)

// ErrContractViolation is returned when a node's patch writes a key outside
// its declared write-set. Unlike every other node failure, this is not
// converted into a status patch — it is a programming error and the run
// aborts.
var ErrContractViolation = errors.New("noderuntime: node wrote outside its declared write-set")

// DefaultTimeout is the per-node wall-clock bound applied when a Spec does
// not set one.
const DefaultTimeout = 60 * time.Second
