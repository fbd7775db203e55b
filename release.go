package lazyrender

import (
	"sync/atomic"
)

// release is the single-fire capability that resumes a suspended cycle.
type release struct {
	reconcile func()
	fired     atomic.Bool
	cycle     uint64
}

// fire consumes the capability, reporting true only for the first caller.
func (r *release) fire() bool {
	return r != nil && r.fired.CompareAndSwap(false, true)
}
