package lazyrender

// LazyRender is the static capability flag for components wrapped by this
// package, indicating that they reconcile on the host's task queue.
const LazyRender = true

// LazyRenderer may be implemented by components to advertise whether they
// use lazy (task queue) scheduling, e.g. for test harnesses that assert on
// timing.
type LazyRenderer interface {
	LazyRender() bool
}

// Performer controls when a pending update cycle is reconciled.
//
// An [Updatable] calls PerformUpdate exactly once per pending cycle, passing
// its base reconciliation as reconcile. The implementation must call
// reconcile exactly once, either synchronously or later on the host's
// goroutine.
type Performer interface {
	PerformUpdate(reconcile func())
}

// Updatable is the component being scheduled.
type Updatable interface {
	// RequestUpdate marks the component dirty, and ensures exactly one
	// pending update cycle exists. It must be idempotent.
	RequestUpdate()

	// UpdatePending reports whether a cycle has been enqueued and not yet
	// finished reconciling.
	UpdatePending() bool

	// SetPerformer installs the Performer used for all later cycles.
	SetPerformer(p Performer)
}
