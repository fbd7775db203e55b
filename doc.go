// Package lazyrender defers the reconciliation ("render") step of a
// stateful component from the host's high-priority microtask queue to its
// low-priority task queue, so that rendering yields to other work such as
// input handling, while still allowing callers to force an urgent render.
//
// # Scheduling
//
// Each component has at most one pending update cycle. When the component's
// framework asks the [Scheduler] to perform the update, the scheduler
// suspends the cycle and races two readiness signals:
//   - a low-priority task, queued via [Host.QueueTask]
//   - the release capability, fired by [Scheduler.RequestUrgentUpdate]
//
// Whichever fires first resumes the cycle, and the other becomes a no-op.
// An urgent request that arrives before the cycle suspends is recorded, and
// the cycle then skips suspension entirely.
//
// # Composition
//
// The scheduler wraps any [Updatable], via [Wrap], without touching the
// updatable's own dirty tracking or reconciliation logic:
//
//	el, err := element.New(loop, render)
//	if err != nil {
//	    return err
//	}
//	lazy, err := lazyrender.Wrap(loop, el)
//	if err != nil {
//	    return err
//	}
//	el.Set(`name`, `Lazy`)   // rendered on the next task
//	lazy.RequestUrgentUpdate() // ...or on the next microtask checkpoint
//
// All methods must be called from the host's goroutine.
package lazyrender
