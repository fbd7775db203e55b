package lazyrender

// Host provides the two scheduling tiers a [Scheduler] races between.
// Both methods must only ever run fn asynchronously, on the host's (single)
// goroutine.
//
// The eventloop package's Loop implements Host.
type Host interface {
	// QueueMicrotask schedules fn on the high-priority queue, which drains
	// before the host handles its next task.
	QueueMicrotask(fn func()) error

	// QueueTask schedules fn on the low-priority queue, which drains on a
	// later turn of the host loop, after pending microtasks.
	QueueTask(fn func()) error
}
