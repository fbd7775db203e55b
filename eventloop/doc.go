// Package eventloop provides a single-goroutine event loop with two priority
// tiers, suitable as the host for deferred rendering work.
//
// # Architecture
//
// A [Loop] owns three sources of work:
//   - timers ([Loop.ScheduleTimer]), earliest deadline first
//   - tasks ([Loop.Submit], [Loop.QueueTask]), the low-priority tier
//   - microtasks ([Loop.ScheduleMicrotask], [Loop.QueueMicrotask]), the
//     high-priority tier
//
// The microtask queue is drained to empty after every timer callback and
// after every task, so a microtask queued at any point runs before the next
// timer or task. Tasks queued while a tick is processing tasks run on the
// next tick, which is what makes the task queue a "next turn" primitive.
//
// # Thread Safety
//
// [Loop.Submit], [Loop.ScheduleMicrotask] and [Loop.ScheduleTimer] are safe
// to call from any goroutine. Callbacks always run on the loop goroutine.
// [Promise] may be settled from any goroutine; its handlers are dispatched
// as microtasks.
//
// # Usage
//
//	loop, err := eventloop.New(eventloop.WithLogger(logger))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	loop.Submit(func() {
//	    loop.QueueMicrotask(func() {
//	        fmt.Println("microtask")
//	    })
//	    fmt.Println("task")
//	})
//
//	go loop.Run(ctx)
//
// # Error Types
//
//   - [ErrLoopAlreadyRunning], [ErrLoopTerminated], [ErrReentrantRun]:
//     lifecycle misuse
//   - [ErrTimerNotFound]: cancelling an unknown or already fired timer
//   - [PanicError]: wraps a value recovered from a panicking promise handler
package eventloop
