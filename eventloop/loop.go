package eventloop

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/petermattis/goid"
)

// Loop is a single-goroutine event loop with a low-priority task queue and
// a high-priority microtask queue.
//
// Ordering guarantees, within the loop goroutine:
//   - microtasks queued by a callback run before any other timer or task
//   - tasks run in submission order, tasks queued during a tick run on the
//     next tick
//   - timers run in deadline order, before the tasks of the same tick
type Loop struct {
	// Prevent copying
	_ [0]func()

	log   *loopLogger
	state *FastState
	now   func() time.Time

	mu         sync.Mutex
	tasks      taskQueue
	microtasks taskQueue
	timers     timerHeap
	timerIndex map[TimerID]*timer
	timerSeq   uint64

	// wakeup has capacity 1, a pending value means "re-check the queues"
	wakeup chan struct{}

	stopOnce sync.Once
	loopDone chan struct{}

	loopGoroutineID atomic.Int64

	taskBudget int
	tickCount  uint64
	id         uint64
}

var loopIDCounter atomic.Uint64

// New creates a new event loop. The loop does nothing until [Loop.Run].
func New(opts ...LoopOption) (*Loop, error) {
	cfg, err := resolveLoopOptions(opts)
	if err != nil {
		return nil, err
	}

	id := loopIDCounter.Add(1)

	return &Loop{
		log:        newLoopLogger(id, cfg),
		state:      NewFastState(),
		now:        cfg.now,
		timerIndex: make(map[TimerID]*timer),
		wakeup:     make(chan struct{}, 1),
		loopDone:   make(chan struct{}),
		taskBudget: cfg.taskBudget,
		id:         id,
	}, nil
}

// Run runs the event loop and blocks until fully stopped.
//
// Run blocks until the loop terminates (via Shutdown(), Close(), or ctx
// cancellation). To run in a separate goroutine, use: `go loop.Run(ctx)`.
func (l *Loop) Run(ctx context.Context) error {
	if l.isLoopThread() {
		return ErrReentrantRun
	}

	if !l.state.TryTransition(StateAwake, StateRunning) {
		if l.state.Load() == StateTerminated {
			return ErrLoopTerminated
		}
		return ErrLoopAlreadyRunning
	}

	defer close(l.loopDone)

	l.loopGoroutineID.Store(goid.Get())
	defer l.loopGoroutineID.Store(0)

	l.log.debug(`eventloop: run started`)
	defer l.log.debug(`eventloop: run stopped`)

	return l.run(ctx)
}

func (l *Loop) run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			l.beginTermination()
			l.shutdown()
			return err
		}

		if state := l.state.Load(); state == StateTerminating || state == StateTerminated {
			l.shutdown()
			return nil
		}

		l.tick()

		l.sleep(ctx)
	}
}

// tick is a single iteration of the event loop.
func (l *Loop) tick() {
	l.tickCount++

	l.runTimers()
	l.processTasks()
	l.drainMicrotasks()
}

// runTimers executes all expired timers, with a microtask checkpoint after
// each one.
func (l *Loop) runTimers() {
	now := l.now()
	for {
		l.mu.Lock()
		t, ok := l.popExpiredTimer(now)
		l.mu.Unlock()
		if !ok {
			return
		}
		l.safeExecute(categoryTimer, t.fn)
		l.drainMicrotasks()
	}
}

// processTasks runs the tasks queued prior to this call, bounded by the
// task budget, with a microtask checkpoint after each one.
func (l *Loop) processTasks() {
	l.mu.Lock()
	n := l.tasks.len()
	l.mu.Unlock()

	if n > l.taskBudget {
		n = l.taskBudget
	}

	for i := 0; i < n; i++ {
		l.mu.Lock()
		fn, ok := l.tasks.pop()
		l.mu.Unlock()
		if !ok {
			return
		}
		l.safeExecute(categoryTask, fn)
		l.drainMicrotasks()
	}
}

// drainMicrotasks runs microtasks until the queue is empty, including any
// queued by the microtasks themselves.
func (l *Loop) drainMicrotasks() {
	for {
		l.mu.Lock()
		fn, ok := l.microtasks.pop()
		l.mu.Unlock()
		if !ok {
			return
		}
		l.safeExecute(categoryMicrotask, fn)
	}
}

// sleep blocks until there may be work, the next timer is due, or ctx is
// done.
func (l *Loop) sleep(ctx context.Context) {
	if !l.state.TryTransition(StateRunning, StateSleeping) {
		return
	}
	defer l.state.TryTransition(StateSleeping, StateRunning)

	l.mu.Lock()
	pending := l.tasks.len() != 0 || l.microtasks.len() != 0
	delay, hasTimer := l.nextTimerDelay(l.now())
	l.mu.Unlock()

	if pending || (hasTimer && delay == 0) {
		return
	}

	var timeout <-chan time.Time
	if hasTimer {
		t := time.NewTimer(delay)
		defer t.Stop()
		timeout = t.C
	}

	select {
	case <-l.wakeup:
	case <-timeout:
	case <-ctx.Done():
	}
}

// wake signals the loop to re-check its queues, never blocking.
func (l *Loop) wake() {
	select {
	case l.wakeup <- struct{}{}:
	default:
	}
}

// beginTermination moves the loop to StateTerminating, from any
// non-terminal state.
func (l *Loop) beginTermination() (previous LoopState, ok bool) {
	for {
		current := l.state.Load()
		if current == StateTerminating || current == StateTerminated {
			return current, false
		}
		if l.state.TryTransition(current, StateTerminating) {
			return current, true
		}
	}
}

// Shutdown gracefully shuts down the event loop.
//
// Queued tasks and microtasks are run before the loop terminates, pending
// timers are discarded. Shutdown blocks until termination completes or ctx
// expires.
func (l *Loop) Shutdown(ctx context.Context) error {
	err := ErrLoopTerminated
	l.stopOnce.Do(func() {
		err = l.shutdownImpl(ctx)
	})
	return err
}

func (l *Loop) shutdownImpl(ctx context.Context) error {
	previous, ok := l.beginTermination()
	switch {
	case ok && previous == StateAwake:
		l.state.Store(StateTerminated)
		return nil
	case !ok && previous == StateTerminated:
		return ErrLoopTerminated
	}

	l.wake()

	// waiting on the loop goroutine would deadlock, the drain happens once
	// the current callback returns
	if l.isLoopThread() {
		return nil
	}

	select {
	case <-l.loopDone:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close terminates the loop without waiting. Work that is already queued
// still runs, on the loop goroutine, before it exits.
func (l *Loop) Close() error {
	previous, ok := l.beginTermination()
	if !ok {
		return ErrLoopTerminated
	}
	if previous == StateAwake {
		l.state.Store(StateTerminated)
		return nil
	}
	l.wake()
	return nil
}

// Done returns a channel that is closed once Run has returned.
func (l *Loop) Done() <-chan struct{} {
	return l.loopDone
}

// shutdown drains queued work, then marks the loop terminated.
func (l *Loop) shutdown() {
	for {
		l.mu.Lock()
		pending := l.tasks.len() != 0 || l.microtasks.len() != 0
		l.mu.Unlock()
		if !pending {
			break
		}
		l.processTasks()
		l.drainMicrotasks()
	}

	l.mu.Lock()
	l.state.Store(StateTerminated)
	l.timers = nil
	clear(l.timerIndex)
	l.mu.Unlock()
}

// Submit submits a task to the (low-priority) task queue.
//
// Tasks are accepted while the loop is terminating, so that in-flight work
// may complete. Returns [ErrLoopTerminated] once the loop has terminated.
func (l *Loop) Submit(fn func()) error {
	if fn == nil {
		return nil
	}

	l.mu.Lock()
	if !l.state.CanAcceptWork() {
		l.mu.Unlock()
		return ErrLoopTerminated
	}
	l.tasks.push(fn)
	l.mu.Unlock()

	l.wake()
	return nil
}

// ScheduleMicrotask schedules a (high-priority) microtask.
func (l *Loop) ScheduleMicrotask(fn func()) error {
	if fn == nil {
		return nil
	}

	l.mu.Lock()
	if !l.state.CanAcceptWork() {
		l.mu.Unlock()
		return ErrLoopTerminated
	}
	l.microtasks.push(fn)
	l.mu.Unlock()

	l.wake()
	return nil
}

// QueueMicrotask is an alias of [Loop.ScheduleMicrotask].
func (l *Loop) QueueMicrotask(fn func()) error {
	return l.ScheduleMicrotask(fn)
}

// QueueTask is an alias of [Loop.Submit].
func (l *Loop) QueueTask(fn func()) error {
	return l.Submit(fn)
}

// State returns the current loop state.
func (l *Loop) State() LoopState {
	return l.state.Load()
}

// ID returns the unique (per process) identifier of this loop.
func (l *Loop) ID() uint64 {
	return l.id
}

// IsLoopThread reports whether the caller is running on the loop goroutine.
func (l *Loop) IsLoopThread() bool {
	return l.isLoopThread()
}

func (l *Loop) isLoopThread() bool {
	id := l.loopGoroutineID.Load()
	return id != 0 && goid.Get() == id
}

// safeExecute executes fn with panic recovery.
func (l *Loop) safeExecute(category string, fn func()) {
	if fn == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			l.log.panicked(category, r)
		}
	}()

	fn()
}
