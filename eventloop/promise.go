package eventloop

import (
	"sync"
)

// Result represents the value of a resolved or rejected promise.
// For fulfilled promises, this holds the success value.
// For rejected promises, this typically holds an error or rejection reason.
type Result = any

// PromiseState represents the lifecycle state of a [Promise].
// A promise starts in [Pending] state and transitions to either
// [Resolved] (also known as [Fulfilled]) or [Rejected].
// State transitions are irreversible.
type PromiseState int

const (
	// Pending indicates the promise operation is still in progress.
	Pending PromiseState = iota

	// Resolved indicates the promise completed successfully with a value.
	Resolved

	// Rejected indicates the promise failed with a reason (typically an error).
	Rejected
)

const (
	// Fulfilled is an alias for [Resolved], matching the Promise/A+ specification.
	Fulfilled = Resolved
)

// String returns a human-readable representation of the state.
func (s PromiseState) String() string {
	switch s {
	case Pending:
		return "Pending"
	case Resolved:
		return "Fulfilled"
	case Rejected:
		return "Rejected"
	default:
		return "Unknown"
	}
}

// Microtasker schedules callbacks on a high-priority queue, e.g. [Loop].
type Microtasker interface {
	QueueMicrotask(fn func()) error
}

// ResolveFunc settles a promise as fulfilled. Only the first settle call
// (resolve or reject) has any effect.
type ResolveFunc func(Result)

// RejectFunc settles a promise as rejected. Only the first settle call
// (resolve or reject) has any effect.
type RejectFunc func(Result)

// Promise is a one-shot future, settled at most once, with handlers that
// are always dispatched as microtasks, never synchronously from the settle
// call.
//
// Promises are safe for concurrent use.
type Promise struct {
	tasks    Microtasker
	result   Result
	handlers []func()
	channels []chan Result
	state    PromiseState
	mu       sync.Mutex
}

// NewPromise creates a pending promise, with handlers dispatched via tasks.
// If tasks is nil, handlers run synchronously on settle (or registration).
func NewPromise(tasks Microtasker) (*Promise, ResolveFunc, RejectFunc) {
	p := &Promise{tasks: tasks}
	return p, p.resolve, p.reject
}

// ResolvedPromise returns a promise that is already fulfilled with val.
func ResolvedPromise(tasks Microtasker, val Result) *Promise {
	p, resolve, _ := NewPromise(tasks)
	resolve(val)
	return p
}

// State returns the current [PromiseState].
func (p *Promise) State() PromiseState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Result returns the settled value or reason, or nil if pending.
func (p *Promise) Result() Result {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.result
}

// ToChannel returns a channel that will receive the result when the promise
// settles. The channel is buffered (capacity 1) and will be closed after
// sending. Unlike handlers, channels are notified synchronously on settle,
// making this the way to wait from outside the loop.
func (p *Promise) ToChannel() <-chan Result {
	ch := make(chan Result, 1)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != Pending {
		ch <- p.result
		close(ch)
		return ch
	}

	p.channels = append(p.channels, ch)
	return ch
}

// Then registers handlers for fulfillment and rejection, returning a new
// promise settled with the handler's result. A nil handler passes the
// result through. A handler returning a *Promise is adopted. A panicking
// handler rejects the returned promise with a [PanicError].
func (p *Promise) Then(onFulfilled, onRejected func(Result) Result) *Promise {
	child, resolve, reject := NewPromise(p.tasks)

	p.addHandler(func() {
		state, result := p.State(), p.Result()

		handler := onFulfilled
		if state == Rejected {
			handler = onRejected
		}
		if handler == nil {
			if state == Rejected {
				reject(result)
			} else {
				resolve(result)
			}
			return
		}

		v, panicked := callHandler(handler, result)
		if panicked {
			reject(v)
			return
		}

		if inner, ok := v.(*Promise); ok && inner != child {
			inner.Then(
				func(r Result) Result { resolve(r); return nil },
				func(r Result) Result { reject(r); return nil },
			)
			return
		}

		resolve(v)
	})

	return child
}

// Catch is shorthand for Then(nil, onRejected).
func (p *Promise) Catch(onRejected func(Result) Result) *Promise {
	return p.Then(nil, onRejected)
}

// Finally registers fn to run once the promise settles, either way. The
// returned promise settles the same way as p.
func (p *Promise) Finally(fn func()) *Promise {
	return p.Then(
		func(r Result) Result {
			fn()
			return r
		},
		func(r Result) Result {
			fn()
			panic(rethrow{reason: r})
		},
	)
}

// rethrow propagates a rejection reason out of a handler, unwrapped
type rethrow struct{ reason Result }

func callHandler(fn func(Result) Result, in Result) (out Result, panicked bool) {
	defer func() {
		if r := recover(); r != nil {
			if rt, ok := r.(rethrow); ok {
				out = rt.reason
			} else {
				out = PanicError{Value: r}
			}
			panicked = true
		}
	}()
	return fn(in), false
}

func (p *Promise) addHandler(h func()) {
	p.mu.Lock()
	if p.state == Pending {
		p.handlers = append(p.handlers, h)
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()
	p.dispatch(h)
}

func (p *Promise) dispatch(h func()) {
	if p.tasks == nil {
		h()
		return
	}
	// an error means the host is gone, and nothing would run h anyway
	_ = p.tasks.QueueMicrotask(h)
}

func (p *Promise) resolve(val Result) {
	p.settle(Resolved, val)
}

func (p *Promise) reject(reason Result) {
	p.settle(Rejected, reason)
}

func (p *Promise) settle(state PromiseState, result Result) {
	p.mu.Lock()
	if p.state != Pending {
		p.mu.Unlock()
		return
	}
	p.state = state
	p.result = result
	handlers := p.handlers
	channels := p.channels
	p.handlers = nil
	p.channels = nil
	p.mu.Unlock()

	for _, ch := range channels {
		ch <- result
		close(ch)
	}
	for _, h := range handlers {
		p.dispatch(h)
	}
}
