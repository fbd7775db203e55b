// Package element implements a reactive element: a property store that
// batches changes into update cycles, each queued as a microtask and
// reconciled via a pluggable [lazyrender.Performer].
//
// Without a Performer the element is eager, reconciling as soon as the
// update microtask runs. See [lazyrender.Wrap] for the lazy variant.
//
// Like the host loop it runs on, an Element is not safe for concurrent use.
package element

import (
	lazyrender "github.com/joeycumines/go-lazyrender"
	"github.com/joeycumines/go-lazyrender/eventloop"
	"github.com/joeycumines/logiface"
)

// RenderFunc renders a snapshot of an element's properties.
type RenderFunc func(props Props) string

// Element is a [lazyrender.Updatable] with a single render output.
type Element struct {
	tasks     eventloop.Microtasker
	render    RenderFunc
	performer lazyrender.Performer

	logger       *logiface.Logger[logiface.Event]
	name         string
	shouldUpdate func(changed Changed) bool
	updated      func(changed Changed)
	firstUpdated func(changed Changed)
	hasChanged   map[string]HasChangedFunc

	props   Props
	changed Changed

	complete *eventloop.Promise
	resolve  eventloop.ResolveFunc
	reject   eventloop.RejectFunc

	output        string
	updateCount   uint64
	updatePending bool
	hasUpdated    bool
}

var _ lazyrender.Updatable = (*Element)(nil)

// eager is the default Performer
type eager struct{}

func (eager) PerformUpdate(reconcile func()) { reconcile() }

// New creates an element that queues its updates on tasks, e.g. an
// [eventloop.Loop].
func New(tasks eventloop.Microtasker, render RenderFunc, opts ...Option) (*Element, error) {
	if tasks == nil {
		return nil, lazyrender.ErrNilHost
	}
	if render == nil {
		return nil, ErrNilRender
	}

	cfg, err := resolveElementOptions(opts)
	if err != nil {
		return nil, err
	}

	return &Element{
		tasks:        tasks,
		render:       render,
		performer:    eager{},
		logger:       cfg.logger,
		name:         cfg.name,
		shouldUpdate: cfg.shouldUpdate,
		updated:      cfg.updated,
		firstUpdated: cfg.firstUpdated,
		hasChanged:   cfg.hasChanged,
		props:        make(Props),
		changed:      make(Changed),
		complete:     eventloop.ResolvedPromise(tasks, true),
	}, nil
}

// SetPerformer implements [lazyrender.Updatable]. A nil p restores eager
// reconciliation.
func (x *Element) SetPerformer(p lazyrender.Performer) {
	if p == nil {
		p = eager{}
	}
	x.performer = p
}

// RequestUpdate implements [lazyrender.Updatable], enqueuing an update if
// one is not already pending, even if no property changed.
func (x *Element) RequestUpdate() {
	x.enqueue()
}

// UpdateComplete returns a promise for the pending update, or the last
// update if none is pending. It resolves with true, or false if another
// update was requested while reconciling, and rejects with an
// [eventloop.PanicError] if rendering panicked.
func (x *Element) UpdateComplete() *eventloop.Promise {
	return x.complete
}

// Output returns the last committed render.
func (x *Element) Output() string {
	return x.output
}

// HasUpdated reports whether the element has committed a render.
func (x *Element) HasUpdated() bool {
	return x.hasUpdated
}

// UpdateCount returns the number of committed renders.
func (x *Element) UpdateCount() uint64 {
	return x.updateCount
}

// UpdatePending reports whether an update cycle is in flight.
func (x *Element) UpdatePending() bool {
	return x.updatePending
}

func (x *Element) enqueue() {
	if x.updatePending {
		return
	}
	x.updatePending = true
	x.complete, x.resolve, x.reject = eventloop.NewPromise(x.tasks)

	x.logger.Trace().
		Str(`element`, x.name).
		Log(`element: update enqueued`)

	if err := x.tasks.QueueMicrotask(x.perform); err != nil {
		x.logger.Err().
			Str(`element`, x.name).
			Err(err).
			Log(`element: failed to queue update`)
		x.updatePending = false
		x.reject(err)
	}
}

func (x *Element) perform() {
	x.performer.PerformUpdate(x.reconcile)
}

// reconcile is the base update, run exactly once per cycle.
func (x *Element) reconcile() {
	resolve, reject := x.resolve, x.reject
	changed := x.changed

	var rendered bool
	defer func() {
		if r := recover(); r != nil {
			if !rendered {
				x.markUpdated()
			}
			reject(eventloop.PanicError{Value: r})
			panic(r)
		}
	}()

	if x.shouldUpdate != nil && !x.shouldUpdate(changed) {
		rendered = true
		x.markUpdated()
		resolve(!x.updatePending)
		return
	}

	x.output = x.render(x.Props())
	rendered = true
	x.updateCount++
	x.markUpdated()

	x.logger.Trace().
		Str(`element`, x.name).
		Uint64(`count`, x.updateCount).
		Log(`element: updated`)

	if !x.hasUpdated {
		x.hasUpdated = true
		if x.firstUpdated != nil {
			x.firstUpdated(changed)
		}
	}
	if x.updated != nil {
		x.updated(changed)
	}

	resolve(!x.updatePending)
}

func (x *Element) markUpdated() {
	x.changed = make(Changed)
	x.updatePending = false
}
