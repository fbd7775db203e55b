package lazyrender

import (
	"errors"

	"github.com/joeycumines/logiface"
)

var (
	// ErrNilHost is returned when constructing a Scheduler without a Host.
	ErrNilHost = errors.New("lazyrender: nil host")

	// ErrNilTarget is returned when constructing a Scheduler without an Updatable.
	ErrNilTarget = errors.New("lazyrender: nil target")
)

// Scheduler is the [Performer] that defers each update cycle of its target
// to the host's task queue, unless an urgent update is requested.
//
// Scheduler is not safe for concurrent use, all methods must be called on
// the host's goroutine.
type Scheduler struct {
	host   Host
	target Updatable
	logger *logiface.Logger[logiface.Event]
	name   string

	// release is non-nil from suspension until the resumed cycle begins
	// reconciling
	release *release

	// urgentRequested records an urgent request made before suspension
	urgentRequested bool

	cycles uint64
}

var _ Performer = (*Scheduler)(nil)

// NewScheduler creates a Scheduler for target, without installing it. See
// also [Wrap], which also installs the scheduler as the target's Performer.
func NewScheduler(host Host, target Updatable, opts ...Option) (*Scheduler, error) {
	if host == nil {
		return nil, ErrNilHost
	}
	if target == nil {
		return nil, ErrNilTarget
	}

	cfg, err := resolveSchedulerOptions(opts)
	if err != nil {
		return nil, err
	}

	return &Scheduler{
		host:   host,
		target: target,
		logger: cfg.logger,
		name:   cfg.name,
	}, nil
}

// RequestUrgentUpdate marks the target dirty, then ensures the current
// cycle is reconciled at high priority: if the cycle has not suspended yet,
// it will skip suspension, otherwise it is released immediately.
//
// Calling it when nothing is pending still results in one cycle. Repeated
// calls within a cycle are coalesced.
func (s *Scheduler) RequestUrgentUpdate() {
	s.target.RequestUpdate()

	if s.release == nil {
		if !s.urgentRequested {
			s.trace().
				Log(`lazyrender: urgent update requested before suspension`)
		}
		s.urgentRequested = true
		return
	}

	r := s.release
	if !r.fire() {
		// already released, the continuation is queued
		return
	}

	s.trace().
		Uint64(`cycle`, r.cycle).
		Log(`lazyrender: urgent release`)

	if err := s.host.QueueMicrotask(func() { s.resume(r) }); err != nil {
		s.hostError(err, r.cycle, `lazyrender: failed to queue urgent release`)
	}
}

// PerformUpdate implements [Performer]. If an urgent update was requested,
// reconcile is called synchronously, otherwise the cycle is suspended until
// either the next host task or an urgent request.
func (s *Scheduler) PerformUpdate(reconcile func()) {
	s.cycles++
	cycle := s.cycles

	if s.urgentRequested {
		s.urgentRequested = false
		s.trace().
			Uint64(`cycle`, cycle).
			Log(`lazyrender: urgent, skipping suspension`)
		s.reconcile(cycle, reconcile)
		return
	}

	r := &release{
		reconcile: reconcile,
		cycle:     cycle,
	}
	s.release = r

	s.trace().
		Uint64(`cycle`, cycle).
		Log(`lazyrender: suspended`)

	if err := s.host.QueueTask(func() {
		if r.fire() {
			s.resume(r)
		}
	}); err != nil {
		s.hostError(err, cycle, `lazyrender: failed to queue task, releasing via microtask`)
		if r.fire() {
			if err := s.host.QueueMicrotask(func() { s.resume(r) }); err != nil {
				s.hostError(err, cycle, `lazyrender: failed to queue release, update stalled`)
			}
		}
	}
}

// resume clears the (consumed) release capability, then reconciles.
func (s *Scheduler) resume(r *release) {
	if s.release == r {
		s.release = nil
	}
	s.trace().
		Uint64(`cycle`, r.cycle).
		Log(`lazyrender: resumed`)
	s.reconcile(r.cycle, r.reconcile)
}

// reconcile runs fn, then discards any urgent request made while it ran
// that did not leave the target with a pending cycle, e.g. one made before
// the target cleared its own pending state.
func (s *Scheduler) reconcile(cycle uint64, fn func()) {
	defer func() {
		if s.urgentRequested && !s.target.UpdatePending() {
			s.urgentRequested = false
			s.trace().
				Uint64(`cycle`, cycle).
				Log(`lazyrender: urgent request absorbed by reconcile`)
		}
	}()
	fn()
}

// Suspended reports whether the current cycle is waiting on a readiness
// signal (or its continuation is queued).
func (s *Scheduler) Suspended() bool {
	return s.release != nil
}

// UrgentRequested reports whether an urgent request is recorded for the
// next suspension point.
func (s *Scheduler) UrgentRequested() bool {
	return s.urgentRequested
}

func (s *Scheduler) trace() *logiface.Builder[logiface.Event] {
	return s.logger.Trace().
		Str(`component`, s.name)
}

func (s *Scheduler) hostError(err error, cycle uint64, msg string) {
	s.logger.Err().
		Str(`component`, s.name).
		Uint64(`cycle`, cycle).
		Err(err).
		Log(msg)
}
