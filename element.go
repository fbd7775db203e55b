package lazyrender

// Element is an [Updatable] composed with the lazy scheduling behavior of
// a [Scheduler].
type Element[U Updatable] struct {
	target    U
	scheduler *Scheduler
}

var _ LazyRenderer = (*Element[Updatable])(nil)

// Wrap builds a [Scheduler] for target, and installs it as the target's
// [Performer]. Updates of target are deferred to the host's task queue
// from then on.
func Wrap[U Updatable](host Host, target U, opts ...Option) (*Element[U], error) {
	s, err := NewScheduler(host, target, opts...)
	if err != nil {
		return nil, err
	}
	target.SetPerformer(s)
	return &Element[U]{
		target:    target,
		scheduler: s,
	}, nil
}

// Target returns the wrapped Updatable.
func (x *Element[U]) Target() U {
	return x.target
}

// Scheduler returns the installed scheduler.
func (x *Element[U]) Scheduler() *Scheduler {
	return x.scheduler
}

// RequestUpdate forwards to the target, the resulting cycle is deferred.
func (x *Element[U]) RequestUpdate() {
	x.target.RequestUpdate()
}

// RequestUrgentUpdate requests an update that is reconciled at high
// priority, see [Scheduler.RequestUrgentUpdate].
func (x *Element[U]) RequestUrgentUpdate() {
	x.scheduler.RequestUrgentUpdate()
}

// LazyRender always returns [LazyRender].
func (x *Element[U]) LazyRender() bool {
	return LazyRender
}
