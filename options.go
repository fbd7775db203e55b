package lazyrender

import (
	"github.com/joeycumines/logiface"
)

type schedulerOptions struct {
	logger *logiface.Logger[logiface.Event]
	name   string
}

// Option configures a [Scheduler], see [NewScheduler] and [Wrap].
type Option interface {
	applyScheduler(*schedulerOptions) error
}

type schedulerOptionImpl struct {
	applySchedulerFunc func(*schedulerOptions) error
}

func (x *schedulerOptionImpl) applyScheduler(opts *schedulerOptions) error {
	return x.applySchedulerFunc(opts)
}

// WithLogger configures structured logging of scheduling decisions, which
// are logged at trace level, and host failures, logged at error level.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &schedulerOptionImpl{func(opts *schedulerOptions) error {
		opts.logger = logger
		return nil
	}}
}

// WithName sets the component name, included in log events.
func WithName(name string) Option {
	return &schedulerOptionImpl{func(opts *schedulerOptions) error {
		opts.name = name
		return nil
	}}
}

func resolveSchedulerOptions(opts []Option) (*schedulerOptions, error) {
	cfg := &schedulerOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyScheduler(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
