// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package eventloop

import (
	"errors"
	"fmt"
	"time"

	catrate "github.com/joeycumines/go-catrate"
	"github.com/joeycumines/logiface"
)

// loopOptions holds configuration options for Loop creation.
type loopOptions struct {
	logger       *logiface.Logger[logiface.Event]
	panicLogRate map[time.Duration]int
	taskBudget   int
	now          func() time.Time
}

// --- Loop Options ---

// LoopOption configures a Loop instance.
type LoopOption interface {
	applyLoop(*loopOptions) error
}

// loopOptionImpl implements LoopOption.
type loopOptionImpl struct {
	applyLoopFunc func(*loopOptions) error
}

func (l *loopOptionImpl) applyLoop(opts *loopOptions) error {
	return l.applyLoopFunc(opts)
}

// WithLogger configures structured logging for the loop. A nil logger
// disables logging, which is also the default.
func WithLogger(logger *logiface.Logger[logiface.Event]) LoopOption {
	return &loopOptionImpl{func(opts *loopOptions) error {
		opts.logger = logger
		return nil
	}}
}

// WithPanicLogRate limits how often recovered panics are logged, per
// category ("task", "microtask", "timer"), using sliding windows of
// duration to count. A nil or empty map disables rate limiting.
//
// The rates must be valid per [catrate.NewLimiter].
func WithPanicLogRate(rates map[time.Duration]int) LoopOption {
	return &loopOptionImpl{func(opts *loopOptions) error {
		if len(rates) != 0 {
			if err := validateRates(rates); err != nil {
				return err
			}
		}
		opts.panicLogRate = rates
		return nil
	}}
}

// validateRates reports rates that catrate.NewLimiter would reject.
func validateRates(rates map[time.Duration]int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("eventloop: invalid panic log rates: %v", r)
		}
	}()
	catrate.NewLimiter(rates)
	return nil
}

// WithTaskBudget sets the maximum number of tasks run per tick, before the
// loop returns to timers. Values <= 0 are rejected.
func WithTaskBudget(n int) LoopOption {
	return &loopOptionImpl{func(opts *loopOptions) error {
		if n <= 0 {
			return errors.New("eventloop: task budget must be positive")
		}
		opts.taskBudget = n
		return nil
	}}
}

// withClock overrides the time source, for tests.
func withClock(now func() time.Time) LoopOption {
	return &loopOptionImpl{func(opts *loopOptions) error {
		opts.now = now
		return nil
	}}
}

// resolveLoopOptions applies LoopOption instances to loopOptions.
func resolveLoopOptions(opts []LoopOption) (*loopOptions, error) {
	cfg := &loopOptions{
		panicLogRate: map[time.Duration]int{
			time.Second: 10,
			time.Minute: 100,
		},
		taskBudget: 1024,
		now:        time.Now,
	}
	for _, opt := range opts {
		if opt == nil {
			continue // Skip nil options gracefully
		}
		if err := opt.applyLoop(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
