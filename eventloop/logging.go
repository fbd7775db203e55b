package eventloop

import (
	catrate "github.com/joeycumines/go-catrate"
	"github.com/joeycumines/logiface"
)

// panic categories, also used as catrate categories
const (
	categoryTask      = "task"
	categoryMicrotask = "microtask"
	categoryTimer     = "timer"
)

// loopLogger wraps the configured logiface logger with the loop's identity,
// and the rate limiter for recovered panics.
type loopLogger struct {
	logger  *logiface.Logger[logiface.Event]
	limiter *catrate.Limiter
	loopID  uint64
}

func newLoopLogger(loopID uint64, opts *loopOptions) *loopLogger {
	x := &loopLogger{
		logger: opts.logger,
		loopID: loopID,
	}
	// only bother with the limiter if panics can actually be logged
	if opts.logger != nil && len(opts.panicLogRate) != 0 {
		x.limiter = catrate.NewLimiter(opts.panicLogRate)
	}
	return x
}

func (x *loopLogger) debug(msg string) {
	x.logger.Debug().
		Uint64(`loop`, x.loopID).
		Log(msg)
}

func (x *loopLogger) panicked(category string, value any) {
	b := x.logger.Err()
	if !b.Enabled() {
		return
	}
	if _, ok := x.limiter.Allow(category); !ok {
		b.Release()
		return
	}
	b.Uint64(`loop`, x.loopID).
		Str(`category`, category).
		Err(PanicError{Value: value}).
		Log(`eventloop: callback panicked`)
}
