package eventloop

import (
	"errors"
	"fmt"
)

var (
	// ErrLoopAlreadyRunning is returned when Run() is called on a loop that is already running.
	ErrLoopAlreadyRunning = errors.New("eventloop: loop is already running")

	// ErrLoopTerminated is returned when operations are attempted on a terminated loop.
	ErrLoopTerminated = errors.New("eventloop: loop has been terminated")

	// ErrReentrantRun is returned when Run() is called from within the loop itself.
	ErrReentrantRun = errors.New("eventloop: cannot call Run() from within the loop")

	// ErrTimerNotFound is returned when cancelling a timer that does not exist
	// or has already fired.
	ErrTimerNotFound = errors.New("eventloop: timer not found")
)

// PanicError wraps a value recovered from a panic, e.g. within a promise
// handler, so that it may be used as a rejection reason.
type PanicError struct {
	Value any
}

// Error implements the error interface.
func (e PanicError) Error() string {
	return fmt.Sprintf("eventloop: panic: %v", e.Value)
}

// Unwrap returns the underlying error if the panic value is an error type.
// This enables use with [errors.Is] and [errors.As].
//
// If the panic Value is not an error (e.g., a string or other type),
// returns nil.
func (e PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
