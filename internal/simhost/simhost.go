// Package simhost provides a deterministic, manually driven host, with the
// same two queue tiers as eventloop.Loop.
package simhost

import (
	"errors"
)

// ErrClosed is returned by the queue methods after [Host.Close].
var ErrClosed = errors.New("simhost: closed")

// Host queues callbacks without running them, until driven by the caller.
// Not safe for concurrent use.
type Host struct {
	microtasks []func()
	tasks      []func()

	// Ran counts the tasks run so far.
	Ran int

	// FailTasks makes QueueTask fail, leaving QueueMicrotask working.
	FailTasks bool

	closed bool
}

// New returns an empty Host.
func New() *Host {
	return &Host{}
}

// QueueMicrotask appends fn to the microtask queue.
func (h *Host) QueueMicrotask(fn func()) error {
	if h.closed {
		return ErrClosed
	}
	h.microtasks = append(h.microtasks, fn)
	return nil
}

// QueueTask appends fn to the task queue.
func (h *Host) QueueTask(fn func()) error {
	if h.closed || h.FailTasks {
		return ErrClosed
	}
	h.tasks = append(h.tasks, fn)
	return nil
}

// DrainMicrotasks runs microtasks until none remain, including any queued
// while draining, and returns how many ran.
func (h *Host) DrainMicrotasks() (n int) {
	for len(h.microtasks) != 0 {
		fn := h.microtasks[0]
		h.microtasks[0] = nil
		h.microtasks = h.microtasks[1:]
		fn()
		n++
	}
	return n
}

// RunTask runs the oldest task, followed by a microtask checkpoint. It
// reports false if there was no task.
func (h *Host) RunTask() bool {
	if len(h.tasks) == 0 {
		return false
	}
	fn := h.tasks[0]
	h.tasks[0] = nil
	h.tasks = h.tasks[1:]
	fn()
	h.Ran++
	h.DrainMicrotasks()
	return true
}

// DrainTasks drains microtasks, then runs tasks until none remain.
func (h *Host) DrainTasks() {
	h.DrainMicrotasks()
	for h.RunTask() {
	}
}

// PendingMicrotasks returns the length of the microtask queue.
func (h *Host) PendingMicrotasks() int {
	return len(h.microtasks)
}

// PendingTasks returns the length of the task queue.
func (h *Host) PendingTasks() int {
	return len(h.tasks)
}

// Close makes all later queue calls fail with [ErrClosed].
func (h *Host) Close() {
	h.closed = true
}
