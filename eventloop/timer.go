package eventloop

import (
	"container/heap"
	"time"
)

// TimerID identifies a timer scheduled via [Loop.ScheduleTimer].
type TimerID uint64

// timer represents a scheduled callback
type timer struct {
	when  time.Time
	fn    func()
	id    TimerID
	index int // heap index, -1 once removed
	seq   uint64
}

// timerHeap is a min-heap of timers, ordered by deadline then insertion
type timerHeap []*timer

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool {
	if h[i].when.Equal(h[j].when) {
		return h[i].seq < h[j].seq
	}
	return h[i].when.Before(h[j].when)
}

func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *timerHeap) Push(x any) {
	t := x.(*timer)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}

// ScheduleTimer schedules fn to run on the loop after the specified delay.
// Negative delays are treated as zero. Timers with equal deadlines fire in
// the order they were scheduled.
func (l *Loop) ScheduleTimer(delay time.Duration, fn func()) (TimerID, error) {
	if delay < 0 {
		delay = 0
	}

	l.mu.Lock()
	if !l.state.CanAcceptWork() {
		l.mu.Unlock()
		return 0, ErrLoopTerminated
	}
	l.timerSeq++
	t := &timer{
		when: l.now().Add(delay),
		fn:   fn,
		id:   TimerID(l.timerSeq),
		seq:  l.timerSeq,
	}
	heap.Push(&l.timers, t)
	l.timerIndex[t.id] = t
	l.mu.Unlock()

	l.wake()

	return t.id, nil
}

// CancelTimer cancels a pending timer. Returns [ErrTimerNotFound] if the
// timer has already fired, was already cancelled, or never existed.
func (l *Loop) CancelTimer(id TimerID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	t, ok := l.timerIndex[id]
	if !ok {
		return ErrTimerNotFound
	}
	delete(l.timerIndex, id)
	if t.index >= 0 {
		heap.Remove(&l.timers, t.index)
	}
	return nil
}

// popExpiredTimer removes and returns the earliest timer due at or before
// now, if any.
//
// CALLER MUST HOLD l.mu.
func (l *Loop) popExpiredTimer(now time.Time) (*timer, bool) {
	if len(l.timers) == 0 || l.timers[0].when.After(now) {
		return nil, false
	}
	t := heap.Pop(&l.timers).(*timer)
	delete(l.timerIndex, t.id)
	return t, true
}

// nextTimerDelay returns the delay until the next timer, and false if there
// are no timers.
//
// CALLER MUST HOLD l.mu.
func (l *Loop) nextTimerDelay(now time.Time) (time.Duration, bool) {
	if len(l.timers) == 0 {
		return 0, false
	}
	d := l.timers[0].when.Sub(now)
	if d < 0 {
		d = 0
	}
	return d, true
}
