package eventloop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTaskBudget_BoundsTick verifies that a single tick runs at most the
// budgeted number of tasks, leaving the rest queued.
func TestTaskBudget_BoundsTick(t *testing.T) {
	l, err := New(WithTaskBudget(2))
	require.NoError(t, err)

	var ran int
	for i := 0; i < 5; i++ {
		require.NoError(t, l.Submit(func() { ran++ }))
	}

	l.tick()
	assert.Equal(t, 2, ran)
	l.tick()
	assert.Equal(t, 4, ran)
	l.tick()
	assert.Equal(t, 5, ran)
	assert.EqualValues(t, 3, l.tickCount)
}

// TestTick_TasksQueuedDuringTickDeferred verifies that tasks submitted while
// processing a tick run on the next one.
func TestTick_TasksQueuedDuringTickDeferred(t *testing.T) {
	l, err := New()
	require.NoError(t, err)

	var order []string
	require.NoError(t, l.Submit(func() {
		order = append(order, "first")
		_ = l.Submit(func() { order = append(order, "next-tick") })
		_ = l.ScheduleMicrotask(func() { order = append(order, "microtask") })
	}))

	l.tick()
	assert.Equal(t, []string{"first", "microtask"}, order)
	l.tick()
	assert.Equal(t, []string{"first", "microtask", "next-tick"}, order)
}

func TestSubmit_nilIgnored(t *testing.T) {
	l, err := New()
	require.NoError(t, err)
	assert.NoError(t, l.Submit(nil))
	assert.NoError(t, l.ScheduleMicrotask(nil))
	assert.Equal(t, 0, l.tasks.len())
	assert.Equal(t, 0, l.microtasks.len())
}
