package eventloop

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPanicIsolation_TaskPanic verifies that a panic in one task does not
// crash the loop, and subsequent work continues to execute.
func TestPanicIsolation_TaskPanic(t *testing.T) {
	var buf syncBuffer
	loop, err := New(WithLogger(newTestLogger(&buf)))
	require.NoError(t, err)
	startLoop(t, loop)

	done := make(chan struct{})
	require.NoError(t, loop.Submit(func() { panic("task boom") }))
	require.NoError(t, loop.ScheduleMicrotask(func() { panic("microtask boom") }))
	_, err = loop.ScheduleTimer(0, func() { panic("timer boom") })
	require.NoError(t, err)
	require.NoError(t, loop.Submit(func() {
		_, _ = loop.ScheduleTimer(time.Millisecond, func() { close(done) })
	}))

	waitChan(t, done)

	out := buf.String()
	for _, s := range []string{
		`"category":"task"`,
		`"category":"microtask"`,
		`"category":"timer"`,
		`eventloop: panic: task boom`,
		`eventloop: callback panicked`,
	} {
		assert.Contains(t, out, s)
	}
}

// TestPanicLogging_RateLimited verifies that panic logs are limited per
// category.
func TestPanicLogging_RateLimited(t *testing.T) {
	var buf syncBuffer
	l, err := New(
		WithLogger(newTestLogger(&buf)),
		WithPanicLogRate(map[time.Duration]int{time.Hour: 2}),
	)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, l.Submit(func() { panic("task") }))
		require.NoError(t, l.ScheduleMicrotask(func() { panic("microtask") }))
	}
	l.tick()

	out := buf.String()
	assert.Equal(t, 2, strings.Count(out, `"category":"task"`))
	assert.Equal(t, 2, strings.Count(out, `"category":"microtask"`))
}

func TestPanicLogging_NoLogger(t *testing.T) {
	l, err := New()
	require.NoError(t, err)
	assert.Nil(t, l.log.limiter)

	ran := false
	require.NoError(t, l.Submit(func() { panic("silent") }))
	require.NoError(t, l.Submit(func() { ran = true }))
	l.tick()
	assert.True(t, ran)
}

func TestLogging_Lifecycle(t *testing.T) {
	var buf syncBuffer
	loop, err := New(WithLogger(newTestLogger(&buf)))
	require.NoError(t, err)
	startLoop(t, loop)

	assert.Eventually(t, func() bool {
		return strings.Contains(buf.String(), `eventloop: run started`)
	}, time.Second, time.Millisecond)
}
