package eventloop

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// waitLoopState waits for a loop to reach a specific state within a timeout.
func waitLoopState(t *testing.T, loop *Loop, expected LoopState, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for loop.State() != expected && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if loop.State() != expected {
		// Accept either Running or Sleeping as "running"
		state := loop.State()
		if expected == StateRunning && (state == StateRunning || state == StateSleeping) {
			return
		}
		t.Fatalf("Loop failed to reach %v state (got %v)", expected, state)
	}
}

// startLoop runs loop in the background, cancelling it at the end of the
// test, and failing if Run returns an unexpected error.
func startLoop(t *testing.T, loop *Loop) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("Run() unexpected error: %v", err)
		}
	}()
	t.Cleanup(func() {
		cancel()
		<-runDone
	})
	waitLoopState(t, loop, StateRunning, time.Second)
}

// recorder is a goroutine safe log of events.
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (x *recorder) add(event string) {
	x.mu.Lock()
	x.events = append(x.events, event)
	x.mu.Unlock()
}

func (x *recorder) get() []string {
	x.mu.Lock()
	defer x.mu.Unlock()
	return append([]string(nil), x.events...)
}

// syncBuffer is a bytes.Buffer safe for concurrent use.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (x *syncBuffer) Write(p []byte) (int, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.buf.Write(p)
}

func (x *syncBuffer) String() string {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.buf.String()
}

func newTestLogger(w *syncBuffer) *logiface.Logger[logiface.Event] {
	return stumpy.L.New(
		stumpy.L.WithStumpy(stumpy.WithWriter(w), stumpy.WithTimeField(``)),
		stumpy.L.WithLevel(logiface.LevelTrace),
	).Logger()
}

func waitChan(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out")
	}
}
