package debounce

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// manualClock collects scheduled callbacks so tests decide when they fire.
type manualClock struct {
	mu     sync.Mutex
	timers []*manualTimer
}

type manualTimer struct {
	fn      func()
	delay   time.Duration
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	wasActive := !t.stopped && !t.fired
	t.stopped = true
	return wasActive
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{fn: f, delay: d}
	c.timers = append(c.timers, t)
	return t
}

// FireAll runs every timer that has not been stopped.
func (c *manualClock) FireAll() int {
	c.mu.Lock()
	timers := append([]*manualTimer(nil), c.timers...)
	c.mu.Unlock()

	fired := 0
	for _, t := range timers {
		if t.stopped || t.fired {
			continue
		}
		t.fired = true
		t.fn()
		fired++
	}
	return fired
}

func TestDebouncer_OnlyLatestRuns(t *testing.T) {
	t.Parallel()

	clock := &manualClock{}
	d := New(500*time.Millisecond, WithAfterFunc(clock.AfterFunc))

	var ran []string
	for _, v := range []string{"h", "he", "hel", "hell", "hello"} {
		v := v
		d.Schedule(func(ctx context.Context) { ran = append(ran, v) })
	}

	assert.Equal(t, 1, clock.FireAll())
	assert.Equal(t, []string{"hello"}, ran)
	assert.False(t, d.Pending())
	for _, tm := range clock.timers {
		assert.Equal(t, 500*time.Millisecond, tm.delay)
	}
}

func TestDebouncer_SupersededTaskContextIsCanceled(t *testing.T) {
	t.Parallel()

	clock := &manualClock{}
	d := New(time.Second, WithAfterFunc(clock.AfterFunc))

	first := d.Schedule(func(ctx context.Context) {})
	second := d.Schedule(func(ctx context.Context) {})

	assert.ErrorIs(t, first.Context().Err(), context.Canceled)
	assert.NoError(t, second.Context().Err())
	assert.True(t, d.Pending())
}

func TestDebouncer_TaskSupersededWhileRunning(t *testing.T) {
	t.Parallel()

	clock := &manualClock{}
	d := New(time.Second, WithAfterFunc(clock.AfterFunc))

	var sawCancel bool
	d.Schedule(func(ctx context.Context) {
		// A new edit arrives while this task is running.
		d.Schedule(func(context.Context) {})
		sawCancel = ctx.Err() != nil
	})
	clock.FireAll()
	assert.True(t, sawCancel)
	assert.True(t, d.Pending())
}

func TestDebouncer_Cancel(t *testing.T) {
	t.Parallel()

	clock := &manualClock{}
	d := New(time.Second, WithAfterFunc(clock.AfterFunc))

	var calls int
	d.Schedule(func(context.Context) { calls++ })
	d.Cancel()

	assert.Equal(t, 0, clock.FireAll())
	assert.Equal(t, 0, calls)
	assert.False(t, d.Pending())
}

func TestDebouncer_Close(t *testing.T) {
	t.Parallel()

	clock := &manualClock{}
	d := New(time.Second, WithAfterFunc(clock.AfterFunc))

	d.Schedule(func(context.Context) {})
	d.Close()
	assert.Nil(t, d.Schedule(func(context.Context) {}))
	assert.Equal(t, 0, clock.FireAll())
}

func TestDebouncer_RealTimer(t *testing.T) {
	t.Parallel()

	d := New(20 * time.Millisecond)
	var calls int32
	done := make(chan struct{})
	for i := 0; i < 5; i++ {
		d.Schedule(func(context.Context) {
			if atomic.AddInt32(&calls, 1) == 1 {
				close(done)
			}
		})
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		require.FailNow(t, "debounced task never ran")
	}
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
