package idle_test

import (
	"context"
	"testing"
	"time"

	"github.com/delaneyj/fiberparty/idle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeadlines(t *testing.T) {
	assert.Greater(t, idle.Unlimited.TimeRemaining(), 24*time.Hour)
	assert.Zero(t, idle.Until(time.Now().Add(-time.Second)).TimeRemaining())
	assert.Positive(t, idle.Budget(time.Hour).TimeRemaining())

	c := idle.NewCountdown(2)
	assert.Equal(t, time.Hour, c.TimeRemaining())
	assert.Equal(t, time.Hour, c.TimeRemaining())
	assert.Zero(t, c.TimeRemaining())
	assert.Zero(t, c.TimeRemaining())
}

// should leave callbacks requested while pumping for the next pump
func TestManual(t *testing.T) {
	m := idle.NewManual()
	assert.False(t, m.RunOnce(idle.Unlimited))

	runs := 0
	var again idle.Callback
	again = func(d idle.Deadline) {
		runs++
		if runs < 3 {
			m.RequestIdleCallback(again)
		}
	}
	m.RequestIdleCallback(again)

	assert.True(t, m.RunOnce(idle.Unlimited))
	assert.Equal(t, 1, runs)
	assert.Equal(t, 1, m.Pending())

	assert.Equal(t, 2, m.Drain(10))
	assert.Equal(t, 3, runs)
	assert.Zero(t, m.Pending())
}

// should bound the number of pumps
func TestManualDrainLimit(t *testing.T) {
	m := idle.NewManual()
	var forever idle.Callback
	forever = func(idle.Deadline) { m.RequestIdleCallback(forever) }
	m.RequestIdleCallback(forever)
	assert.Equal(t, 5, m.Drain(5))
	assert.Equal(t, 1, m.Pending())
}

// should run tasks in order before idle callbacks, on one goroutine
func TestLoop(t *testing.T) {
	loop := idle.NewLoop(0)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	var order []string
	finished := make(chan struct{})
	require.NoError(t, loop.Post(func() {
		loop.RequestIdleCallback(func(d idle.Deadline) {
			assert.LessOrEqual(t, d.TimeRemaining(), idle.DefaultFrame)
			order = append(order, "idle")
			close(finished)
		})
		order = append(order, "first")
		assert.NoError(t, loop.Post(func() { order = append(order, "second") }))
	}))

	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("idle callback never ran")
	}
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Equal(t, []string{"first", "second", "idle"}, order)

	assert.ErrorIs(t, loop.Post(func() {}), idle.ErrLoopStopped)
}

// should refuse to run twice at once
func TestLoopRunning(t *testing.T) {
	loop := idle.NewLoop(time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	started := make(chan struct{})
	require.NoError(t, loop.Post(func() { close(started) }))
	<-started
	assert.ErrorIs(t, loop.Run(ctx), idle.ErrLoopRunning)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
