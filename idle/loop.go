package idle

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

var (
	// ErrLoopRunning is returned when Run is called on a loop that is already running.
	ErrLoopRunning = errors.New("idle: loop is already running")

	// ErrLoopStopped is returned when tasks are posted to a loop that has exited.
	ErrLoopStopped = errors.New("idle: loop has been stopped")
)

// DefaultFrame is the idle budget handed to callbacks when none is configured.
const DefaultFrame = 16 * time.Millisecond

// Loop is a cooperative task loop owning a single goroutine. Posted tasks
// (event handlers, external updates) run first, in order; idle callbacks run
// afterwards with a frame-sized deadline. Everything a Loop runs executes on
// the goroutine that called Run, so the work it drives needs no locking.
//
// Post and RequestIdleCallback are safe for concurrent use.
type Loop struct {
	frame time.Duration

	mu    sync.Mutex
	tasks []func()
	idle  []Callback

	wake    chan struct{}
	running atomic.Bool
	stopped atomic.Bool
}

func NewLoop(frame time.Duration) *Loop {
	if frame <= 0 {
		frame = DefaultFrame
	}
	return &Loop{
		frame: frame,
		wake:  make(chan struct{}, 1),
	}
}

// Post queues a task for the loop goroutine.
func (l *Loop) Post(task func()) error {
	if l.stopped.Load() {
		return ErrLoopStopped
	}
	l.mu.Lock()
	l.tasks = append(l.tasks, task)
	l.mu.Unlock()
	l.signal()
	return nil
}

func (l *Loop) RequestIdleCallback(cb Callback) {
	l.mu.Lock()
	l.idle = append(l.idle, cb)
	l.mu.Unlock()
	l.signal()
}

func (l *Loop) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *Loop) take() ([]func(), []Callback) {
	l.mu.Lock()
	defer l.mu.Unlock()
	tasks, idle := l.tasks, l.idle
	l.tasks, l.idle = nil, nil
	return tasks, idle
}

// Run processes tasks and idle callbacks until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrLoopRunning
	}
	defer l.running.Store(false)
	defer l.stopped.Store(true)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		tasks, idle := l.take()
		for _, task := range tasks {
			task()
		}
		if len(idle) > 0 {
			d := Budget(l.frame)
			for _, cb := range idle {
				cb(d)
			}
		}
		if len(tasks) > 0 || len(idle) > 0 {
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}
