// Package idle abstracts the host facility that runs deferred work when the
// host has spare time, handing the work an estimate of how long it may run.
package idle

import (
	"math"
	"time"
)

// Deadline reports how much of the current slice of idle time is left.
type Deadline interface {
	TimeRemaining() time.Duration
}

// Callback is invoked by a Scheduler with a deadline estimate.
type Callback func(d Deadline)

// Scheduler invokes callbacks at the host's discretion. Callbacks must run on
// the goroutine that owns the work they drive.
type Scheduler interface {
	RequestIdleCallback(cb Callback)
}

type unlimited struct{}

func (unlimited) TimeRemaining() time.Duration { return math.MaxInt64 }

// Unlimited never expires.
var Unlimited Deadline = unlimited{}

type wallDeadline struct {
	end time.Time
	now func() time.Time
}

func (d wallDeadline) TimeRemaining() time.Duration {
	remaining := d.end.Sub(d.now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Until expires at the given wall clock time.
func Until(end time.Time) Deadline {
	return wallDeadline{end: end, now: time.Now}
}

// Budget expires once d has elapsed from now.
func Budget(d time.Duration) Deadline {
	return Until(time.Now().Add(d))
}

// Countdown is a deterministic deadline for tests and simulations: it reports
// an hour remaining for the first n queries and nothing afterwards.
type Countdown struct {
	n int
}

func NewCountdown(n int) *Countdown {
	return &Countdown{n: n}
}

func (c *Countdown) TimeRemaining() time.Duration {
	if c.n <= 0 {
		return 0
	}
	c.n--
	return time.Hour
}
