package fiber

import (
	"time"

	"github.com/delaneyj/fiberparty/idle"
	"go.uber.org/zap"
)

// DefaultYieldThreshold is the remaining idle time under which the work loop
// hands control back to the host.
const DefaultYieldThreshold = time.Millisecond

// OnErrorFunc receives fatal errors raised while the root runs from an idle
// callback, where there is no caller to return them to.
type OnErrorFunc func(err error)

type Option func(r *Root)

// WithScheduler makes the root request idle callbacks whenever it has work.
// Without one the owner drives the root through WorkLoop or Flush.
func WithScheduler(s idle.Scheduler) Option {
	return func(r *Root) {
		r.scheduler = s
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(r *Root) {
		if l != nil {
			r.logger = l
		}
	}
}

func WithOnError(fn OnErrorFunc) Option {
	return func(r *Root) {
		r.onError = fn
	}
}

func WithYieldThreshold(d time.Duration) Option {
	return func(r *Root) {
		r.yieldThreshold = d
	}
}

// WithHookCheck fails a render whose hook count or order differs from the
// component's previous render.
func WithHookCheck(enabled bool) Option {
	return func(r *Root) {
		r.hookCheck = enabled
	}
}

// WithMaxFlushGenerations bounds how many generations one Flush may commit.
func WithMaxFlushGenerations(n int) Option {
	return func(r *Root) {
		if n > 0 {
			r.maxFlush = n
		}
	}
}
