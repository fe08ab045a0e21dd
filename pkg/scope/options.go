package scope

import (
	"log/slog"
	"time"
)

// DefaultPollInterval is the wait-loop interval used when no
// WithPollInterval option is given.
const DefaultPollInterval = time.Millisecond

// TaskInfo provides metadata about a scoped worker.
// It is passed to observability hooks registered via WithOnStart and WithOnDone.
type TaskInfo struct {
	Name string
}

type config struct {
	pollInterval time.Duration
	onStart      func(TaskInfo)
	onDone       func(TaskInfo, error, time.Duration)
	logger       *slog.Logger
}

// Option configures a Scope.
type Option func(*config)

func defaultConfig() config {
	return config{
		pollInterval: DefaultPollInterval,
		logger:       slog.New(slog.DiscardHandler),
	}
}

// WithPollInterval sets how long the scope's wait loop sleeps between checks
// of the running-worker counter.
//
// Waiting is a bounded-interval poll, not a pure block-and-wake: an exiting
// worker nudges the waiter, but the poll is what guarantees progress. A
// shorter interval lowers the latency between the last worker exiting and Run
// returning at the cost of more idle wake-ups; a longer one does the opposite.
// WithPollInterval panics if d is not positive.
func WithPollInterval(d time.Duration) Option {
	return func(c *config) {
		if d <= 0 {
			panic("scope: poll interval must be positive")
		}
		c.pollInterval = d
	}
}

// WithOnStart registers a hook invoked when each worker begins executing.
// The hook runs inside the worker's goroutine before the work function.
// Hooks from repeated options run in registration order.
func WithOnStart(fn func(TaskInfo)) Option {
	return func(c *config) {
		prev := c.onStart
		if prev == nil {
			c.onStart = fn
			return
		}
		c.onStart = func(info TaskInfo) {
			prev(info)
			fn(info)
		}
	}
}

// WithOnDone registers a hook invoked when each worker finishes.
// The hook receives the worker's error (nil on success) and wall-clock
// duration. It must not panic. Hooks from repeated options run in
// registration order.
func WithOnDone(fn func(TaskInfo, error, time.Duration)) Option {
	return func(c *config) {
		prev := c.onDone
		if prev == nil {
			c.onDone = fn
			return
		}
		c.onDone = func(info TaskInfo, err error, d time.Duration) {
			prev(info, err, d)
			fn(info, err, d)
		}
	}
}

// WithLogger sets the logger used for worker lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}
