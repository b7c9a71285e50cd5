package guard

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
)

// ActionKind identifies what an Action does to the filesystem.
type ActionKind string

const (
	ActionCopy   ActionKind = "copy"
	ActionDelete ActionKind = "delete"
)

// Action is a single filesystem operation that may be retried.
// Run must be safe to call again after it fails.
type Action struct {
	Kind   ActionKind
	Target string
	Run    func(ctx context.Context) error
}

// RetryingExecutor runs actions with a bounded number of attempts.
// It holds no state between calls: every Execute starts from attempt one.
type RetryingExecutor struct {
	attempts int
	delay    time.Duration
	clock    clockwork.Clock
	logger   Logger
}

// NewRetryingExecutor creates an executor that tries each action up to
// attempts times, waiting delay between attempts. attempts below one is
// treated as one.
func NewRetryingExecutor(attempts int, delay time.Duration, clock clockwork.Clock, logger Logger) *RetryingExecutor {
	if attempts < 1 {
		attempts = 1
	}
	return &RetryingExecutor{
		attempts: attempts,
		delay:    delay,
		clock:    clock,
		logger:   logger,
	}
}

// Execute runs the action until it succeeds or the attempts are used up.
// Exhaustion returns a *FatalError. Context cancellation returns ctx.Err().
func (e *RetryingExecutor) Execute(ctx context.Context, action Action) error {
	var lastErr error
	for attempt := 1; attempt <= e.attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = action.Run(ctx)
		if lastErr == nil {
			if attempt > 1 {
				e.logger.Info("action recovered", "action", action.Kind, "target", action.Target, "attempt", attempt)
			}
			return nil
		}

		e.logger.Warn("action failed",
			"action", action.Kind,
			"target", action.Target,
			"attempt", attempt,
			"max_attempts", e.attempts,
			"error", lastErr,
		)

		if attempt < e.attempts {
			if err := sleep(ctx, e.clock, e.delay); err != nil {
				return err
			}
		}
	}

	return &FatalError{
		Kind:     action.Kind,
		Target:   action.Target,
		Attempts: e.attempts,
		Err:      lastErr,
	}
}

// sleep blocks for d or until ctx is done.
func sleep(ctx context.Context, clock clockwork.Clock, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-clock.After(d):
		return nil
	}
}
