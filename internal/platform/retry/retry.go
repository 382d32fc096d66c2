// Package retry waits for backing services to become reachable during startup.
//
// Auth code exchanges are never retried: codes are single use, so a second
// attempt with the same code cannot succeed.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

type Policy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultPolicy gives a store roughly half a minute to come up.
var DefaultPolicy = Policy{
	MaxAttempts:    6,
	InitialBackoff: 500 * time.Millisecond,
	MaxBackoff:     8 * time.Second,
}

// Probe checks a dependency once.
type Probe func(ctx context.Context) error

// PermanentError marks a failure that further attempts will not fix.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent wraps err so that WaitFor stops immediately.
func Permanent(err error) error {
	return &PermanentError{Err: err}
}

// WaitFor runs probe until it succeeds, returns a PermanentError, the attempts
// are exhausted or ctx is done.
func WaitFor(ctx context.Context, p Policy, name string, probe Probe) error {
	if p.MaxAttempts < 1 {
		return fmt.Errorf("%s: retry policy needs at least one attempt", name)
	}

	backoff := p.InitialBackoff
	var lastErr error

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		lastErr = probe(ctx)
		if lastErr == nil {
			if attempt > 1 {
				slog.Info("Dependency reachable", "dependency", name, "attempt", attempt)
			}
			return nil
		}

		if _, ok := errors.AsType[*PermanentError](lastErr); ok {
			return fmt.Errorf("%s: %w", name, lastErr)
		}
		if attempt == p.MaxAttempts {
			break
		}

		slog.Warn("Dependency not reachable, retrying", "dependency", name, "attempt", attempt, "backoff", backoff, "error", lastErr)

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return fmt.Errorf("%s: context cancelled during retry: %w", name, ctx.Err())
		}

		backoff *= 2
		if p.MaxBackoff > 0 && backoff > p.MaxBackoff {
			backoff = p.MaxBackoff
		}
	}

	return fmt.Errorf("%s: failed after %d attempts: %w", name, p.MaxAttempts, lastErr)
}
