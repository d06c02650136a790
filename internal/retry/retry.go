// Package retry runs an operation with exponential backoff.
package retry

import (
	"context"
	"errors"
	"time"

	"clad/internal/errkind"
)

const defaultDelay = 100 * time.Millisecond

// Do calls fn until it succeeds, maxRetries extra attempts are spent, or ctx
// is done. The delay doubles after every failure. Validation, Authorization
// and AlreadyInitialized failures are returned at once since repeating them
// cannot change the outcome.
func Do(ctx context.Context, maxRetries int, baseDelay time.Duration, fn func(context.Context) error) error {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if baseDelay <= 0 {
		baseDelay = defaultDelay
	}

	delay := baseDelay
	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if attempt >= maxRetries || permanent(err) {
			return err
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay *= 2
	}
}

func permanent(err error) bool {
	return errors.Is(err, errkind.Validation) ||
		errors.Is(err, errkind.Authorization) ||
		errors.Is(err, errkind.AlreadyInitialized) ||
		errors.Is(err, context.Canceled)
}
