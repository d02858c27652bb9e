package retry

import (
	"context"
	"fmt"
	"time"
)

// Policy describes a fixed-delay retry budget. The zero value is not usable;
// construct with NewPolicy or fill every field.
type Policy struct {
	MaxAttempts int
	Wait        time.Duration
	// Retryable decides whether an error is worth another attempt.
	// nil means every error is retryable.
	Retryable func(error) bool
}

// NewPolicy returns a Policy that retries every error with a constant wait
// between attempts.
func NewPolicy(maxAttempts int, wait time.Duration) Policy {
	return Policy{MaxAttempts: maxAttempts, Wait: wait}
}

// Do invokes fn up to p.MaxAttempts times, sleeping p.Wait between attempts.
// It stops early when fn succeeds, when the error is not retryable, or when
// ctx is cancelled. The last error is returned wrapped with the attempt count.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if p.MaxAttempts < 1 {
		return fmt.Errorf("retry: invalid max attempts %d", p.MaxAttempts)
	}

	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(lastErr) {
			return lastErr
		}
		if attempt == p.MaxAttempts {
			break
		}

		select {
		case <-time.After(p.Wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return fmt.Errorf("after %d attempts: %w", p.MaxAttempts, lastErr)
}
