//-------------------------------------------------------------------------
//
// pgEdge Search Server
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package morph

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// retryWithBackoff retries an operation that fails with
// ErrAnalyzerUnavailable, doubling the delay after each attempt. Other
// errors are returned immediately.
func retryWithBackoff(
	ctx context.Context,
	logger *slog.Logger,
	operation func() error,
	maxAttempts int,
	baseDelay time.Duration,
) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	delay := baseDelay
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = operation()
		if lastErr == nil {
			if attempt > 1 {
				logger.Debug("analyzer call succeeded after retry", "attempt", attempt)
			}
			return nil
		}
		if !errors.Is(lastErr, ErrAnalyzerUnavailable) {
			return lastErr
		}

		logger.Debug("analyzer call failed",
			"attempt", attempt,
			"max_attempts", maxAttempts,
			"error", lastErr)

		if attempt == maxAttempts {
			break
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

	return lastErr
}
