// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// RetryWithBackoff runs operation up to maxAttempts times, doubling
// baseDelay between attempts, and returns the last error.
//
// Retrying stops early once ctx is done, and the returned error then wraps
// both ctx.Err() and the last operation error. A retry whose backoff would
// outlast the ctx deadline is not attempted.
func RetryWithBackoff(ctx context.Context, operation func() error, maxAttempts int, baseDelay time.Duration) error {
	if maxAttempts <= 0 {
		return ErrInvalidMaxAttempts
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return stopped(err, attempt-1, lastErr)
		}

		lastErr = operation()
		if lastErr == nil {
			if attempt > 1 {
				slog.Debug("derivation succeeded after retry", "attempt", attempt)
			}
			return nil
		}

		if attempt == maxAttempts {
			break
		}
		if err := ctx.Err(); err != nil {
			return stopped(err, attempt, lastErr)
		}

		delay := baseDelay << (attempt - 1)
		if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < delay {
			slog.Debug("derivation failed, no time left to retry", "attempt", attempt, "delay", delay, "err", lastErr)
			return lastErr
		}
		slog.Debug("derivation failed, will retry", "attempt", attempt, "maxAttempts", maxAttempts, "delay", delay, "err", lastErr)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return stopped(ctx.Err(), attempt, lastErr)
		case <-timer.C:
		}
	}

	return lastErr
}

func stopped(ctxErr error, attempts int, lastErr error) error {
	if lastErr == nil {
		return ctxErr
	}
	return fmt.Errorf("%w after %d attempts: %w", ctxErr, attempts, lastErr)
}
