package fsutil

import (
	"context"
	"fmt"
	"time"

	retry "github.com/avast/retry-go/v5"
)

// MinRetryDelay is the floor applied to the waiter's delay so that a zero or
// negative value cannot turn the wait into a busy loop.
const MinRetryDelay = time.Millisecond

// exclusiveProbe is the per-attempt check used by the waiter.
var exclusiveProbe = ProbeExclusive

// WaitUntilExclusivelyOpenable blocks the calling goroutine until path can be
// opened read-write with an exclusive lock, sleeping retryDelay after every
// failed attempt. There is no attempt limit; cancel ctx to give up, in which
// case the returned error wraps the context's error.
func WaitUntilExclusivelyOpenable(ctx context.Context, path string, retryDelay time.Duration) error {
	if retryDelay < MinRetryDelay {
		retryDelay = MinRetryDelay
	}

	err := retry.New(
		retry.Context(ctx),
		retry.Attempts(0),
		retry.Delay(retryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	).Do(func() error {
		return exclusiveProbe(path)
	})
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("fsutil: wait for exclusive access to '%s' abandoned: %w", path, ctxErr)
	}
	return fmt.Errorf("fsutil: wait for exclusive access to '%s' failed: %w", path, err)
}

// WaitUntilExclusivelyOpenableMs is WaitUntilExclusivelyOpenable with the
// delay given in milliseconds.
func WaitUntilExclusivelyOpenableMs(ctx context.Context, path string, retryDelayMs int64) error {
	return WaitUntilExclusivelyOpenable(ctx, path, time.Duration(retryDelayMs)*time.Millisecond)
}
