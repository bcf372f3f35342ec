package urlscan

import (
	"context"
	"time"
)

// SleepFunc pauses the caller for the given duration. Implementations must
// return early with the context error when ctx is canceled. Tests inject a
// recording implementation so no real time passes.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the default SleepFunc used by this package.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err() //nolint: wrapcheck
	case <-timer.C:
		return nil
	}
}
