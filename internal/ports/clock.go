package ports

import (
	"context"
	"time"
)

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// Sleeper blocks for the given duration or until the context is done.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration)
}

type SystemSleeper struct{}

func (SystemSleeper) Sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
