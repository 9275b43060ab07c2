package ports

import (
	"context"

	"github.com/hevytools/notion-sync/internal/domain"
)

// Dispatcher forwards one workout to the downstream webhook. A failed
// delivery is an outcome, never a Go error: the batch must continue past a
// single bad record.
type Dispatcher interface {
	Deliver(ctx context.Context, workout domain.Workout) domain.DeliveryOutcome
}
