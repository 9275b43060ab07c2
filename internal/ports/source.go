package ports

import (
	"context"
	"time"

	"github.com/hevytools/notion-sync/internal/domain"
)

// PageFunc consumes one fetched page. Returning an error stops the stream.
type PageFunc func(page domain.Page) error

// WorkoutSource streams workout pages from the upstream API, newest first.
// The stream is forward-only and non-restartable: pages arrive in upstream
// order and each page is handed over exactly once.
type WorkoutSource interface {
	StreamSince(ctx context.Context, since time.Time, fn PageFunc) error
}
