// Package application orchestrates the fetch → deliver → summarize pipeline.
package application

import (
	"context"
	"fmt"
	"time"

	"github.com/hevytools/notion-sync/internal/domain"
	"github.com/hevytools/notion-sync/internal/ports"
)

// Progress receives observability callbacks while a run advances. Either
// field may be nil. Callbacks are invoked from the run's single goroutine.
type Progress struct {
	// PageFetched fires once per upstream page with the kept page size and
	// the running total of kept workouts.
	PageFetched func(page, size, runningTotal int)
	// Delivered fires after each delivery attempt with the workout's
	// 1-based position and the batch size.
	Delivered func(position, total int, workout domain.Workout, outcome domain.DeliveryOutcome)
}

// Pipeline runs one sync: it drains the workout source, forwards every
// workout downstream one at a time with a throttle between sends, and
// aggregates the outcomes. Execution is strictly sequential.
type Pipeline struct {
	source     ports.WorkoutSource
	dispatcher ports.Dispatcher
	sleeper    ports.Sleeper
	clock      ports.Clock
	delay      time.Duration
	progress   Progress
}

type PipelineOption func(*Pipeline)

func WithProgress(progress Progress) PipelineOption {
	return func(p *Pipeline) {
		p.progress = progress
	}
}

func WithSleeper(sleeper ports.Sleeper) PipelineOption {
	return func(p *Pipeline) {
		if sleeper != nil {
			p.sleeper = sleeper
		}
	}
}

func WithClock(clock ports.Clock) PipelineOption {
	return func(p *Pipeline) {
		if clock != nil {
			p.clock = clock
		}
	}
}

func NewPipeline(source ports.WorkoutSource, dispatcher ports.Dispatcher, delay time.Duration, opts ...PipelineOption) *Pipeline {
	pipeline := &Pipeline{
		source:     source,
		dispatcher: dispatcher,
		sleeper:    ports.SystemSleeper{},
		clock:      ports.SystemClock{},
		delay:      delay,
	}

	for _, opt := range opts {
		opt(pipeline)
	}

	return pipeline
}

// Fetch drains the source into memory. A source failure is fatal: there is
// nothing to partially report before the first delivery.
func (p *Pipeline) Fetch(ctx context.Context, since time.Time) ([]domain.Workout, error) {
	var workouts []domain.Workout

	err := p.source.StreamSince(ctx, since, func(page domain.Page) error {
		workouts = append(workouts, page.Workouts...)
		if p.progress.PageFetched != nil {
			p.progress.PageFetched(page.Number, len(page.Workouts), len(workouts))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("stream workouts: %w", err)
	}

	return workouts, nil
}

// Deliver forwards workouts in source order, sleeping the configured delay
// after each send except the last. A failed delivery is recorded and the
// batch continues.
func (p *Pipeline) Deliver(ctx context.Context, workouts []domain.Workout) []domain.DeliveryOutcome {
	outcomes := make([]domain.DeliveryOutcome, 0, len(workouts))

	for i, workout := range workouts {
		outcome := p.dispatcher.Deliver(ctx, workout)
		outcomes = append(outcomes, outcome)

		if p.progress.Delivered != nil {
			p.progress.Delivered(i+1, len(workouts), workout, outcome)
		}

		if i < len(workouts)-1 {
			p.sleeper.Sleep(ctx, p.delay)
		}
	}

	return outcomes
}

// Run executes the whole pipeline and returns the aggregated summary.
func (p *Pipeline) Run(ctx context.Context, since time.Time) (domain.RunSummary, error) {
	started := p.clock.Now()

	workouts, err := p.Fetch(ctx, since)
	if err != nil {
		return domain.RunSummary{}, err
	}

	outcomes := p.Deliver(ctx, workouts)

	summary := domain.Summarize(outcomes)
	summary.Duration = p.clock.Now().Sub(started)
	return summary, nil
}
