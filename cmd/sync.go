package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/hevytools/notion-sync/internal/adapters/render/summary"
	"github.com/hevytools/notion-sync/internal/application"
	"github.com/hevytools/notion-sync/internal/domain"
)

// errDeliveryFailures drives the non-zero exit code when the run finishes
// but some workouts could not be delivered.
var errDeliveryFailures = errors.New("some workouts failed to deliver")

func newSyncCmd(app *app) *cobra.Command {
	var sinceFlag string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Backfill Hevy workouts to the webhook receiver",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSync(cmd, app, sinceFlag, asJSON)
		},
	}

	cmd.Flags().StringVar(&sinceFlag, "since", "", "Override the configured start date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func runSync(cmd *cobra.Command, app *app, sinceFlag string, asJSON bool) error {
	cfg := app.cfg
	if sinceFlag != "" {
		cfg.Sync.StartDate = sinceFlag
	}
	if err := cfg.ValidateSync(); err != nil {
		return err
	}
	since, err := cfg.Sync.Since()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	started := app.clock.Now()

	var notifyPage func(page, total int)
	progress := application.Progress{
		PageFetched: func(page, _, runningTotal int) {
			if notifyPage != nil {
				notifyPage(page, runningTotal)
			}
		},
		Delivered: func(position, total int, workout domain.Workout, outcome domain.DeliveryOutcome) {
			if asJSON {
				return
			}
			writeDeliveryLine(out, position, total, workout, outcome)
		},
	}

	pipeline := app.newPipeline(application.WithProgress(progress), application.WithClock(app.clock))

	var workouts []domain.Workout
	if asJSON {
		workouts, err = pipeline.Fetch(cmd.Context(), since)
	} else {
		err = runFetchSpinner(cmd.Context(), cmd.ErrOrStderr(), func(ctx context.Context, notify func(page, total int)) error {
			notifyPage = notify
			var fetchErr error
			workouts, fetchErr = pipeline.Fetch(ctx, since)
			return fetchErr
		})
	}
	if err != nil {
		return err
	}

	outcomes := pipeline.Deliver(cmd.Context(), workouts)

	run := domain.Summarize(outcomes)
	run.Duration = app.clock.Now().Sub(started)

	if asJSON {
		encoded, err := json.MarshalIndent(run, "", "  ")
		if err != nil {
			return fmt.Errorf("encode summary: %w", err)
		}
		if _, err := fmt.Fprintln(out, string(encoded)); err != nil {
			return err
		}
	} else {
		if _, err := fmt.Fprintln(out, summary.Render(run)); err != nil {
			return err
		}
	}

	if run.Failed > 0 {
		return errDeliveryFailures
	}
	return nil
}

func writeDeliveryLine(out io.Writer, position, total int, workout domain.Workout, outcome domain.DeliveryOutcome) {
	label := string(workout.ID)
	if workout.Title != "" {
		label = fmt.Sprintf("%s %q", workout.ID, workout.Title)
	}
	if !workout.StartTime.IsZero() {
		label += " (" + workout.StartTime.Format(time.DateOnly) + ")"
	}

	if outcome.Delivered {
		fmt.Fprintf(out, "[%d/%d] delivered %s\n", position, total, label)
		return
	}
	fmt.Fprintf(out, "[%d/%d] failed %s: %s\n", position, total, label, outcome.Reason)
}
