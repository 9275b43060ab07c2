package domain

import "time"

// DeliveryOutcome is the per-workout result of one webhook delivery attempt.
type DeliveryOutcome struct {
	WorkoutID WorkoutID
	Delivered bool
	// Reason explains a failed delivery: an HTTP status line or a transport
	// error message. Empty for successful deliveries.
	Reason string
}

func Delivered(id WorkoutID) DeliveryOutcome {
	return DeliveryOutcome{WorkoutID: id, Delivered: true}
}

func Undelivered(id WorkoutID, reason string) DeliveryOutcome {
	return DeliveryOutcome{WorkoutID: id, Reason: reason}
}

// RunSummary aggregates the outcomes of one sync run.
type RunSummary struct {
	Total     int
	Succeeded int
	Failed    int
	// FailedIDs lists the workouts that need manual reconciliation,
	// in delivery order.
	FailedIDs []WorkoutID
	Duration  time.Duration
}

// Summarize counts outcomes in a single pass. Total == Succeeded + Failed
// holds for any input.
func Summarize(outcomes []DeliveryOutcome) RunSummary {
	summary := RunSummary{Total: len(outcomes)}

	for _, outcome := range outcomes {
		if outcome.Delivered {
			summary.Succeeded++
			continue
		}

		summary.Failed++
		summary.FailedIDs = append(summary.FailedIDs, outcome.WorkoutID)
	}

	return summary
}
