package domain

import (
	"encoding/json"
	"time"
)

type WorkoutID string

// Workout is one completed Hevy session as returned by the upstream API.
// Raw carries the full upstream object (exercises, sets and everything else)
// untouched; the pipeline never interprets it, the downstream receiver does.
type Workout struct {
	ID        WorkoutID
	Title     string
	StartTime time.Time
	Raw       json.RawMessage
}

// Page is one batch of workouts as fetched from the upstream API,
// already filtered to the sync window.
type Page struct {
	Number   int
	Workouts []Workout
	// Total is the upstream total-count hint, 0 when the API omits it.
	Total int
}
