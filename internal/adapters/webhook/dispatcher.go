// Package webhook forwards workouts to the downstream processing endpoint.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hevytools/notion-sync/internal/domain"
	"github.com/hevytools/notion-sync/internal/ports"
)

const maxResponseBytes = 1 << 20

// eventIDPrefix marks deliveries originating from a backfill run so the
// downstream receiver can tell them apart from live webhook events.
const eventIDPrefix = "manual-sync-"

type Dispatcher struct {
	url    string
	token  string
	client *http.Client
}

var _ ports.Dispatcher = (*Dispatcher)(nil)

func NewDispatcher(url, token string, httpClient *http.Client) *Dispatcher {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Dispatcher{
		url:    url,
		token:  token,
		client: httpClient,
	}
}

type deliveryEnvelope struct {
	ID      string          `json:"id"`
	Payload deliveryPayload `json:"payload"`
}

type deliveryPayload struct {
	WorkoutID string          `json:"workoutId"`
	Title     string          `json:"title,omitempty"`
	StartTime *time.Time      `json:"startTime,omitempty"`
	Workout   json.RawMessage `json:"workout,omitempty"`
}

// Deliver posts one workout downstream and classifies the response. Any 2xx
// is a success; everything else, including transport failures, becomes a
// failed outcome with a reason. Deliver never aborts the batch.
func (d *Dispatcher) Deliver(ctx context.Context, workout domain.Workout) domain.DeliveryOutcome {
	body, err := json.Marshal(envelopeFor(workout))
	if err != nil {
		return domain.Undelivered(workout.ID, fmt.Sprintf("encode payload: %v", err))
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		return domain.Undelivered(workout.ID, fmt.Sprintf("create request: %v", err))
	}
	request.Header.Set("Content-Type", "application/json")
	if d.token != "" {
		request.Header.Set("Authorization", "Bearer "+d.token)
	}

	response, err := d.client.Do(request)
	if err != nil {
		return domain.Undelivered(workout.ID, err.Error())
	}
	defer response.Body.Close()

	responseBody, _ := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if response.StatusCode < 200 || response.StatusCode > 299 {
		return domain.Undelivered(workout.ID, statusReason(response.StatusCode, responseBody))
	}

	return domain.Delivered(workout.ID)
}

func envelopeFor(workout domain.Workout) deliveryEnvelope {
	payload := deliveryPayload{
		WorkoutID: string(workout.ID),
		Title:     workout.Title,
		Workout:   workout.Raw,
	}
	if !workout.StartTime.IsZero() {
		startTime := workout.StartTime
		payload.StartTime = &startTime
	}

	return deliveryEnvelope{
		ID:      eventIDPrefix + string(workout.ID),
		Payload: payload,
	}
}

func statusReason(status int, body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) > 200 {
		text = text[:200]
	}
	if text == "" {
		return fmt.Sprintf("status %d", status)
	}
	return fmt.Sprintf("status %d: %s", status, text)
}
